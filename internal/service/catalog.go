package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/domain/parts"
	"github.com/Spok95/parts-inventory/internal/storage"
)

const maxPartKeyLen = 32

type BoxDetail struct {
	parts.Box
	Locations []parts.Location
}

// Catalog manages storage boxes and the parts catalog.
type Catalog struct {
	deps Deps
}

func NewCatalog(d Deps) *Catalog {
	return &Catalog{deps: d.withDefaults()}
}

// CreateBox takes the next free box number and creates locations
// 1..capacity in it.
func (s *Catalog) CreateBox(ctx context.Context, description string, capacity int) (*BoxDetail, error) {
	if capacity < 1 {
		return nil, errs.Invalid("box capacity must be >= 1, got %d", capacity)
	}
	var b *parts.Box
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		var err error
		b, err = r.Parts.CreateBox(ctx, strings.TrimSpace(description), capacity)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create box: %w", err)
	}
	s.deps.Log.Info("box created", "box_no", b.BoxNo, "capacity", b.Capacity)
	return s.GetBox(ctx, b.BoxNo)
}

func (s *Catalog) Boxes(ctx context.Context) ([]parts.Box, error) {
	return s.deps.Store.Repos().Parts.ListBoxes(ctx)
}

func (s *Catalog) GetBox(ctx context.Context, boxNo int) (*BoxDetail, error) {
	r := s.deps.Store.Repos()
	b, err := r.Parts.GetBox(ctx, boxNo)
	if err != nil {
		return nil, fmt.Errorf("get box %d: %w", boxNo, err)
	}
	if b == nil {
		return nil, errs.NotFound("box", boxNo)
	}
	locs, err := r.Parts.ListLocations(ctx, boxNo)
	if err != nil {
		return nil, fmt.Errorf("list locations of box %d: %w", boxNo, err)
	}
	return &BoxDetail{Box: *b, Locations: locs}, nil
}

func (s *Catalog) CreatePart(ctx context.Context, p parts.Part) (*parts.Part, error) {
	p.Key = strings.ToUpper(strings.TrimSpace(p.Key))
	if err := validatePartKey(p.Key); err != nil {
		return nil, err
	}
	p.Description = strings.TrimSpace(p.Description)
	if p.Description == "" {
		return nil, errs.Invalid("part %s needs a description", p.Key)
	}

	out, err := s.deps.Store.Repos().Parts.CreatePart(ctx, p)
	if err != nil {
		return nil, err
	}
	s.deps.Log.Info("part created", "part_key", out.Key)
	return out, nil
}

func (s *Catalog) GetPart(ctx context.Context, key string) (*parts.Part, error) {
	return lookupPart(ctx, s.deps.Store.Repos(), key)
}

func (s *Catalog) Parts(ctx context.Context) ([]parts.Part, error) {
	return s.deps.Store.Repos().Parts.ListParts(ctx)
}

func validatePartKey(key string) error {
	if key == "" {
		return errs.Invalid("part key is required")
	}
	if len(key) > maxPartKeyLen {
		return errs.Invalid("part key %q is longer than %d characters", key, maxPartKeyLen)
	}
	if strings.IndexFunc(key, unicode.IsSpace) >= 0 {
		return errs.Invalid("part key %q must not contain spaces", key)
	}
	return nil
}
