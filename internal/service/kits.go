package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/domain/kits"
	"github.com/Spok95/parts-inventory/internal/domain/picklists"
	"github.com/Spok95/parts-inventory/internal/domain/shopping"
	"github.com/Spok95/parts-inventory/internal/metrics"
	"github.com/Spok95/parts-inventory/internal/storage"
)

type KitInput struct {
	Name        string
	Description string
	BuildTarget int
}

// KitUpdate changes only the non-nil fields.
type KitUpdate struct {
	Name        *string
	Description *string
	BuildTarget *int
}

type ContentInput struct {
	PartKey         string
	RequiredPerUnit int
	Note            string
}

// ContentAvailability is a BOM row with its stock position for the kit's
// build target.
type ContentAvailability struct {
	kits.Content
	TotalRequired int
	InStock       int
	Reserved      int
	Available     int
	Shortfall     int
	Reservations  []ReservationEntry
}

type KitDetail struct {
	kits.Kit
	Contents      []ContentAvailability
	PickLists     []picklists.Summary
	ShoppingLinks []shopping.KitLink
}

type Kits struct {
	deps Deps
}

func NewKits(d Deps) *Kits {
	return &Kits{deps: d.withDefaults()}
}

func (s *Kits) Create(ctx context.Context, in KitInput) (*kits.Kit, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errs.Invalid("kit name is required")
	}
	if in.BuildTarget < 0 {
		return nil, errs.Invalid("build target must be >= 0, got %d", in.BuildTarget)
	}
	if err := checkQuantity("build target", in.BuildTarget); err != nil {
		return nil, err
	}

	k, err := s.deps.Store.Repos().Kits.Create(ctx, kits.Kit{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		BuildTarget: in.BuildTarget,
	})
	if err != nil {
		return nil, fmt.Errorf("create kit: %w", err)
	}
	s.deps.Log.Info("kit created", "kit_id", k.ID, "name", k.Name)
	return k, nil
}

func (s *Kits) Get(ctx context.Context, id int64) (*kits.Kit, error) {
	return getKit(ctx, s.deps.Store.Repos(), id)
}

// List returns kits with their badge counts. An empty status lists all.
func (s *Kits) List(ctx context.Context, status kits.Status) ([]kits.Summary, error) {
	if status != "" && !status.Valid() {
		return nil, errs.Invalid("unknown kit status %q", status)
	}
	return s.deps.Store.Repos().Kits.List(ctx, status)
}

func (s *Kits) Update(ctx context.Context, id int64, upd KitUpdate) (*kits.Kit, error) {
	var out *kits.Kit
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		k, err := activeKit(ctx, r, id)
		if err != nil {
			return err
		}
		if upd.Name != nil {
			k.Name = strings.TrimSpace(*upd.Name)
			if k.Name == "" {
				return errs.Invalid("kit name is required")
			}
		}
		if upd.Description != nil {
			k.Description = strings.TrimSpace(*upd.Description)
		}
		if upd.BuildTarget != nil {
			if *upd.BuildTarget < 0 {
				return errs.Invalid("build target must be >= 0, got %d", *upd.BuildTarget)
			}
			if err := checkQuantity("build target", *upd.BuildTarget); err != nil {
				return err
			}
			k.BuildTarget = *upd.BuildTarget
		}
		out, err = r.Kits.Update(ctx, *k)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.deps.Log.Info("kit updated", "kit_id", id)
	return out, nil
}

func (s *Kits) Archive(ctx context.Context, id int64) (*kits.Kit, error) {
	var out *kits.Kit
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		k, err := getKit(ctx, r, id)
		if err != nil {
			return err
		}
		if k.Archived() {
			return errs.Invalid("kit %q is already archived", k.Name)
		}
		out, err = r.Kits.SetStatus(ctx, id, kits.StatusArchived, s.deps.nowPtr())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.deps.Log.Info("kit archived", "kit_id", id)
	return out, nil
}

func (s *Kits) Unarchive(ctx context.Context, id int64) (*kits.Kit, error) {
	var out *kits.Kit
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		k, err := getKit(ctx, r, id)
		if err != nil {
			return err
		}
		if !k.Archived() {
			return errs.Invalid("kit %q is not archived", k.Name)
		}
		out, err = r.Kits.SetStatus(ctx, id, kits.StatusActive, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.deps.Log.Info("kit unarchived", "kit_id", id)
	return out, nil
}

// Delete removes a kit with its contents, pick lists and shopping links.
// Stock already picked stays picked.
func (s *Kits) Delete(ctx context.Context, id int64) error {
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		if _, err := getKit(ctx, r, id); err != nil {
			return err
		}
		return r.Kits.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.deps.Log.Info("kit deleted", "kit_id", id)
	return nil
}

// Detail computes, per BOM row, what the build target needs against stock
// net of other active kits' reservations.
func (s *Kits) Detail(ctx context.Context, id int64) (*KitDetail, error) {
	r := s.deps.Store.Repos()
	k, err := getKit(ctx, r, id)
	if err != nil {
		return nil, err
	}
	contents, err := r.Kits.ListContents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list contents of kit %d: %w", id, err)
	}

	partIDs := make([]int64, 0, len(contents))
	for _, c := range contents {
		partIDs = append(partIDs, c.PartID)
	}
	totals, err := r.Inventory.TotalQuantities(ctx, partIDs)
	if err != nil {
		return nil, fmt.Errorf("stock totals: %w", err)
	}
	calc := NewReservationCalculator(r.Kits)
	reservations, err := calc.ReservationsForParts(ctx, partIDs)
	if err != nil {
		return nil, err
	}

	d := &KitDetail{Kit: *k, Contents: make([]ContentAvailability, 0, len(contents))}
	for _, c := range contents {
		ca := ContentAvailability{
			Content:       c,
			TotalRequired: c.RequiredPerUnit * k.BuildTarget,
			InStock:       totals[c.PartID],
		}
		for _, e := range reservations[c.PartID] {
			if e.KitID == k.ID {
				continue
			}
			ca.Reserved += e.ReservedQuantity
			ca.Reservations = append(ca.Reservations, e)
		}
		ca.Available = max(0, ca.InStock-ca.Reserved)
		ca.Shortfall = max(0, ca.TotalRequired-ca.Available)
		d.Contents = append(d.Contents, ca)
	}

	if d.PickLists, err = r.PickLists.ListForKit(ctx, id); err != nil {
		return nil, fmt.Errorf("list pick lists of kit %d: %w", id, err)
	}
	if d.ShoppingLinks, err = r.Shopping.ListKitLinks(ctx, id); err != nil {
		return nil, fmt.Errorf("list shopping links of kit %d: %w", id, err)
	}
	return d, nil
}

func (s *Kits) AddContent(ctx context.Context, kitID int64, in ContentInput) (*kits.Content, error) {
	if in.RequiredPerUnit < 1 {
		return nil, errs.Invalid("required per unit must be >= 1, got %d", in.RequiredPerUnit)
	}
	if err := checkQuantity("required per unit", in.RequiredPerUnit); err != nil {
		return nil, err
	}
	var out *kits.Content
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		if _, err := activeKit(ctx, r, kitID); err != nil {
			return err
		}
		p, err := lookupPart(ctx, r, in.PartKey)
		if err != nil {
			return err
		}
		out, err = r.Kits.CreateContent(ctx, kits.Content{
			KitID:           kitID,
			PartID:          p.ID,
			RequiredPerUnit: in.RequiredPerUnit,
			Note:            strings.TrimSpace(in.Note),
		})
		if err != nil {
			return err
		}
		return r.Kits.Touch(ctx, kitID)
	})
	if err != nil {
		return nil, err
	}
	s.deps.Log.Info("kit content added", "kit_id", kitID, "content_id", out.ID, "part_key", out.PartKey)
	return out, nil
}

// UpdateContent applies upd when the row is still at upd.Version; otherwise
// it fails with a conflict and leaves the row untouched.
func (s *Kits) UpdateContent(ctx context.Context, kitID, contentID int64, upd kits.ContentUpdate) (*kits.Content, error) {
	var out *kits.Content
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		if _, err := activeKit(ctx, r, kitID); err != nil {
			return err
		}
		c, err := r.Kits.GetContent(ctx, kitID, contentID)
		if err != nil {
			return fmt.Errorf("get kit content %d: %w", contentID, err)
		}
		if c == nil {
			return errs.NotFound("kit content", contentID)
		}
		if c.Version != upd.Version {
			return staleContent(contentID, upd.Version, c.Version)
		}

		if upd.RequiredPerUnit != nil {
			if *upd.RequiredPerUnit < 1 {
				return errs.Invalid("required per unit must be >= 1, got %d", *upd.RequiredPerUnit)
			}
			if err := checkQuantity("required per unit", *upd.RequiredPerUnit); err != nil {
				return err
			}
			c.RequiredPerUnit = *upd.RequiredPerUnit
		}
		if upd.Note != nil {
			c.Note = strings.TrimSpace(*upd.Note)
		}

		updated, ok, err := r.Kits.UpdateContent(ctx, *c, upd.Version)
		if err != nil {
			return fmt.Errorf("update kit content %d: %w", contentID, err)
		}
		if !ok {
			return staleContent(contentID, upd.Version, -1)
		}
		out = updated
		return r.Kits.Touch(ctx, kitID)
	})
	if err != nil {
		if errs.Kind(err) == errs.ErrConflict {
			s.deps.Metrics.RecordEvent(metrics.EventKitContentConflict, nil)
		}
		return nil, err
	}
	s.deps.Log.Info("kit content updated", "kit_id", kitID, "content_id", contentID, "version", out.Version)
	return out, nil
}

func (s *Kits) DeleteContent(ctx context.Context, kitID, contentID int64) error {
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		if _, err := activeKit(ctx, r, kitID); err != nil {
			return err
		}
		c, err := r.Kits.GetContent(ctx, kitID, contentID)
		if err != nil {
			return fmt.Errorf("get kit content %d: %w", contentID, err)
		}
		if c == nil {
			return errs.NotFound("kit content", contentID)
		}
		if err := r.Kits.DeleteContent(ctx, kitID, contentID); err != nil {
			return err
		}
		return r.Kits.Touch(ctx, kitID)
	})
	if err != nil {
		return err
	}
	s.deps.Log.Info("kit content deleted", "kit_id", kitID, "content_id", contentID)
	return nil
}

func staleContent(contentID int64, expected, current int) error {
	if current < 0 {
		return errs.Conflict("kit content %d was updated by another request (expected version %d)", contentID, expected)
	}
	return errs.Conflict("kit content %d was updated by another request (expected version %d, current %d)",
		contentID, expected, current)
}

func getKit(ctx context.Context, r storage.Repos, id int64) (*kits.Kit, error) {
	k, err := r.Kits.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get kit %d: %w", id, err)
	}
	if k == nil {
		return nil, errs.NotFound("kit", id)
	}
	return k, nil
}

// activeKit loads a kit that may still be edited.
func activeKit(ctx context.Context, r storage.Repos, id int64) (*kits.Kit, error) {
	k, err := getKit(ctx, r, id)
	if err != nil {
		return nil, err
	}
	if k.Archived() {
		return nil, errs.Invalid("kit %q is archived", k.Name)
	}
	return k, nil
}
