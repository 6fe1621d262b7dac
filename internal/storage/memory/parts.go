package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/domain/parts"
)

type partsRepo struct{ h *handle }

func (r *partsRepo) CreateBox(_ context.Context, description string, capacity int) (*parts.Box, error) {
	st, done := r.h.use()
	defer done()

	boxNo := 1
	for _, b := range st.boxes {
		if b.BoxNo >= boxNo {
			boxNo = b.BoxNo + 1
		}
	}
	now := r.h.now()
	b := parts.Box{
		ID:          st.nextID(),
		BoxNo:       boxNo,
		Description: description,
		Capacity:    capacity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	st.boxes[b.ID] = b
	for i := 1; i <= capacity; i++ {
		id := st.nextID()
		st.locations[id] = parts.Location{ID: id, BoxID: b.ID, BoxNo: boxNo, LocNo: i}
	}
	return &b, nil
}

func (r *partsRepo) GetBox(_ context.Context, boxNo int) (*parts.Box, error) {
	st, done := r.h.use()
	defer done()

	for _, b := range st.boxes {
		if b.BoxNo == boxNo {
			return &b, nil
		}
	}
	return nil, nil
}

func (r *partsRepo) ListBoxes(_ context.Context) ([]parts.Box, error) {
	st, done := r.h.use()
	defer done()

	out := make([]parts.Box, 0, len(st.boxes))
	for _, b := range st.boxes {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b parts.Box) int { return a.BoxNo - b.BoxNo })
	return out, nil
}

func (r *partsRepo) ListLocations(_ context.Context, boxNo int) ([]parts.Location, error) {
	st, done := r.h.use()
	defer done()

	var out []parts.Location
	for _, l := range st.locations {
		if l.BoxNo == boxNo {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b parts.Location) int { return a.LocNo - b.LocNo })
	return out, nil
}

func (r *partsRepo) GetLocation(_ context.Context, boxNo, locNo int) (*parts.Location, error) {
	st, done := r.h.use()
	defer done()

	for _, l := range st.locations {
		if l.BoxNo == boxNo && l.LocNo == locNo {
			return &l, nil
		}
	}
	return nil, nil
}

func (r *partsRepo) CreatePart(_ context.Context, p parts.Part) (*parts.Part, error) {
	st, done := r.h.use()
	defer done()

	for _, existing := range st.parts {
		if existing.Key == p.Key {
			return nil, errs.Conflict("part key %q already exists", p.Key)
		}
	}
	now := r.h.now()
	p.ID = st.nextID()
	p.CreatedAt, p.UpdatedAt = now, now
	st.parts[p.ID] = p
	return &p, nil
}

func (r *partsRepo) GetPartByKey(_ context.Context, key string) (*parts.Part, error) {
	st, done := r.h.use()
	defer done()

	for _, p := range st.parts {
		if p.Key == key {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *partsRepo) GetPartByID(_ context.Context, id int64) (*parts.Part, error) {
	st, done := r.h.use()
	defer done()

	p, ok := st.parts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *partsRepo) ListParts(_ context.Context) ([]parts.Part, error) {
	st, done := r.h.use()
	defer done()

	out := make([]parts.Part, 0, len(st.parts))
	for _, p := range st.parts {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b parts.Part) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}
