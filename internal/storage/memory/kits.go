package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/domain/kits"
	"github.com/Spok95/parts-inventory/internal/domain/picklists"
)

type kitsRepo struct{ h *handle }

func (r *kitsRepo) Create(_ context.Context, k kits.Kit) (*kits.Kit, error) {
	st, done := r.h.use()
	defer done()

	now := r.h.now()
	k.ID = st.nextID()
	k.Status = kits.StatusActive
	k.ArchivedAt = nil
	k.CreatedAt, k.UpdatedAt = now, now
	st.kits[k.ID] = k
	return &k, nil
}

func (r *kitsRepo) Get(_ context.Context, id int64) (*kits.Kit, error) {
	st, done := r.h.use()
	defer done()

	k, ok := st.kits[id]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (r *kitsRepo) List(_ context.Context, status kits.Status) ([]kits.Summary, error) {
	st, done := r.h.use()
	defer done()

	var out []kits.Summary
	for _, k := range st.kits {
		if status != "" && k.Status != status {
			continue
		}
		s := kits.Summary{Kit: k}
		for _, pl := range st.pickLists {
			if pl.KitID == k.ID && pl.Status == picklists.StatusOpen {
				s.OpenPickLists++
			}
		}
		for _, l := range st.links {
			if l.KitID == k.ID {
				s.ShoppingListLinks++
			}
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b kits.Summary) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *kitsRepo) Update(_ context.Context, k kits.Kit) (*kits.Kit, error) {
	st, done := r.h.use()
	defer done()

	cur, ok := st.kits[k.ID]
	if !ok {
		return nil, errs.NotFound("kit", k.ID)
	}
	cur.Name, cur.Description, cur.BuildTarget = k.Name, k.Description, k.BuildTarget
	cur.UpdatedAt = r.h.now()
	st.kits[k.ID] = cur
	return &cur, nil
}

func (r *kitsRepo) SetStatus(_ context.Context, id int64, status kits.Status, archivedAt *time.Time) (*kits.Kit, error) {
	st, done := r.h.use()
	defer done()

	cur, ok := st.kits[id]
	if !ok {
		return nil, errs.NotFound("kit", id)
	}
	cur.Status, cur.ArchivedAt = status, archivedAt
	cur.UpdatedAt = r.h.now()
	st.kits[id] = cur
	return &cur, nil
}

func (r *kitsRepo) Touch(_ context.Context, id int64) error {
	st, done := r.h.use()
	defer done()

	if cur, ok := st.kits[id]; ok {
		cur.UpdatedAt = r.h.now()
		st.kits[id] = cur
	}
	return nil
}

func (r *kitsRepo) Delete(_ context.Context, id int64) error {
	st, done := r.h.use()
	defer done()

	delete(st.kits, id)
	for plID, pl := range st.pickLists {
		if pl.KitID == id {
			delete(st.pickLists, plID)
			for lineID, l := range st.lines {
				if l.PickListID == plID {
					delete(st.lines, lineID)
				}
			}
		}
	}
	for cid, c := range st.contents {
		if c.KitID == id {
			delete(st.contents, cid)
		}
	}
	for lid, l := range st.links {
		if l.KitID == id {
			delete(st.links, lid)
		}
	}
	return nil
}

func (st *state) resolveContent(c kits.Content) kits.Content {
	p, ok := st.parts[c.PartID]
	if ok {
		c.PartKey, c.PartDescription = p.Key, p.Description
	} else {
		c.PartKey, c.PartDescription = "", ""
	}
	return c
}

func (r *kitsRepo) ListContents(_ context.Context, kitID int64) ([]kits.Content, error) {
	st, done := r.h.use()
	defer done()

	var out []kits.Content
	for _, c := range st.contents {
		if c.KitID == kitID {
			out = append(out, st.resolveContent(c))
		}
	}
	slices.SortFunc(out, func(a, b kits.Content) int {
		if c := strings.Compare(a.PartKey, b.PartKey); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *kitsRepo) GetContent(_ context.Context, kitID, contentID int64) (*kits.Content, error) {
	st, done := r.h.use()
	defer done()

	c, ok := st.contents[contentID]
	if !ok || c.KitID != kitID {
		return nil, nil
	}
	out := st.resolveContent(c)
	return &out, nil
}

func (r *kitsRepo) CreateContent(_ context.Context, c kits.Content) (*kits.Content, error) {
	st, done := r.h.use()
	defer done()

	for _, existing := range st.contents {
		if existing.KitID == c.KitID && existing.PartID == c.PartID {
			return nil, errs.Conflict("part %d is already in kit %d", c.PartID, c.KitID)
		}
	}
	now := r.h.now()
	c.ID = st.nextID()
	c.Version = 1
	c.CreatedAt, c.UpdatedAt = now, now
	st.contents[c.ID] = c
	out := st.resolveContent(c)
	return &out, nil
}

func (r *kitsRepo) UpdateContent(_ context.Context, c kits.Content, expectedVersion int) (*kits.Content, bool, error) {
	st, done := r.h.use()
	defer done()

	cur, ok := st.contents[c.ID]
	if !ok || cur.KitID != c.KitID || cur.Version != expectedVersion {
		return nil, false, nil
	}
	cur.RequiredPerUnit, cur.Note = c.RequiredPerUnit, c.Note
	cur.Version++
	cur.UpdatedAt = r.h.now()
	st.contents[cur.ID] = cur
	out := st.resolveContent(cur)
	return &out, true, nil
}

func (r *kitsRepo) DeleteContent(_ context.Context, kitID, contentID int64) error {
	st, done := r.h.use()
	defer done()

	c, ok := st.contents[contentID]
	if !ok || c.KitID != kitID {
		return nil
	}
	for _, l := range st.lines {
		if l.KitContentID == contentID {
			return errs.Invalid("kit content %d is referenced by pick list lines", contentID)
		}
	}
	delete(st.contents, contentID)
	return nil
}

func (r *kitsRepo) ActiveReservations(_ context.Context, partIDs []int64) ([]kits.ReservationRow, error) {
	st, done := r.h.use()
	defer done()

	var out []kits.ReservationRow
	for _, c := range st.contents {
		if !slices.Contains(partIDs, c.PartID) {
			continue
		}
		k, ok := st.kits[c.KitID]
		if !ok || k.Status != kits.StatusActive {
			continue
		}
		out = append(out, kits.ReservationRow{
			PartID:          c.PartID,
			KitID:           k.ID,
			KitName:         k.Name,
			Status:          k.Status,
			BuildTarget:     k.BuildTarget,
			RequiredPerUnit: c.RequiredPerUnit,
			UpdatedAt:       k.UpdatedAt,
		})
	}
	slices.SortFunc(out, func(a, b kits.ReservationRow) int {
		if c := cmp.Compare(a.PartID, b.PartID); c != 0 {
			return c
		}
		if c := strings.Compare(a.KitName, b.KitName); c != 0 {
			return c
		}
		return cmp.Compare(a.KitID, b.KitID)
	})
	return out, nil
}
