package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/domain/picklists"
)

type pickListsRepo struct{ h *handle }

func (st *state) resolveHeader(pl picklists.PickList) picklists.PickList {
	pl.KitName = st.kits[pl.KitID].Name
	return pl
}

func (st *state) resolveLine(l picklists.Line) picklists.Line {
	l.PartID, l.PartKey, l.PartDescription = 0, "", ""
	if c, ok := st.contents[l.KitContentID]; ok {
		l.PartID = c.PartID
		if p, ok := st.parts[c.PartID]; ok {
			l.PartKey, l.PartDescription = p.Key, p.Description
		}
	}
	l.BoxNo, l.LocNo = 0, 0
	if loc, ok := st.locations[l.LocationID]; ok {
		l.BoxNo, l.LocNo = loc.BoxNo, loc.LocNo
	}
	return l
}

func (r *pickListsRepo) Create(_ context.Context, pl picklists.PickList, lines []picklists.Line) (*picklists.PickList, error) {
	st, done := r.h.use()
	defer done()

	now := r.h.now()
	pl.ID = st.nextID()
	pl.Status = picklists.StatusOpen
	pl.CompletedAt = nil
	pl.CreatedAt, pl.UpdatedAt = now, now

	type allocation struct{ content, location int64 }
	seen := make(map[allocation]bool, len(lines))
	for _, l := range lines {
		key := allocation{l.KitContentID, l.LocationID}
		if seen[key] {
			return nil, errs.Conflict("duplicate allocation of content %d at location %d", l.KitContentID, l.LocationID)
		}
		seen[key] = true

		l.ID = st.nextID()
		l.PickListID = pl.ID
		l.Status = picklists.StatusOpen
		l.InventoryChangeID, l.PickedAt = nil, nil
		l.CreatedAt, l.UpdatedAt = now, now
		st.lines[l.ID] = l
	}
	st.pickLists[pl.ID] = pl
	out := st.resolveHeader(pl)
	return &out, nil
}

func (r *pickListsRepo) Get(_ context.Context, id int64) (*picklists.PickList, error) {
	st, done := r.h.use()
	defer done()

	pl, ok := st.pickLists[id]
	if !ok {
		return nil, nil
	}
	out := st.resolveHeader(pl)
	return &out, nil
}

func (r *pickListsRepo) GetForUpdate(ctx context.Context, id int64) (*picklists.PickList, error) {
	return r.Get(ctx, id)
}

func (r *pickListsRepo) ListLines(_ context.Context, pickListID int64) ([]picklists.Line, error) {
	st, done := r.h.use()
	defer done()

	var out []picklists.Line
	for _, l := range st.lines {
		if l.PickListID == pickListID {
			out = append(out, st.resolveLine(l))
		}
	}
	slices.SortFunc(out, picklists.ByDisplayOrder)
	return out, nil
}

func (r *pickListsRepo) ListForKit(_ context.Context, kitID int64) ([]picklists.Summary, error) {
	st, done := r.h.use()
	defer done()

	var out []picklists.Summary
	for _, pl := range st.pickLists {
		if pl.KitID != kitID {
			continue
		}
		s := picklists.Summary{PickList: st.resolveHeader(pl)}
		for _, l := range st.lines {
			if l.PickListID != pl.ID {
				continue
			}
			s.LineCount++
			s.TotalQuantity += l.QuantityToPick
			if l.Completed() {
				s.CompletedLineCount++
				s.PickedQuantity += l.QuantityToPick
			}
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b picklists.Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (r *pickListsRepo) GetLineForUpdate(_ context.Context, pickListID, lineID int64) (*picklists.Line, error) {
	st, done := r.h.use()
	defer done()

	l, ok := st.lines[lineID]
	if !ok || l.PickListID != pickListID {
		return nil, nil
	}
	out := st.resolveLine(l)
	return &out, nil
}

func (r *pickListsRepo) UpdateLine(_ context.Context, l picklists.Line) error {
	st, done := r.h.use()
	defer done()

	cur, ok := st.lines[l.ID]
	if !ok {
		return errs.NotFound("pick list line", l.ID)
	}
	cur.Status = l.Status
	cur.InventoryChangeID = l.InventoryChangeID
	cur.PickedAt = l.PickedAt
	cur.UpdatedAt = r.h.now()
	st.lines[l.ID] = cur
	return nil
}

func (r *pickListsRepo) UpdateStatus(_ context.Context, id int64, status picklists.Status, completedAt *time.Time) error {
	st, done := r.h.use()
	defer done()

	cur, ok := st.pickLists[id]
	if !ok {
		return errs.NotFound("pick list", id)
	}
	cur.Status, cur.CompletedAt = status, completedAt
	cur.UpdatedAt = r.h.now()
	st.pickLists[id] = cur
	return nil
}

func (r *pickListsRepo) Delete(_ context.Context, id int64) error {
	st, done := r.h.use()
	defer done()

	delete(st.pickLists, id)
	for lineID, l := range st.lines {
		if l.PickListID == id {
			delete(st.lines, lineID)
		}
	}
	return nil
}
