package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/domain/shopping"
)

type shoppingRepo struct{ h *handle }

func (st *state) resolveList(l shopping.List) shopping.List {
	l.LineCount = 0
	for _, line := range st.listLines {
		if line.ShoppingListID == l.ID {
			l.LineCount++
		}
	}
	return l
}

func (r *shoppingRepo) CreateList(_ context.Context, l shopping.List) (*shopping.List, error) {
	st, done := r.h.use()
	defer done()

	for _, existing := range st.lists {
		if existing.Name == l.Name {
			return nil, errs.Conflict("shopping list %q already exists", l.Name)
		}
	}
	now := r.h.now()
	l.ID = st.nextID()
	l.Status = shopping.StatusConcept
	l.CreatedAt, l.UpdatedAt = now, now
	st.lists[l.ID] = l
	out := st.resolveList(l)
	return &out, nil
}

func (r *shoppingRepo) GetList(_ context.Context, id int64) (*shopping.List, error) {
	st, done := r.h.use()
	defer done()

	l, ok := st.lists[id]
	if !ok {
		return nil, nil
	}
	out := st.resolveList(l)
	return &out, nil
}

func (r *shoppingRepo) ListLists(_ context.Context) ([]shopping.List, error) {
	st, done := r.h.use()
	defer done()

	out := make([]shopping.List, 0, len(st.lists))
	for _, l := range st.lists {
		out = append(out, st.resolveList(l))
	}
	slices.SortFunc(out, func(a, b shopping.List) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (r *shoppingRepo) SetStatus(_ context.Context, id int64, status shopping.Status) (*shopping.List, error) {
	st, done := r.h.use()
	defer done()

	l, ok := st.lists[id]
	if !ok {
		return nil, nil
	}
	l.Status = status
	l.UpdatedAt = r.h.now()
	st.lists[id] = l
	out := st.resolveList(l)
	return &out, nil
}

func (st *state) resolveListLine(l shopping.Line) shopping.Line {
	l.PartKey = st.parts[l.PartID].Key
	return l
}

func (r *shoppingRepo) ListLines(_ context.Context, listID int64) ([]shopping.Line, error) {
	st, done := r.h.use()
	defer done()

	var out []shopping.Line
	for _, l := range st.listLines {
		if l.ShoppingListID == listID {
			out = append(out, st.resolveListLine(l))
		}
	}
	slices.SortFunc(out, func(a, b shopping.Line) int {
		if c := strings.Compare(a.PartKey, b.PartKey); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *shoppingRepo) GetLineForUpdate(_ context.Context, listID, partID int64) (*shopping.Line, error) {
	st, done := r.h.use()
	defer done()

	for _, l := range st.listLines {
		if l.ShoppingListID == listID && l.PartID == partID {
			out := st.resolveListLine(l)
			return &out, nil
		}
	}
	return nil, nil
}

func (r *shoppingRepo) InsertLine(_ context.Context, l shopping.Line) (*shopping.Line, error) {
	st, done := r.h.use()
	defer done()

	for _, existing := range st.listLines {
		if existing.ShoppingListID == l.ShoppingListID && existing.PartID == l.PartID {
			return nil, errs.Conflict("part %d added to shopping list %d concurrently", l.PartID, l.ShoppingListID)
		}
	}
	now := r.h.now()
	l.ID = st.nextID()
	l.CreatedAt, l.UpdatedAt = now, now
	st.listLines[l.ID] = l
	out := st.resolveListLine(l)
	return &out, nil
}

func (r *shoppingRepo) UpdateLine(_ context.Context, l shopping.Line) error {
	st, done := r.h.use()
	defer done()

	cur, ok := st.listLines[l.ID]
	if !ok {
		return errs.NotFound("shopping list line", l.ID)
	}
	cur.Needed, cur.Note = l.Needed, l.Note
	cur.UpdatedAt = r.h.now()
	st.listLines[l.ID] = cur
	return nil
}

func (st *state) resolveLink(l shopping.KitLink) shopping.KitLink {
	list := st.lists[l.ShoppingListID]
	l.ShoppingListName, l.ShoppingListStatus = list.Name, list.Status
	return l
}

func (r *shoppingRepo) GetKitLinkForUpdate(_ context.Context, kitID, listID int64) (*shopping.KitLink, error) {
	st, done := r.h.use()
	defer done()

	for _, l := range st.links {
		if l.KitID == kitID && l.ShoppingListID == listID {
			out := st.resolveLink(l)
			return &out, nil
		}
	}
	return nil, nil
}

func (r *shoppingRepo) InsertKitLink(_ context.Context, l shopping.KitLink) (*shopping.KitLink, error) {
	st, done := r.h.use()
	defer done()

	for _, existing := range st.links {
		if existing.KitID == l.KitID && existing.ShoppingListID == l.ShoppingListID {
			return nil, errs.Conflict("kit %d linked to shopping list %d concurrently", l.KitID, l.ShoppingListID)
		}
	}
	now := r.h.now()
	l.ID = st.nextID()
	l.CreatedAt, l.UpdatedAt = now, now
	st.links[l.ID] = l
	out := st.resolveLink(l)
	return &out, nil
}

func (r *shoppingRepo) UpdateKitLink(_ context.Context, l shopping.KitLink) error {
	st, done := r.h.use()
	defer done()

	cur, ok := st.links[l.ID]
	if !ok {
		return errs.NotFound("kit shopping list link", l.ID)
	}
	cur.RequestedUnits = l.RequestedUnits
	cur.HonorReserved = l.HonorReserved
	cur.SnapshotKitUpdatedAt = l.SnapshotKitUpdatedAt
	cur.UpdatedAt = r.h.now()
	st.links[l.ID] = cur
	return nil
}

func (r *shoppingRepo) ListKitLinks(_ context.Context, kitID int64) ([]shopping.KitLink, error) {
	st, done := r.h.use()
	defer done()

	var out []shopping.KitLink
	for _, l := range st.links {
		if l.KitID == kitID {
			out = append(out, st.resolveLink(l))
		}
	}
	slices.SortFunc(out, func(a, b shopping.KitLink) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}
