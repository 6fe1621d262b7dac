package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/domain/inventory"
)

type inventoryRepo struct{ h *handle }

func (st *state) resolveStock(pl inventory.PartLocation) inventory.PartLocation {
	pl.PartKey = st.parts[pl.PartID].Key
	loc := st.locations[pl.LocationID]
	pl.BoxNo, pl.LocNo = loc.BoxNo, loc.LocNo
	return pl
}

func (r *inventoryRepo) GetPartLocationForUpdate(_ context.Context, partID, locationID int64) (*inventory.PartLocation, error) {
	st, done := r.h.use()
	defer done()

	for _, pl := range st.stock {
		if pl.PartID == partID && pl.LocationID == locationID {
			out := st.resolveStock(pl)
			return &out, nil
		}
	}
	return nil, nil
}

func (r *inventoryRepo) ListPartLocations(_ context.Context, partID int64) ([]inventory.PartLocation, error) {
	st, done := r.h.use()
	defer done()

	var out []inventory.PartLocation
	for _, pl := range st.stock {
		if pl.PartID == partID {
			out = append(out, st.resolveStock(pl))
		}
	}
	slices.SortFunc(out, inventory.ByAllocationOrder)
	return out, nil
}

func (r *inventoryRepo) InsertPartLocation(_ context.Context, partID, locationID int64, qty int) (*inventory.PartLocation, error) {
	st, done := r.h.use()
	defer done()

	for _, pl := range st.stock {
		if pl.PartID == partID && pl.LocationID == locationID {
			return nil, errs.Conflict("stock record for part %d at location %d created concurrently", partID, locationID)
		}
	}
	pl := inventory.PartLocation{ID: st.nextID(), PartID: partID, LocationID: locationID, Qty: qty}
	st.stock[pl.ID] = pl
	out := st.resolveStock(pl)
	return &out, nil
}

func (r *inventoryRepo) SetQty(_ context.Context, id int64, qty int) error {
	st, done := r.h.use()
	defer done()

	pl, ok := st.stock[id]
	if !ok {
		return errs.NotFound("part location", id)
	}
	pl.Qty = qty
	st.stock[id] = pl
	return nil
}

func (r *inventoryRepo) DeletePartLocation(_ context.Context, id int64) error {
	st, done := r.h.use()
	defer done()

	delete(st.stock, id)
	return nil
}

func (r *inventoryRepo) TotalQuantity(_ context.Context, partID int64) (int, error) {
	st, done := r.h.use()
	defer done()

	total := 0
	for _, pl := range st.stock {
		if pl.PartID == partID {
			total += pl.Qty
		}
	}
	return total, nil
}

func (r *inventoryRepo) TotalQuantities(_ context.Context, partIDs []int64) (map[int64]int, error) {
	st, done := r.h.use()
	defer done()

	out := make(map[int64]int, len(partIDs))
	for _, pl := range st.stock {
		if slices.Contains(partIDs, pl.PartID) {
			out[pl.PartID] += pl.Qty
		}
	}
	return out, nil
}

func (r *inventoryRepo) AppendHistory(_ context.Context, h inventory.QuantityHistory) (*inventory.QuantityHistory, error) {
	st, done := r.h.use()
	defer done()

	h.ID = st.nextID()
	h.CreatedAt = r.h.now()
	st.history[h.ID] = h
	return &h, nil
}

func (r *inventoryRepo) ListHistory(_ context.Context, partID int64, limit int) ([]inventory.QuantityHistory, error) {
	st, done := r.h.use()
	defer done()

	var out []inventory.QuantityHistory
	for _, h := range st.history {
		if h.PartID == partID {
			out = append(out, h)
		}
	}
	slices.SortFunc(out, func(a, b inventory.QuantityHistory) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
