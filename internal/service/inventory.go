package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/domain/inventory"
	"github.com/Spok95/parts-inventory/internal/domain/parts"
	"github.com/Spok95/parts-inventory/internal/storage"
)

const defaultHistoryLimit = 50

// StockChange addresses a quantity of one part in one location.
type StockChange struct {
	PartKey string
	BoxNo   int
	LocNo   int
	Qty     int
}

type StockMove struct {
	PartKey string
	FromBox int
	FromLoc int
	ToBox   int
	ToLoc   int
	Qty     int
}

// Inventory is the stock ledger: every change of a PartLocation quantity
// goes through it and leaves one QuantityHistory row.
type Inventory struct {
	deps         Deps
	historyLimit int
}

func NewInventory(d Deps, historyLimit int) *Inventory {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &Inventory{deps: d.withDefaults(), historyLimit: historyLimit}
}

func (s *Inventory) AddStock(ctx context.Context, c StockChange) (*inventory.QuantityHistory, error) {
	var h *inventory.QuantityHistory
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		var err error
		h, err = addStock(ctx, r, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.deps.Log.Info("stock added", "part", c.PartKey, "location", parts.LocationRef(c.BoxNo, c.LocNo), "qty", c.Qty)
	return h, nil
}

func (s *Inventory) RemoveStock(ctx context.Context, c StockChange) (*inventory.QuantityHistory, error) {
	var h *inventory.QuantityHistory
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		var err error
		h, err = removeStock(ctx, r, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.deps.Log.Info("stock removed", "part", c.PartKey, "location", parts.LocationRef(c.BoxNo, c.LocNo), "qty", c.Qty)
	return h, nil
}

// MoveStock removes from one location and adds to another atomically.
func (s *Inventory) MoveStock(ctx context.Context, m StockMove) error {
	if m.FromBox == m.ToBox && m.FromLoc == m.ToLoc {
		return errs.Invalid("source and destination are both %s", parts.LocationRef(m.FromBox, m.FromLoc))
	}
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		if _, err := removeStock(ctx, r, StockChange{PartKey: m.PartKey, BoxNo: m.FromBox, LocNo: m.FromLoc, Qty: m.Qty}); err != nil {
			return err
		}
		_, err := addStock(ctx, r, StockChange{PartKey: m.PartKey, BoxNo: m.ToBox, LocNo: m.ToLoc, Qty: m.Qty})
		return err
	})
	if err != nil {
		return err
	}
	s.deps.Log.Info("stock moved", "part", m.PartKey,
		"from", parts.LocationRef(m.FromBox, m.FromLoc), "to", parts.LocationRef(m.ToBox, m.ToLoc), "qty", m.Qty)
	return nil
}

// ImportStock adds every change in one transaction; one bad row rejects the
// whole batch.
func (s *Inventory) ImportStock(ctx context.Context, changes []StockChange) error {
	if len(changes) == 0 {
		return errs.Invalid("nothing to import")
	}
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		for i, c := range changes {
			if _, err := addStock(ctx, r, c); err != nil {
				return fmt.Errorf("import row %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.deps.Log.Info("stock imported", "rows", len(changes))
	return nil
}

func (s *Inventory) TotalQuantity(ctx context.Context, partKey string) (int, error) {
	r := s.deps.Store.Repos()
	p, err := lookupPart(ctx, r, partKey)
	if err != nil {
		return 0, err
	}
	return r.Inventory.TotalQuantity(ctx, p.ID)
}

// Locations lists where a part is stocked, in allocation order.
func (s *Inventory) Locations(ctx context.Context, partKey string) ([]inventory.PartLocation, error) {
	r := s.deps.Store.Repos()
	p, err := lookupPart(ctx, r, partKey)
	if err != nil {
		return nil, err
	}
	return r.Inventory.ListPartLocations(ctx, p.ID)
}

// History returns the newest ledger entries of a part first. limit <= 0 uses
// the configured default.
func (s *Inventory) History(ctx context.Context, partKey string, limit int) ([]inventory.QuantityHistory, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	r := s.deps.Store.Repos()
	p, err := lookupPart(ctx, r, partKey)
	if err != nil {
		return nil, err
	}
	return r.Inventory.ListHistory(ctx, p.ID, limit)
}

func lookupPart(ctx context.Context, r storage.Repos, key string) (*parts.Part, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if key == "" {
		return nil, errs.Invalid("part key is required")
	}
	p, err := r.Parts.GetPartByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get part %s: %w", key, err)
	}
	if p == nil {
		return nil, errs.NotFound("part", key)
	}
	return p, nil
}

func lookupLocation(ctx context.Context, r storage.Repos, boxNo, locNo int) (*parts.Location, error) {
	loc, err := r.Parts.GetLocation(ctx, boxNo, locNo)
	if err != nil {
		return nil, fmt.Errorf("get location %s: %w", parts.LocationRef(boxNo, locNo), err)
	}
	if loc == nil {
		return nil, errs.NotFound("location", parts.LocationRef(boxNo, locNo))
	}
	return loc, nil
}

// addStock and removeStock run inside the caller's transaction so pick
// fulfillment can combine them with its own writes.
func addStock(ctx context.Context, r storage.Repos, c StockChange) (*inventory.QuantityHistory, error) {
	if c.Qty <= 0 {
		return nil, errs.Invalid("quantity must be positive, got %d", c.Qty)
	}
	if err := checkQuantity("quantity", c.Qty); err != nil {
		return nil, err
	}
	p, err := lookupPart(ctx, r, c.PartKey)
	if err != nil {
		return nil, err
	}
	loc, err := lookupLocation(ctx, r, c.BoxNo, c.LocNo)
	if err != nil {
		return nil, err
	}

	pl, err := r.Inventory.GetPartLocationForUpdate(ctx, p.ID, loc.ID)
	if err != nil {
		return nil, fmt.Errorf("lock stock of %s at %s: %w", p.Key, loc.Ref(), err)
	}
	if pl == nil {
		if _, err := r.Inventory.InsertPartLocation(ctx, p.ID, loc.ID, c.Qty); err != nil {
			return nil, fmt.Errorf("insert stock of %s at %s: %w", p.Key, loc.Ref(), err)
		}
	} else if pl.Qty > maxQuantity-c.Qty {
		return nil, errs.Invalid("stock of %s at %s would exceed %d", p.Key, loc.Ref(), maxQuantity)
	} else if err := r.Inventory.SetQty(ctx, pl.ID, pl.Qty+c.Qty); err != nil {
		return nil, fmt.Errorf("update stock of %s at %s: %w", p.Key, loc.Ref(), err)
	}

	return appendHistory(ctx, r, p.ID, c.Qty, loc.Ref())
}

func removeStock(ctx context.Context, r storage.Repos, c StockChange) (*inventory.QuantityHistory, error) {
	if c.Qty <= 0 {
		return nil, errs.Invalid("quantity must be positive, got %d", c.Qty)
	}
	p, err := lookupPart(ctx, r, c.PartKey)
	if err != nil {
		return nil, err
	}
	loc, err := lookupLocation(ctx, r, c.BoxNo, c.LocNo)
	if err != nil {
		return nil, err
	}

	pl, err := r.Inventory.GetPartLocationForUpdate(ctx, p.ID, loc.ID)
	if err != nil {
		return nil, fmt.Errorf("lock stock of %s at %s: %w", p.Key, loc.Ref(), err)
	}
	if pl == nil {
		return nil, errs.Invalid("part %s has no stock at %s", p.Key, loc.Ref())
	}
	if c.Qty > pl.Qty {
		return nil, errs.Invalid("cannot remove %d of part %s from %s: only %d in stock", c.Qty, p.Key, loc.Ref(), pl.Qty)
	}

	if remaining := pl.Qty - c.Qty; remaining == 0 {
		err = r.Inventory.DeletePartLocation(ctx, pl.ID)
	} else {
		err = r.Inventory.SetQty(ctx, pl.ID, remaining)
	}
	if err != nil {
		return nil, fmt.Errorf("update stock of %s at %s: %w", p.Key, loc.Ref(), err)
	}

	return appendHistory(ctx, r, p.ID, -c.Qty, loc.Ref())
}

func appendHistory(ctx context.Context, r storage.Repos, partID int64, delta int, ref string) (*inventory.QuantityHistory, error) {
	h, err := r.Inventory.AppendHistory(ctx, inventory.QuantityHistory{
		PartID:            partID,
		DeltaQty:          delta,
		LocationReference: ref,
	})
	if err != nil {
		return nil, fmt.Errorf("append quantity history: %w", err)
	}
	return h, nil
}
