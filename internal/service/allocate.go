package service

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/domain/inventory"
	"github.com/Spok95/parts-inventory/internal/domain/kits"
	"github.com/Spok95/parts-inventory/internal/domain/picklists"
)

// maxQuantity is the largest quantity the INTEGER columns hold.
const maxQuantity = math.MaxInt32

func checkQuantity(what string, v int) error {
	if v > maxQuantity {
		return errs.Invalid("%s must be <= %d, got %d", what, maxQuantity, v)
	}
	return nil
}

// requiredTotal returns perUnit*units, rejecting products that do not fit a
// quantity column.
func requiredTotal(partKey string, perUnit, units int) (int, error) {
	if perUnit > 0 && units > maxQuantity/perUnit {
		return 0, errs.Invalid("part %s: %d per unit for %d units exceeds %d", partKey, perUnit, units, maxQuantity)
	}
	return perUnit * units, nil
}

// Shortfall describes a BOM entry that stock cannot cover.
type Shortfall struct {
	PartKey   string
	Required  int
	Available int
}

func (s Shortfall) Missing() int { return s.Required - s.Available }

func (s Shortfall) String() string {
	return fmt.Sprintf("insufficient stock for part %s: need %d, have %d (short by %d)",
		s.PartKey, s.Required, s.Available, s.Missing())
}

// InsufficientStockError fails a pick list creation. It is an
// invalid-operation error.
type InsufficientStockError struct {
	KitID      int64
	Units      int
	Shortfalls []Shortfall
}

func (e *InsufficientStockError) Error() string {
	msgs := make([]string, len(e.Shortfalls))
	for i, s := range e.Shortfalls {
		msgs[i] = s.String()
	}
	return errs.ErrInvalidOperation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *InsufficientStockError) Unwrap() error { return errs.ErrInvalidOperation }

// planContent walks the candidates smallest stock first and takes from each
// until requiredPerUnit*units is covered. On shortfall it returns no lines.
// Callers bound the product with requiredTotal first.
func planContent(c kits.Content, units int, candidates []inventory.PartLocation) ([]picklists.Line, *Shortfall) {
	required := c.RequiredPerUnit * units

	ordered := slices.Clone(candidates)
	slices.SortStableFunc(ordered, inventory.ByAllocationOrder)

	var lines []picklists.Line
	remaining := required
	for _, pl := range ordered {
		if remaining == 0 {
			break
		}
		if pl.Qty <= 0 {
			continue
		}
		take := min(remaining, pl.Qty)
		lines = append(lines, picklists.Line{
			KitContentID:    c.ID,
			PartID:          c.PartID,
			PartKey:         c.PartKey,
			PartDescription: c.PartDescription,
			LocationID:      pl.LocationID,
			BoxNo:           pl.BoxNo,
			LocNo:           pl.LocNo,
			QuantityToPick:  take,
			Status:          picklists.StatusOpen,
		})
		remaining -= take
	}

	if remaining > 0 {
		return nil, &Shortfall{PartKey: c.PartKey, Required: required, Available: required - remaining}
	}
	return lines, nil
}
