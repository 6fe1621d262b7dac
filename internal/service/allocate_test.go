package service

import (
	"errors"
	"testing"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/domain/inventory"
	"github.com/Spok95/parts-inventory/internal/domain/kits"
)

func contentFor(key string, perUnit int) kits.Content {
	return kits.Content{ID: 7, PartID: 3, PartKey: key, RequiredPerUnit: perUnit}
}

// stockRows builds box-1 stock from (locNo, qty) pairs.
func stockRows(pairs ...int) []inventory.PartLocation {
	var out []inventory.PartLocation
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, inventory.PartLocation{
			ID:         int64(100 + i),
			PartID:     3,
			LocationID: int64(pairs[i]),
			BoxNo:      1,
			LocNo:      pairs[i],
			Qty:        pairs[i+1],
		})
	}
	return out
}

func TestPlanContent(t *testing.T) {
	tests := []struct {
		name      string
		perUnit   int
		units     int
		stock     []inventory.PartLocation
		wantLocs  []int
		wantQty   []int
		wantShort int
	}{
		{
			name: "example from two bins", perUnit: 3, units: 2,
			stock:    stockRows(1, 5, 2, 2),
			wantLocs: []int{2, 1}, wantQty: []int{2, 4},
		},
		{
			name: "exact fit drains every bin", perUnit: 1, units: 7,
			stock:    stockRows(1, 5, 2, 2),
			wantLocs: []int{2, 1}, wantQty: []int{2, 5},
		},
		{
			name: "ties break on location", perUnit: 5, units: 1,
			stock:    stockRows(3, 4, 1, 4, 2, 4),
			wantLocs: []int{1, 2}, wantQty: []int{4, 1},
		},
		{
			name: "short", perUnit: 3, units: 3,
			stock:     stockRows(1, 5, 2, 2),
			wantShort: 2,
		},
		{
			name: "no stock at all", perUnit: 1, units: 1,
			wantShort: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, short := planContent(contentFor("R10K", tt.perUnit), tt.units, tt.stock)
			if tt.wantShort > 0 {
				if short == nil || short.Missing() != tt.wantShort || lines != nil {
					t.Fatalf("short = %+v lines = %v, want short by %d and no lines", short, lines, tt.wantShort)
				}
				return
			}
			if short != nil {
				t.Fatalf("unexpected shortfall %+v", short)
			}
			if len(lines) != len(tt.wantLocs) {
				t.Fatalf("got %d lines, want %d", len(lines), len(tt.wantLocs))
			}
			for i, l := range lines {
				if l.LocNo != tt.wantLocs[i] || l.QuantityToPick != tt.wantQty[i] {
					t.Errorf("line %d = loc %d qty %d, want loc %d qty %d",
						i, l.LocNo, l.QuantityToPick, tt.wantLocs[i], tt.wantQty[i])
				}
				if l.KitContentID != 7 || l.PartKey != "R10K" {
					t.Errorf("line %d lost its content link: %+v", i, l)
				}
			}
		})
	}
}

func TestPlanContentDoesNotReorderInput(t *testing.T) {
	stock := stockRows(1, 5, 2, 2)
	planContent(contentFor("R10K", 1), 1, stock)
	if stock[0].LocNo != 1 {
		t.Fatal("planContent sorted the caller's slice")
	}
}

func TestInsufficientStockError(t *testing.T) {
	err := error(&InsufficientStockError{
		KitID: 1,
		Units: 3,
		Shortfalls: []Shortfall{
			{PartKey: "R10K", Required: 9, Available: 7},
			{PartKey: "LED1", Required: 3, Available: 0},
		},
	})
	if !errors.Is(err, errs.ErrInvalidOperation) {
		t.Fatal("insufficient stock must be an invalid operation")
	}
	want := "invalid operation: insufficient stock for part R10K: need 9, have 7 (short by 2); " +
		"insufficient stock for part LED1: need 3, have 0 (short by 3)"
	if err.Error() != want {
		t.Fatalf("message = %q\nwant      %q", err.Error(), want)
	}
}
