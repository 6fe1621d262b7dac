package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
)

func TestAddAndRemoveStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 3)
	f.part(t, "R10K")

	f.stock(t, "R10K", box, 2, 5)
	f.stock(t, "r10k", box, 2, 3)
	if got := f.qtyAt(t, "R10K", box, 2); got != 8 {
		t.Fatalf("qty = %d, want 8", got)
	}

	if _, err := f.inventory.RemoveStock(ctx, StockChange{PartKey: "R10K", BoxNo: box, LocNo: 2, Qty: 8}); err != nil {
		t.Fatalf("RemoveStock: %v", err)
	}
	locs, err := f.inventory.Locations(ctx, "R10K")
	if err != nil {
		t.Fatalf("Locations: %v", err)
	}
	if len(locs) != 0 {
		t.Fatalf("drained record kept: %+v", locs)
	}

	hist, err := f.inventory.History(ctx, "R10K", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	want := []int{-8, 3, 5}
	if len(hist) != len(want) {
		t.Fatalf("history has %d rows, want %d", len(hist), len(want))
	}
	for i, h := range hist {
		if h.DeltaQty != want[i] || h.LocationReference != "1-2" {
			t.Errorf("history[%d] = %+v, want delta %d at 1-2", i, h, want[i])
		}
	}
}

func TestStockErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 2)
	f.part(t, "R1")
	f.part(t, "R2")
	f.stock(t, "R1", box, 1, 4)

	tests := []struct {
		name   string
		remove bool
		c      StockChange
		kind   error
	}{
		{"add zero", false, StockChange{PartKey: "R1", BoxNo: box, LocNo: 1, Qty: 0}, errs.ErrInvalidOperation},
		{"add to missing location", false, StockChange{PartKey: "R1", BoxNo: box, LocNo: 9, Qty: 1}, errs.ErrNotFound},
		{"add beyond column range", false, StockChange{PartKey: "R1", BoxNo: box, LocNo: 1, Qty: math.MaxInt32 + 1}, errs.ErrInvalidOperation},
		{"add past column range", false, StockChange{PartKey: "R1", BoxNo: box, LocNo: 1, Qty: math.MaxInt32}, errs.ErrInvalidOperation},
		{"add unknown part", false, StockChange{PartKey: "NOPE", BoxNo: box, LocNo: 1, Qty: 1}, errs.ErrNotFound},
		{"remove negative", true, StockChange{PartKey: "R1", BoxNo: box, LocNo: 1, Qty: -1}, errs.ErrInvalidOperation},
		{"remove without assignment", true, StockChange{PartKey: "R2", BoxNo: box, LocNo: 1, Qty: 1}, errs.ErrInvalidOperation},
		{"remove more than stocked", true, StockChange{PartKey: "R1", BoxNo: box, LocNo: 1, Qty: 5}, errs.ErrInvalidOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.remove {
				_, err = f.inventory.RemoveStock(ctx, tt.c)
			} else {
				_, err = f.inventory.AddStock(ctx, tt.c)
			}
			if !errors.Is(err, tt.kind) {
				t.Fatalf("err = %v, want %v", err, tt.kind)
			}
		})
	}
	if got := f.qtyAt(t, "R1", box, 1); got != 4 {
		t.Fatalf("failed changes altered stock: qty = %d", got)
	}
}

func TestMoveStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 2)
	f.part(t, "C1")
	f.stock(t, "C1", box, 1, 10)

	err := f.inventory.MoveStock(ctx, StockMove{PartKey: "C1", FromBox: box, FromLoc: 1, ToBox: box, ToLoc: 2, Qty: 4})
	if err != nil {
		t.Fatalf("MoveStock: %v", err)
	}
	if f.qtyAt(t, "C1", box, 1) != 6 || f.qtyAt(t, "C1", box, 2) != 4 {
		t.Fatal("move did not shift quantity")
	}
	total, err := f.inventory.TotalQuantity(ctx, "C1")
	if err != nil || total != 10 {
		t.Fatalf("total = %d, %v; want 10", total, err)
	}

	// The destination does not exist, so the removal rolls back too.
	err = f.inventory.MoveStock(ctx, StockMove{PartKey: "C1", FromBox: box, FromLoc: 1, ToBox: 99, ToLoc: 1, Qty: 1})
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if f.qtyAt(t, "C1", box, 1) != 6 {
		t.Fatal("failed move removed stock")
	}

	err = f.inventory.MoveStock(ctx, StockMove{PartKey: "C1", FromBox: box, FromLoc: 1, ToBox: box, ToLoc: 1, Qty: 1})
	if !errors.Is(err, errs.ErrInvalidOperation) {
		t.Fatalf("same location: err = %v", err)
	}
}

func TestImportStockIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 2)
	f.part(t, "C1")

	err := f.inventory.ImportStock(ctx, []StockChange{
		{PartKey: "C1", BoxNo: box, LocNo: 1, Qty: 5},
		{PartKey: "C1", BoxNo: box, LocNo: 7, Qty: 5},
	})
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if f.qtyAt(t, "C1", box, 1) != 0 {
		t.Fatal("first row committed despite the failing second row")
	}

	err = f.inventory.ImportStock(ctx, []StockChange{
		{PartKey: "C1", BoxNo: box, LocNo: 1, Qty: 5},
		{PartKey: "C1", BoxNo: box, LocNo: 2, Qty: 3},
	})
	if err != nil {
		t.Fatalf("ImportStock: %v", err)
	}
	if total, _ := f.inventory.TotalQuantity(ctx, "C1"); total != 8 {
		t.Fatalf("total = %d, want 8", total)
	}
}

func TestHistoryLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 1)
	f.part(t, "C1")
	for i := 1; i <= 5; i++ {
		f.stock(t, "C1", box, 1, i)
	}
	hist, err := f.inventory.History(ctx, "C1", 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 || hist[0].DeltaQty != 5 || hist[1].DeltaQty != 4 {
		t.Fatalf("history = %+v, want the two newest rows", hist)
	}
}
