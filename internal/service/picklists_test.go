package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/domain/picklists"
	"github.com/Spok95/parts-inventory/internal/metrics"
)

func TestCreatePickListTakesSmallestStockFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 4)
	f.part(t, "R10K")
	f.stock(t, "R10K", box, 1, 5)
	f.stock(t, "R10K", box, 2, 2)
	k := f.kit(t, "amp", 1, map[string]int{"R10K": 3})

	d, err := f.pickLists.Create(ctx, k.ID, 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Status != picklists.StatusOpen || d.RequestedUnits != 2 {
		t.Fatalf("header = %+v", d.PickList)
	}

	got := map[int]int{}
	for _, l := range d.Lines {
		got[l.LocNo] = l.QuantityToPick
	}
	if len(d.Lines) != 2 || got[2] != 2 || got[1] != 4 {
		t.Fatalf("allocation by location = %v, want loc 2 -> 2, loc 1 -> 4", got)
	}
	if d.TotalQuantity != 6 {
		t.Fatalf("total quantity = %d, want 6", d.TotalQuantity)
	}
	// display order is by part key, box, then location
	if d.Lines[0].LocNo != 1 || d.Lines[1].LocNo != 2 {
		t.Fatalf("lines not in display order: %+v", d.Lines)
	}
	if f.qtyAt(t, "R10K", box, 1) != 5 || f.qtyAt(t, "R10K", box, 2) != 2 {
		t.Fatal("creating a pick list must not touch stock")
	}
	if f.sink.count(metrics.EventPickListCreated) != 1 {
		t.Fatal("pick_list_created not recorded")
	}
}

func TestCreatePickListCoversEveryBOMEntryExactly(t *testing.T) {
	f := newFixture(t)
	box := f.box(t, 6)
	f.part(t, "C100N")
	f.part(t, "LED1")
	f.stock(t, "C100N", box, 1, 4)
	f.stock(t, "C100N", box, 2, 4)
	f.stock(t, "C100N", box, 3, 1)
	f.stock(t, "LED1", box, 4, 10)
	k := f.kit(t, "blinker", 1, map[string]int{"C100N": 2, "LED1": 3})

	d, err := f.pickLists.Create(context.Background(), k.ID, 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	sum := map[string]int{}
	for _, l := range d.Lines {
		sum[l.PartKey] += l.QuantityToPick
	}
	if sum["C100N"] != 6 || sum["LED1"] != 9 {
		t.Fatalf("per-part totals = %v, want C100N 6, LED1 9", sum)
	}
}

func TestCreatePickListRejectsShortStockAtomically(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 4)
	f.part(t, "R10K")
	f.part(t, "LED1")
	f.stock(t, "R10K", box, 1, 5)
	f.stock(t, "R10K", box, 2, 2)
	f.stock(t, "LED1", box, 3, 100)
	k := f.kit(t, "amp", 1, map[string]int{"R10K": 3, "LED1": 1})

	_, err := f.pickLists.Create(ctx, k.ID, 3)
	if !errors.Is(err, errs.ErrInvalidOperation) {
		t.Fatalf("err = %v, want invalid operation", err)
	}
	var short *InsufficientStockError
	if !errors.As(err, &short) || len(short.Shortfalls) != 1 {
		t.Fatalf("err = %#v, want one shortfall", err)
	}
	want := "insufficient stock for part R10K: need 9, have 7 (short by 2)"
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("message %q does not contain %q", err.Error(), want)
	}

	lists, err := f.pickLists.ListForKit(ctx, k.ID)
	if err != nil {
		t.Fatalf("ListForKit: %v", err)
	}
	if len(lists) != 0 {
		t.Fatalf("failed creation left %d pick lists behind", len(lists))
	}
	if f.sink.count(metrics.EventPickListCreationFailed) != 1 {
		t.Fatal("pick_list_creation_failed not recorded")
	}
}

func TestCreatePickListValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 1)
	f.part(t, "R1")
	f.stock(t, "R1", box, 1, 10)
	active := f.kit(t, "active", 1, map[string]int{"R1": 1})
	wide := f.kit(t, "wide", 1, map[string]int{"R1": 4})
	empty := f.kit(t, "empty", 1, nil)
	archived := f.kit(t, "old", 1, map[string]int{"R1": 1})
	if _, err := f.kits.Archive(ctx, archived.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	tests := []struct {
		name  string
		kitID int64
		units int
		kind  error
	}{
		{"zero units", active.ID, 0, errs.ErrInvalidOperation},
		{"negative units", active.ID, -2, errs.ErrInvalidOperation},
		{"unknown kit", 9999, 1, errs.ErrNotFound},
		{"archived kit", archived.ID, 1, errs.ErrInvalidOperation},
		{"no contents", empty.ID, 1, errs.ErrInvalidOperation},
		{"units beyond column range", active.ID, math.MaxInt32 + 1, errs.ErrInvalidOperation},
		{"units that wrap the total", wide.ID, 1 << 62, errs.ErrInvalidOperation},
		{"total beyond column range", wide.ID, 1 << 30, errs.ErrInvalidOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.pickLists.Create(ctx, tt.kitID, tt.units)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("err = %v, want %v", err, tt.kind)
			}
		})
	}
	for _, k := range []int64{active.ID, wide.ID} {
		if lists, err := f.pickLists.ListForKit(ctx, k); err != nil || len(lists) != 0 {
			t.Fatalf("kit %d: pick lists = %d, %v; want none", k, len(lists), err)
		}
	}
}

func TestCreatePickListIsDeterministic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 3)
	f.part(t, "D1")
	// equal quantities fall back to box and location order
	f.stock(t, "D1", box, 3, 3)
	f.stock(t, "D1", box, 1, 3)
	f.stock(t, "D1", box, 2, 3)
	k := f.kit(t, "rectifier", 1, map[string]int{"D1": 4})

	plan := func() []int {
		d, err := f.pickLists.Create(ctx, k.ID, 1)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		out := make([]int, 0, len(d.Lines))
		for _, l := range d.Lines {
			out = append(out, l.LocNo*100+l.QuantityToPick)
		}
		return out
	}
	first, second := plan(), plan()
	want := []int{103, 201}
	for _, got := range [][]int{first, second} {
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Fatalf("allocation = %v, want %v", got, want)
		}
	}
}

func TestPickAndUndoRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 2)
	f.part(t, "R10K")
	f.stock(t, "R10K", box, 1, 5)
	f.stock(t, "R10K", box, 2, 2)
	k := f.kit(t, "amp", 1, map[string]int{"R10K": 3})
	d, err := f.pickLists.Create(ctx, k.ID, 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var line picklists.Line
	for _, l := range d.Lines {
		if l.LocNo == 2 {
			line = l
		}
	}

	d, err = f.pickLists.PickLine(ctx, d.ID, line.ID)
	if err != nil {
		t.Fatalf("PickLine: %v", err)
	}
	if got := f.qtyAt(t, "R10K", box, 2); got != 0 {
		t.Fatalf("qty at 2 after pick = %d, want 0 (row removed)", got)
	}
	picked := findLine(t, d, line.ID)
	if !picked.Completed() || picked.InventoryChangeID == nil || picked.PickedAt == nil {
		t.Fatalf("picked line = %+v", picked)
	}
	hist, err := f.inventory.History(ctx, "R10K", 1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if hist[0].ID != *picked.InventoryChangeID || hist[0].DeltaQty != -2 || hist[0].LocationReference != "1-2" {
		t.Fatalf("history head = %+v, want -2 at 1-2", hist[0])
	}
	if d.Status != picklists.StatusOpen {
		t.Fatal("pick list completed with an open line left")
	}

	d, err = f.pickLists.UndoLine(ctx, d.ID, line.ID)
	if err != nil {
		t.Fatalf("UndoLine: %v", err)
	}
	if got := f.qtyAt(t, "R10K", box, 2); got != 2 {
		t.Fatalf("qty at 2 after undo = %d, want 2", got)
	}
	undone := findLine(t, d, line.ID)
	if undone.Completed() || undone.InventoryChangeID != nil || undone.PickedAt != nil {
		t.Fatalf("undone line = %+v", undone)
	}
	if n := f.sink.count(metrics.EventPickLineUndone); n != 1 {
		t.Fatalf("pick_line_undone recorded %d times, want 1", n)
	}
}

func TestRollupFollowsLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 2)
	f.part(t, "U1")
	f.part(t, "U2")
	f.stock(t, "U1", box, 1, 10)
	f.stock(t, "U2", box, 2, 10)
	k := f.kit(t, "board", 1, map[string]int{"U1": 1, "U2": 2})
	d, err := f.pickLists.Create(ctx, k.ID, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, l := range d.Lines {
		if d, err = f.pickLists.PickLine(ctx, d.ID, l.ID); err != nil {
			t.Fatalf("PickLine %d: %v", l.ID, err)
		}
	}
	if d.Status != picklists.StatusCompleted || d.CompletedAt == nil {
		t.Fatalf("after picking every line: status=%s completed_at=%v", d.Status, d.CompletedAt)
	}
	if d.PickedQuantity != 3 || d.RemainingQuantity() != 0 {
		t.Fatalf("picked=%d remaining=%d", d.PickedQuantity, d.RemainingQuantity())
	}
	if f.sink.count(metrics.EventPickListCompleted) != 1 || len(f.notifier.messages) != 1 {
		t.Fatal("completion should be recorded and announced once")
	}
	if !strings.Contains(f.notifier.messages[0], `"board"`) {
		t.Fatalf("notification %q does not name the kit", f.notifier.messages[0])
	}

	d, err = f.pickLists.UndoLine(ctx, d.ID, d.Lines[0].ID)
	if err != nil {
		t.Fatalf("UndoLine: %v", err)
	}
	if d.Status != picklists.StatusOpen || d.CompletedAt != nil {
		t.Fatalf("after undo: status=%s completed_at=%v", d.Status, d.CompletedAt)
	}
}

func TestPickLineGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 2)
	f.part(t, "Q1")
	f.stock(t, "Q1", box, 1, 4)
	k := f.kit(t, "switch", 1, map[string]int{"Q1": 2})
	d, err := f.pickLists.Create(ctx, k.ID, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	lineID := d.Lines[0].ID

	if _, err := f.pickLists.PickLine(ctx, 9999, lineID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("unknown pick list: err = %v", err)
	}
	if _, err := f.pickLists.PickLine(ctx, d.ID, 9999); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("unknown line: err = %v", err)
	}

	// Undoing an open line is a no-op.
	before, _ := f.inventory.History(ctx, "Q1", 0)
	if _, err := f.pickLists.UndoLine(ctx, d.ID, lineID); err != nil {
		t.Fatalf("UndoLine on open line: %v", err)
	}
	after, _ := f.inventory.History(ctx, "Q1", 0)
	if len(after) != len(before) {
		t.Fatal("undo of an open line wrote history")
	}

	if _, err := f.pickLists.PickLine(ctx, d.ID, lineID); err != nil {
		t.Fatalf("PickLine: %v", err)
	}
	if _, err := f.pickLists.PickLine(ctx, d.ID, lineID); !errors.Is(err, errs.ErrInvalidOperation) {
		t.Fatalf("second pick: err = %v, want invalid operation", err)
	}
	if got := f.qtyAt(t, "Q1", box, 1); got != 2 {
		t.Fatalf("qty = %d, want 2 (picked once)", got)
	}
}

func TestPickLineFailureLeavesLineOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 2)
	f.part(t, "Q1")
	f.stock(t, "Q1", box, 1, 4)
	k := f.kit(t, "switch", 1, map[string]int{"Q1": 3})
	d, err := f.pickLists.Create(ctx, k.ID, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Someone takes stock out of the bin after the plan was made.
	if _, err := f.inventory.RemoveStock(ctx, StockChange{PartKey: "Q1", BoxNo: box, LocNo: 1, Qty: 2}); err != nil {
		t.Fatalf("RemoveStock: %v", err)
	}

	_, err = f.pickLists.PickLine(ctx, d.ID, d.Lines[0].ID)
	if !errors.Is(err, errs.ErrInvalidOperation) {
		t.Fatalf("err = %v, want invalid operation", err)
	}
	d, err = f.pickLists.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Lines[0].Completed() || d.Lines[0].InventoryChangeID != nil {
		t.Fatalf("line changed despite failed pick: %+v", d.Lines[0])
	}
	if got := f.qtyAt(t, "Q1", box, 1); got != 2 {
		t.Fatalf("qty = %d, want 2", got)
	}
}

func TestMetricLabelsAreBounded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 1)
	f.part(t, "Q1")
	f.stock(t, "Q1", box, 1, 2)
	k := f.kit(t, "switch", 1, map[string]int{"Q1": 1})

	if _, err := f.pickLists.Create(ctx, k.ID, 0); err == nil {
		t.Fatal("zero units accepted")
	}
	if _, err := f.pickLists.Create(ctx, k.ID, 5); err == nil {
		t.Fatal("short stock accepted")
	}
	if _, err := f.pickLists.Create(ctx, 9999, 1); err == nil {
		t.Fatal("unknown kit accepted")
	}
	d, err := f.pickLists.Create(ctx, k.ID, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.pickLists.PickLine(ctx, d.ID, d.Lines[0].ID); err != nil {
		t.Fatalf("PickLine: %v", err)
	}

	var reasons []string
	for _, l := range f.sink.labels(metrics.EventPickListCreationFailed) {
		reasons = append(reasons, l["reason"])
	}
	if want := []string{"invalid", "insufficient_stock", "not_found"}; strings.Join(reasons, ",") != strings.Join(want, ",") {
		t.Fatalf("failure reasons = %v, want %v", reasons, want)
	}
	for key := range f.sink.labelKeys() {
		if key != "reason" && key != "honor_reserved" {
			t.Errorf("unbounded label %q recorded", key)
		}
	}
}

func TestConcurrentPicksDeductOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 1)
	f.part(t, "Q1")
	f.stock(t, "Q1", box, 1, 10)
	k := f.kit(t, "switch", 1, map[string]int{"Q1": 3})
	d, err := f.pickLists.Create(ctx, k.ID, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	lineID := d.Lines[0].ID

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.pickLists.PickLine(ctx, d.ID, lineID)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, errs.ErrInvalidOperation) {
				t.Errorf("PickLine: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("successful picks = %d, want 1", successes)
	}
	if got := f.qtyAt(t, "Q1", box, 1); got != 7 {
		t.Fatalf("qty = %d, want 7 (one deduction)", got)
	}
	hist, err := f.inventory.History(ctx, "Q1", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("history rows = %d, want stock-in plus one pick", len(hist))
	}
	if n := f.sink.count(metrics.EventPickLinePicked); n != 1 {
		t.Fatalf("pick_line_picked recorded %d times, want 1", n)
	}
}

func TestConcurrentPickAndUndoStayConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 1)
	f.part(t, "Q1")
	f.stock(t, "Q1", box, 1, 10)
	k := f.kit(t, "switch", 1, map[string]int{"Q1": 3})
	d, err := f.pickLists.Create(ctx, k.ID, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	lineID := d.Lines[0].ID

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = f.pickLists.PickLine(ctx, d.ID, lineID)
			} else {
				_, _ = f.pickLists.UndoLine(ctx, d.ID, lineID)
			}
		}()
	}
	wg.Wait()

	d, err = f.pickLists.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := 10
	if d.Lines[0].Completed() {
		want = 7
	}
	if got := f.qtyAt(t, "Q1", box, 1); got != want {
		t.Fatalf("qty = %d with line completed=%v, want %d", got, d.Lines[0].Completed(), want)
	}
}

func TestGetMatchesRollupWhilePicking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 3)
	for _, key := range []string{"A1", "A2", "A3"} {
		f.part(t, key)
	}
	f.stock(t, "A1", box, 1, 5)
	f.stock(t, "A2", box, 2, 5)
	f.stock(t, "A3", box, 3, 5)
	k := f.kit(t, "board", 1, map[string]int{"A1": 1, "A2": 1, "A3": 1})
	d, err := f.pickLists.Create(ctx, k.ID, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var wg sync.WaitGroup
	for _, l := range d.Lines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.pickLists.PickLine(ctx, d.ID, l.ID); err != nil {
				t.Errorf("PickLine %d: %v", l.ID, err)
			}
		}()
	}
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				got, err := f.pickLists.Get(ctx, d.ID)
				if err != nil {
					t.Errorf("Get: %v", err)
					return
				}
				if want := picklists.RollupStatus(got.Lines); got.Status != want {
					t.Errorf("status %s alongside lines that roll up to %s", got.Status, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestUndoLineRequiresStockChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 1)
	f.part(t, "Q1")
	f.stock(t, "Q1", box, 1, 4)
	k := f.kit(t, "switch", 1, map[string]int{"Q1": 1})
	d, err := f.pickLists.Create(ctx, k.ID, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d, err = f.pickLists.PickLine(ctx, d.ID, d.Lines[0].ID); err != nil {
		t.Fatalf("PickLine: %v", err)
	}

	// Drop the stock change reference behind the service's back.
	line := d.Lines[0]
	line.InventoryChangeID = nil
	if err := f.store.Repos().PickLists.UpdateLine(ctx, line); err != nil {
		t.Fatalf("UpdateLine: %v", err)
	}

	if _, err := f.pickLists.UndoLine(ctx, d.ID, line.ID); !errors.Is(err, errs.ErrInvalidOperation) {
		t.Fatalf("err = %v, want invalid operation", err)
	}
	if got := f.qtyAt(t, "Q1", box, 1); got != 3 {
		t.Fatalf("qty = %d, want 3 (nothing restored)", got)
	}
	d, err = f.pickLists.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !d.Lines[0].Completed() {
		t.Fatal("failed undo reopened the line")
	}
}

func TestDeletePickList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := f.box(t, 1)
	f.part(t, "Q1")
	f.stock(t, "Q1", box, 1, 4)
	k := f.kit(t, "switch", 1, map[string]int{"Q1": 1})
	d, err := f.pickLists.Create(ctx, k.ID, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.pickLists.PickLine(ctx, d.ID, d.Lines[0].ID); err != nil {
		t.Fatalf("PickLine: %v", err)
	}

	if err := f.pickLists.Delete(ctx, d.ID); !errors.Is(err, errs.ErrInvalidOperation) {
		t.Fatalf("delete with picked line: err = %v", err)
	}
	if _, err := f.pickLists.UndoLine(ctx, d.ID, d.Lines[0].ID); err != nil {
		t.Fatalf("UndoLine: %v", err)
	}
	if err := f.pickLists.Delete(ctx, d.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.pickLists.Get(ctx, d.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Get after delete: err = %v", err)
	}
}

func TestPlanContentStopsWhenCovered(t *testing.T) {
	c := contentFor("R1", 2)
	lines, short := planContent(c, 2, stockRows(1, 10, 2, 10))
	if short != nil {
		t.Fatalf("unexpected shortfall %v", short)
	}
	if len(lines) != 1 || lines[0].QuantityToPick != 4 {
		t.Fatalf("lines = %+v, want a single line of 4", lines)
	}
}

func findLine(t *testing.T, d *PickListDetail, id int64) picklists.Line {
	t.Helper()
	for _, l := range d.Lines {
		if l.ID == id {
			return l
		}
	}
	t.Fatalf("line %d not in pick list %d", id, d.ID)
	return picklists.Line{}
}
