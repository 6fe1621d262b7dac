package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/domain/picklists"
	"github.com/Spok95/parts-inventory/internal/metrics"
	"github.com/Spok95/parts-inventory/internal/storage"
)

// PickListDetail is a pick list with its lines in display order.
type PickListDetail struct {
	picklists.PickList
	Lines              []picklists.Line
	CompletedLineCount int
	TotalQuantity      int
	PickedQuantity     int
}

func (d PickListDetail) RemainingQuantity() int { return d.TotalQuantity - d.PickedQuantity }

func newPickListDetail(pl picklists.PickList, lines []picklists.Line) *PickListDetail {
	d := &PickListDetail{PickList: pl, Lines: lines}
	for _, l := range lines {
		d.TotalQuantity += l.QuantityToPick
		if l.Completed() {
			d.CompletedLineCount++
			d.PickedQuantity += l.QuantityToPick
		}
	}
	return d
}

// PickLists allocates pick lists from stock and drives line fulfillment.
type PickLists struct {
	deps Deps
}

func NewPickLists(d Deps) *PickLists {
	return &PickLists{deps: d.withDefaults()}
}

// Create plans requestedUnits builds of a kit against current stock and
// persists the pick list. Any short BOM entry fails the whole call and
// nothing is written.
func (s *PickLists) Create(ctx context.Context, kitID int64, requestedUnits int) (*PickListDetail, error) {
	if requestedUnits < 1 {
		err := errs.Invalid("requested units must be >= 1, got %d", requestedUnits)
		s.recordCreationFailed(err)
		return nil, err
	}
	if err := checkQuantity("requested units", requestedUnits); err != nil {
		s.recordCreationFailed(err)
		return nil, err
	}

	var (
		created *picklists.PickList
		lines   []picklists.Line
	)
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		kit, err := getKit(ctx, r, kitID)
		if err != nil {
			return err
		}
		if kit.Archived() {
			return errs.Invalid("kit %q is archived; unarchive it to create pick lists", kit.Name)
		}

		contents, err := r.Kits.ListContents(ctx, kitID)
		if err != nil {
			return fmt.Errorf("list contents of kit %d: %w", kitID, err)
		}
		if len(contents) == 0 {
			return errs.Invalid("kit %q has no contents", kit.Name)
		}

		var shortfalls []Shortfall
		for _, c := range contents {
			if c.PartKey == "" {
				return errs.Invalid("kit content %d references missing part %d", c.ID, c.PartID)
			}
			if _, err := requiredTotal(c.PartKey, c.RequiredPerUnit, requestedUnits); err != nil {
				return err
			}
			candidates, err := r.Inventory.ListPartLocations(ctx, c.PartID)
			if err != nil {
				return fmt.Errorf("list stock of part %s: %w", c.PartKey, err)
			}
			planned, short := planContent(c, requestedUnits, candidates)
			if short != nil {
				shortfalls = append(shortfalls, *short)
				continue
			}
			lines = append(lines, planned...)
		}
		if len(shortfalls) > 0 {
			return &InsufficientStockError{KitID: kitID, Units: requestedUnits, Shortfalls: shortfalls}
		}

		created, err = r.PickLists.Create(ctx, picklists.PickList{KitID: kitID, RequestedUnits: requestedUnits}, lines)
		if err != nil {
			return fmt.Errorf("create pick list: %w", err)
		}
		return nil
	})
	if err != nil {
		s.recordCreationFailed(err)
		var short *InsufficientStockError
		if errors.As(err, &short) {
			s.deps.Log.Info("pick list rejected", "kit_id", kitID, "units", requestedUnits, "err", err)
		}
		return nil, err
	}

	s.deps.Metrics.RecordEvent(metrics.EventPickListCreated, nil)
	s.deps.Log.Info("pick list created",
		"pick_list_id", created.ID, "kit_id", kitID, "units", requestedUnits, "lines", len(lines))
	return s.Get(ctx, created.ID)
}

// Get reads the header and its lines from one snapshot, so the status always
// matches the lines returned with it.
func (s *PickLists) Get(ctx context.Context, id int64) (*PickListDetail, error) {
	var out *PickListDetail
	err := s.deps.Store.InSnapshot(ctx, func(r storage.Repos) error {
		pl, err := r.PickLists.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("get pick list %d: %w", id, err)
		}
		if pl == nil {
			return errs.NotFound("pick list", id)
		}
		lines, err := r.PickLists.ListLines(ctx, id)
		if err != nil {
			return fmt.Errorf("list lines of pick list %d: %w", id, err)
		}
		out = newPickListDetail(*pl, lines)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListForKit returns the kit's pick lists, newest first.
func (s *PickLists) ListForKit(ctx context.Context, kitID int64) ([]picklists.Summary, error) {
	r := s.deps.Store.Repos()
	if _, err := getKit(ctx, r, kitID); err != nil {
		return nil, err
	}
	return r.PickLists.ListForKit(ctx, kitID)
}

// Delete removes a pick list that has no picked lines.
func (s *PickLists) Delete(ctx context.Context, id int64) error {
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		pl, err := r.PickLists.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("lock pick list %d: %w", id, err)
		}
		if pl == nil {
			return errs.NotFound("pick list", id)
		}
		lines, err := r.PickLists.ListLines(ctx, id)
		if err != nil {
			return fmt.Errorf("list lines of pick list %d: %w", id, err)
		}
		for _, l := range lines {
			if l.Completed() {
				return errs.Invalid("pick list %d has picked lines; undo them before deleting", id)
			}
		}
		return r.PickLists.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.deps.Log.Info("pick list deleted", "pick_list_id", id)
	return nil
}

// PickLine takes a line's quantity out of its location and marks it
// completed. The stock deduction, the line and the rolled-up pick list
// status commit together.
func (s *PickLists) PickLine(ctx context.Context, pickListID, lineID int64) (*PickListDetail, error) {
	var (
		kitID     int64
		completed bool
		partKey   string
		qty       int
	)
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		pl, line, err := lockLine(ctx, r, pickListID, lineID)
		if err != nil {
			return err
		}
		if line.Completed() {
			return errs.Invalid("line %d of pick list %d is already picked", lineID, pickListID)
		}
		if !line.HasLinks() {
			return errs.Invalid("line %d of pick list %d no longer resolves to a part and location", lineID, pickListID)
		}

		h, err := removeStock(ctx, r, StockChange{
			PartKey: line.PartKey, BoxNo: line.BoxNo, LocNo: line.LocNo, Qty: line.QuantityToPick,
		})
		if err != nil {
			return fmt.Errorf("pick line %d: %w", lineID, err)
		}

		line.Status = picklists.StatusCompleted
		line.InventoryChangeID = &h.ID
		line.PickedAt = s.deps.nowPtr()
		if err := r.PickLists.UpdateLine(ctx, *line); err != nil {
			return fmt.Errorf("update line %d: %w", lineID, err)
		}

		status, err := s.rollup(ctx, r, pl)
		if err != nil {
			return err
		}
		kitID, partKey, qty = pl.KitID, line.PartKey, line.QuantityToPick
		completed = status == picklists.StatusCompleted && pl.Status != picklists.StatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.RecordEvent(metrics.EventPickLinePicked, nil)
	s.deps.Log.Info("line picked",
		"pick_list_id", pickListID, "line_id", lineID, "part_key", partKey, "qty", qty)

	detail, err := s.Get(ctx, pickListID)
	if err != nil {
		return nil, err
	}
	if completed {
		s.deps.Metrics.RecordEvent(metrics.EventPickListCompleted, nil)
		s.deps.Log.Info("pick list completed", "pick_list_id", pickListID, "kit_id", kitID)
		s.deps.notify(ctx, fmt.Sprintf("Pick list #%d for kit %q completed: %d units, %d lines picked.",
			detail.ID, detail.KitName, detail.RequestedUnits, len(detail.Lines)))
	}
	return detail, nil
}

// UndoLine puts a picked line's quantity back and reopens the line. Undoing
// an open line changes nothing.
func (s *PickLists) UndoLine(ctx context.Context, pickListID, lineID int64) (*PickListDetail, error) {
	var (
		kitID   int64
		undone  bool
		partKey string
		qty     int
	)
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		pl, line, err := lockLine(ctx, r, pickListID, lineID)
		if err != nil {
			return err
		}
		if !line.Completed() {
			return nil
		}
		if line.InventoryChangeID == nil || !line.HasLinks() {
			return errs.Invalid("line %d of pick list %d is missing its stock change or part/location links", lineID, pickListID)
		}

		if _, err := addStock(ctx, r, StockChange{
			PartKey: line.PartKey, BoxNo: line.BoxNo, LocNo: line.LocNo, Qty: line.QuantityToPick,
		}); err != nil {
			return fmt.Errorf("undo line %d: %w", lineID, err)
		}

		line.Status = picklists.StatusOpen
		line.InventoryChangeID = nil
		line.PickedAt = nil
		if err := r.PickLists.UpdateLine(ctx, *line); err != nil {
			return fmt.Errorf("update line %d: %w", lineID, err)
		}

		if _, err := s.rollup(ctx, r, pl); err != nil {
			return err
		}
		kitID, partKey, qty = pl.KitID, line.PartKey, line.QuantityToPick
		undone = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if undone {
		s.deps.Metrics.RecordEvent(metrics.EventPickLineUndone, nil)
		s.deps.Log.Info("line undone",
			"pick_list_id", pickListID, "kit_id", kitID, "line_id", lineID, "part_key", partKey, "qty", qty)
	}
	return s.Get(ctx, pickListID)
}

func (s *PickLists) recordCreationFailed(err error) {
	s.deps.Metrics.RecordEvent(metrics.EventPickListCreationFailed, map[string]string{"reason": failureReason(err)})
}

// failureReason buckets an error into a bounded metric label value.
func failureReason(err error) string {
	var short *InsufficientStockError
	switch {
	case errors.As(err, &short):
		return "insufficient_stock"
	case errors.Is(err, errs.ErrNotFound):
		return "not_found"
	case errors.Is(err, errs.ErrInvalidOperation):
		return "invalid"
	case errors.Is(err, errs.ErrConflict):
		return "conflict"
	}
	return "error"
}

// lockLine takes the pick list lock, then the line lock.
func lockLine(ctx context.Context, r storage.Repos, pickListID, lineID int64) (*picklists.PickList, *picklists.Line, error) {
	pl, err := r.PickLists.GetForUpdate(ctx, pickListID)
	if err != nil {
		return nil, nil, fmt.Errorf("lock pick list %d: %w", pickListID, err)
	}
	if pl == nil {
		return nil, nil, errs.NotFound("pick list", pickListID)
	}
	line, err := r.PickLists.GetLineForUpdate(ctx, pickListID, lineID)
	if err != nil {
		return nil, nil, fmt.Errorf("lock line %d: %w", lineID, err)
	}
	if line == nil {
		return nil, nil, errs.NotFound("pick list line", lineID)
	}
	return pl, line, nil
}

// rollup recomputes the pick list status from its lines and stores it when
// it changed.
func (s *PickLists) rollup(ctx context.Context, r storage.Repos, pl *picklists.PickList) (picklists.Status, error) {
	lines, err := r.PickLists.ListLines(ctx, pl.ID)
	if err != nil {
		return "", fmt.Errorf("list lines of pick list %d: %w", pl.ID, err)
	}
	status := picklists.RollupStatus(lines)
	if status == pl.Status {
		return status, nil
	}

	var completedAt *time.Time
	if status == picklists.StatusCompleted {
		completedAt = s.deps.nowPtr()
	}
	if err := r.PickLists.UpdateStatus(ctx, pl.ID, status, completedAt); err != nil {
		return "", fmt.Errorf("update pick list %d status: %w", pl.ID, err)
	}
	return status, nil
}
