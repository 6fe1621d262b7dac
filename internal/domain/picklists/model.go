package picklists

import (
	"cmp"
	"time"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusCompleted Status = "completed"
)

type PickList struct {
	ID             int64
	KitID          int64
	KitName        string
	RequestedUnits int
	Status         Status
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Summary is a pick list header with line aggregates, used for listings.
type Summary struct {
	PickList
	LineCount          int
	CompletedLineCount int
	TotalQuantity      int
	PickedQuantity     int
}

// Line allocates part of one BOM entry to one location. Link fields are zero
// when the referenced content, part or location no longer resolves.
type Line struct {
	ID                int64
	PickListID        int64
	KitContentID      int64
	PartID            int64
	PartKey           string
	PartDescription   string
	LocationID        int64
	BoxNo             int
	LocNo             int
	QuantityToPick    int
	Status            Status
	InventoryChangeID *int64
	PickedAt          *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (l Line) Completed() bool { return l.Status == StatusCompleted }

// HasLinks reports whether the line still resolves to a part and a location.
func (l Line) HasLinks() bool {
	return l.KitContentID != 0 && l.PartID != 0 && l.PartKey != "" && l.LocationID != 0
}

// ByDisplayOrder orders lines by part key, box, location, then line id.
func ByDisplayOrder(a, b Line) int {
	if c := cmp.Compare(a.PartKey, b.PartKey); c != 0 {
		return c
	}
	if c := cmp.Compare(a.BoxNo, b.BoxNo); c != 0 {
		return c
	}
	if c := cmp.Compare(a.LocNo, b.LocNo); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// RollupStatus derives a pick list's status from its lines: completed iff
// there is at least one line and every line is completed.
func RollupStatus(lines []Line) Status {
	if len(lines) == 0 {
		return StatusOpen
	}
	for _, l := range lines {
		if !l.Completed() {
			return StatusOpen
		}
	}
	return StatusCompleted
}
