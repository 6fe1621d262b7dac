package kits

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

func (s Status) Valid() bool { return s == StatusActive || s == StatusArchived }

// Kit owns a bill of materials. ArchivedAt is set iff Status is archived.
type Kit struct {
	ID          int64
	Name        string
	Description string
	BuildTarget int
	Status      Status
	ArchivedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (k Kit) Archived() bool { return k.Status == StatusArchived }

// Summary is a kit with its badge counts.
type Summary struct {
	Kit
	OpenPickLists     int
	ShoppingListLinks int
}

// Content is one BOM row. PartKey is empty when the referenced part no
// longer resolves.
type Content struct {
	ID              int64
	KitID           int64
	PartID          int64
	PartKey         string
	PartDescription string
	RequiredPerUnit int
	Note            string
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ContentUpdate carries the caller's last observed version; nil fields are
// left untouched.
type ContentUpdate struct {
	RequiredPerUnit *int
	Note            *string
	Version         int
}

// ReservationRow is one active kit's BOM claim on a part.
type ReservationRow struct {
	PartID          int64
	KitID           int64
	KitName         string
	Status          Status
	BuildTarget     int
	RequiredPerUnit int
	UpdatedAt       time.Time
}
