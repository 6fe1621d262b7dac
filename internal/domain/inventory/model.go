package inventory

import (
	"cmp"
	"time"
)

// PartLocation is the stock of one part in one location. Qty is always > 0;
// a row drained to zero is deleted.
type PartLocation struct {
	ID         int64
	PartID     int64
	PartKey    string
	LocationID int64
	BoxNo      int
	LocNo      int
	Qty        int
}

// QuantityHistory is an append-only signed delta for a part.
type QuantityHistory struct {
	ID                int64
	PartID            int64
	DeltaQty          int
	LocationReference string
	CreatedAt         time.Time
}

// ByAllocationOrder orders candidates smallest stock first, then by box,
// location and row id.
func ByAllocationOrder(a, b PartLocation) int {
	switch {
	case a.Qty != b.Qty:
		return cmp.Compare(a.Qty, b.Qty)
	case a.BoxNo != b.BoxNo:
		return cmp.Compare(a.BoxNo, b.BoxNo)
	case a.LocNo != b.LocNo:
		return cmp.Compare(a.LocNo, b.LocNo)
	}
	return cmp.Compare(a.ID, b.ID)
}
