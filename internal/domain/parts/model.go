package parts

import (
	"fmt"
	"time"
)

type Box struct {
	ID          int64
	BoxNo       int
	Description string
	Capacity    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Location is one addressable slot; (BoxNo, LocNo) is unique.
type Location struct {
	ID    int64
	BoxID int64
	BoxNo int
	LocNo int
}

func (l Location) Ref() string { return LocationRef(l.BoxNo, l.LocNo) }

func LocationRef(boxNo, locNo int) string { return fmt.Sprintf("%d-%d", boxNo, locNo) }

type Part struct {
	ID               int64
	Key              string
	Description      string
	ManufacturerCode string
	Category         string
	Seller           string
	SellerLink       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
