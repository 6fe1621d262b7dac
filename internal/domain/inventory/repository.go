package inventory

import "context"

type Repository interface {
	// GetPartLocationForUpdate row-locks the (part, location) stock record.
	// Returns (nil, nil) when the part has no stock there.
	GetPartLocationForUpdate(ctx context.Context, partID, locationID int64) (*PartLocation, error)
	// ListPartLocations returns every stock record of a part in allocation
	// order (see ByAllocationOrder).
	ListPartLocations(ctx context.Context, partID int64) ([]PartLocation, error)
	InsertPartLocation(ctx context.Context, partID, locationID int64, qty int) (*PartLocation, error)
	SetQty(ctx context.Context, id int64, qty int) error
	DeletePartLocation(ctx context.Context, id int64) error

	TotalQuantity(ctx context.Context, partID int64) (int, error)
	// TotalQuantities returns stock totals keyed by part id; parts without
	// stock are absent from the map.
	TotalQuantities(ctx context.Context, partIDs []int64) (map[int64]int, error)

	AppendHistory(ctx context.Context, h QuantityHistory) (*QuantityHistory, error)
	ListHistory(ctx context.Context, partID int64, limit int) ([]QuantityHistory, error)
}
