package parts

import "context"

// Repository lookups return (nil, nil) when the row does not exist.
type Repository interface {
	// Boxes and locations
	CreateBox(ctx context.Context, description string, capacity int) (*Box, error)
	GetBox(ctx context.Context, boxNo int) (*Box, error)
	ListBoxes(ctx context.Context) ([]Box, error)
	ListLocations(ctx context.Context, boxNo int) ([]Location, error)
	GetLocation(ctx context.Context, boxNo, locNo int) (*Location, error)

	// Parts
	CreatePart(ctx context.Context, p Part) (*Part, error)
	GetPartByKey(ctx context.Context, key string) (*Part, error)
	GetPartByID(ctx context.Context, id int64) (*Part, error)
	ListParts(ctx context.Context) ([]Part, error)
}
