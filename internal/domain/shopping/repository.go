package shopping

import "context"

type Repository interface {
	CreateList(ctx context.Context, l List) (*List, error)
	// GetList returns (nil, nil) for unknown ids.
	GetList(ctx context.Context, id int64) (*List, error)
	ListLists(ctx context.Context) ([]List, error)
	SetStatus(ctx context.Context, id int64, status Status) (*List, error)

	ListLines(ctx context.Context, listID int64) ([]Line, error)
	// GetLineForUpdate row-locks the list line of a part; (nil, nil) if absent.
	GetLineForUpdate(ctx context.Context, listID, partID int64) (*Line, error)
	InsertLine(ctx context.Context, l Line) (*Line, error)
	UpdateLine(ctx context.Context, l Line) error

	// GetKitLinkForUpdate row-locks the kit/list link; (nil, nil) if absent.
	GetKitLinkForUpdate(ctx context.Context, kitID, listID int64) (*KitLink, error)
	InsertKitLink(ctx context.Context, l KitLink) (*KitLink, error)
	UpdateKitLink(ctx context.Context, l KitLink) error
	ListKitLinks(ctx context.Context, kitID int64) ([]KitLink, error)
}
