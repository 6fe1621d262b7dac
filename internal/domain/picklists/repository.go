package picklists

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserts the header and all lines; callers run it inside a
	// transaction so a failure leaves nothing behind.
	Create(ctx context.Context, pl PickList, lines []Line) (*PickList, error)
	// Get returns (nil, nil) for unknown ids.
	Get(ctx context.Context, id int64) (*PickList, error)
	// GetForUpdate row-locks the header. Pick and undo take it before the
	// line lock so status rollups of one pick list never interleave.
	GetForUpdate(ctx context.Context, id int64) (*PickList, error)
	// ListLines returns lines in display order (see ByDisplayOrder).
	ListLines(ctx context.Context, pickListID int64) ([]Line, error)
	ListForKit(ctx context.Context, kitID int64) ([]Summary, error)
	// GetLineForUpdate row-locks one line of a pick list; (nil, nil) when
	// the line does not belong to the pick list.
	GetLineForUpdate(ctx context.Context, pickListID, lineID int64) (*Line, error)
	UpdateLine(ctx context.Context, l Line) error
	UpdateStatus(ctx context.Context, id int64, status Status, completedAt *time.Time) error
	Delete(ctx context.Context, id int64) error
}
