package kits

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, k Kit) (*Kit, error)
	// Get returns (nil, nil) for unknown ids.
	Get(ctx context.Context, id int64) (*Kit, error)
	List(ctx context.Context, status Status) ([]Summary, error)
	Update(ctx context.Context, k Kit) (*Kit, error)
	SetStatus(ctx context.Context, id int64, status Status, archivedAt *time.Time) (*Kit, error)
	// Touch bumps updated_at, used when the BOM changes.
	Touch(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error

	// ListContents resolves part references in one round trip, ordered by part key.
	ListContents(ctx context.Context, kitID int64) ([]Content, error)
	GetContent(ctx context.Context, kitID, contentID int64) (*Content, error)
	CreateContent(ctx context.Context, c Content) (*Content, error)
	// UpdateContent writes only when the stored version still equals
	// expectedVersion and bumps it; ok is false on a version mismatch.
	UpdateContent(ctx context.Context, c Content, expectedVersion int) (updated *Content, ok bool, err error)
	DeleteContent(ctx context.Context, kitID, contentID int64) error

	// ActiveReservations lists BOM rows of active kits for the given parts.
	ActiveReservations(ctx context.Context, partIDs []int64) ([]ReservationRow, error)
}
