// Package storage composes the domain repositories into a unit of work.
package storage

import (
	"context"

	"github.com/Spok95/parts-inventory/internal/domain/inventory"
	"github.com/Spok95/parts-inventory/internal/domain/kits"
	"github.com/Spok95/parts-inventory/internal/domain/parts"
	"github.com/Spok95/parts-inventory/internal/domain/picklists"
	"github.com/Spok95/parts-inventory/internal/domain/shopping"
)

type Repos struct {
	Parts     parts.Repository
	Inventory inventory.Repository
	Kits      kits.Repository
	PickLists picklists.Repository
	Shopping  shopping.Repository
}

// Store hands out repositories. Writes made through the Repos passed to fn
// commit together when fn returns nil and are rolled back otherwise.
// Implementations must honour the ForUpdate lookups as row locks held until
// the transaction ends.
type Store interface {
	Repos() Repos
	InTx(ctx context.Context, fn func(Repos) error) error
	// InSnapshot runs fn read-only against one consistent view of the data.
	InSnapshot(ctx context.Context, fn func(Repos) error) error
}
