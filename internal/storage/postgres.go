package storage

import (
	"context"
	"fmt"

	"github.com/Spok95/parts-inventory/internal/domain/inventory"
	"github.com/Spok95/parts-inventory/internal/domain/kits"
	"github.com/Spok95/parts-inventory/internal/domain/parts"
	"github.com/Spok95/parts-inventory/internal/domain/picklists"
	"github.com/Spok95/parts-inventory/internal/domain/shopping"
	"github.com/Spok95/parts-inventory/internal/infra/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct{ pool *pgxpool.Pool }

func NewPostgres(pool *pgxpool.Pool) *PostgresStore { return &PostgresStore{pool: pool} }

func reposOver(conn db.DBTX) Repos {
	return Repos{
		Parts:     parts.NewRepo(conn),
		Inventory: inventory.NewRepo(conn),
		Kits:      kits.NewRepo(conn),
		PickLists: picklists.NewRepo(conn),
		Shopping:  shopping.NewRepo(conn),
	}
}

func (s *PostgresStore) Repos() Repos { return reposOver(s.pool) }

func (s *PostgresStore) InTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(reposOver(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) InSnapshot(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(reposOver(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
