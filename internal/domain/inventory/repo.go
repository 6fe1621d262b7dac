package inventory

import (
	"context"
	"errors"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/infra/db"
	"github.com/jackc/pgx/v5"
)

type Repo struct{ db db.DBTX }

func NewRepo(conn db.DBTX) *Repo { return &Repo{db: conn} }

const partLocationSelect = `
	SELECT pl.id, pl.part_id, p.key, pl.location_id, l.box_no, l.loc_no, pl.qty
	FROM part_locations pl
	JOIN parts p ON p.id = pl.part_id
	JOIN locations l ON l.id = pl.location_id`

func scanPartLocation(row pgx.Row) (*PartLocation, error) {
	var pl PartLocation
	if err := row.Scan(&pl.ID, &pl.PartID, &pl.PartKey, &pl.LocationID, &pl.BoxNo, &pl.LocNo, &pl.Qty); err != nil {
		return nil, err
	}
	return &pl, nil
}

func (r *Repo) GetPartLocationForUpdate(ctx context.Context, partID, locationID int64) (*PartLocation, error) {
	pl, err := scanPartLocation(r.db.QueryRow(ctx,
		partLocationSelect+` WHERE pl.part_id = $1 AND pl.location_id = $2 FOR UPDATE OF pl`,
		partID, locationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return pl, err
}

func (r *Repo) ListPartLocations(ctx context.Context, partID int64) ([]PartLocation, error) {
	rows, err := r.db.Query(ctx,
		partLocationSelect+` WHERE pl.part_id = $1 ORDER BY pl.qty, l.box_no, l.loc_no, pl.id`,
		partID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PartLocation
	for rows.Next() {
		pl, err := scanPartLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *pl)
	}
	return out, rows.Err()
}

func (r *Repo) InsertPartLocation(ctx context.Context, partID, locationID int64, qty int) (*PartLocation, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO part_locations (part_id, location_id, qty)
		VALUES ($1,$2,$3)
		RETURNING id
	`, partID, locationID, qty).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errs.Conflict("stock record for part %d at location %d created concurrently", partID, locationID)
		}
		return nil, err
	}
	return scanPartLocation(r.db.QueryRow(ctx, partLocationSelect+` WHERE pl.id = $1`, id))
}

func (r *Repo) SetQty(ctx context.Context, id int64, qty int) error {
	_, err := r.db.Exec(ctx, `UPDATE part_locations SET qty = $2 WHERE id = $1`, id, qty)
	return err
}

func (r *Repo) DeletePartLocation(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM part_locations WHERE id = $1`, id)
	return err
}

func (r *Repo) TotalQuantity(ctx context.Context, partID int64) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(qty), 0)::int FROM part_locations WHERE part_id = $1
	`, partID).Scan(&total)
	return total, err
}

func (r *Repo) TotalQuantities(ctx context.Context, partIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(partIDs))
	if len(partIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT part_id, SUM(qty)::int
		FROM part_locations
		WHERE part_id = ANY($1)
		GROUP BY part_id
	`, partIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var qty int
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, err
		}
		out[id] = qty
	}
	return out, rows.Err()
}

func (r *Repo) AppendHistory(ctx context.Context, h QuantityHistory) (*QuantityHistory, error) {
	var ref *string
	if h.LocationReference != "" {
		ref = &h.LocationReference
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO quantity_history (part_id, delta_qty, location_reference)
		VALUES ($1,$2,$3)
		RETURNING id, created_at
	`, h.PartID, h.DeltaQty, ref).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *Repo) ListHistory(ctx context.Context, partID int64, limit int) ([]QuantityHistory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, part_id, delta_qty, COALESCE(location_reference, ''), created_at
		FROM quantity_history
		WHERE part_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, partID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QuantityHistory
	for rows.Next() {
		var h QuantityHistory
		if err := rows.Scan(&h.ID, &h.PartID, &h.DeltaQty, &h.LocationReference, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
