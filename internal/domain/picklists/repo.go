package picklists

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/infra/db"
	"github.com/jackc/pgx/v5"
)

type Repo struct{ db db.DBTX }

func NewRepo(conn db.DBTX) *Repo { return &Repo{db: conn} }

const headerSelect = `
	SELECT pl.id, pl.kit_id, k.name, pl.requested_units, pl.status, pl.completed_at, pl.created_at, pl.updated_at
	FROM kit_pick_lists pl
	JOIN kits k ON k.id = pl.kit_id`

const lineSelect = `
	SELECT l.id, l.pick_list_id, COALESCE(l.kit_content_id, 0), COALESCE(c.part_id, 0),
	       COALESCE(p.key, ''), COALESCE(p.description, ''),
	       COALESCE(l.location_id, 0), COALESCE(loc.box_no, 0), COALESCE(loc.loc_no, 0),
	       l.quantity_to_pick, l.status, l.inventory_change_id, l.picked_at, l.created_at, l.updated_at
	FROM kit_pick_list_lines l
	LEFT JOIN kit_contents c ON c.id = l.kit_content_id
	LEFT JOIN parts p ON p.id = c.part_id
	LEFT JOIN locations loc ON loc.id = l.location_id`

func scanHeader(row pgx.Row) (*PickList, error) {
	var pl PickList
	if err := row.Scan(
		&pl.ID, &pl.KitID, &pl.KitName, &pl.RequestedUnits, &pl.Status,
		&pl.CompletedAt, &pl.CreatedAt, &pl.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &pl, nil
}

func scanLine(row pgx.Row) (*Line, error) {
	var l Line
	if err := row.Scan(
		&l.ID, &l.PickListID, &l.KitContentID, &l.PartID,
		&l.PartKey, &l.PartDescription,
		&l.LocationID, &l.BoxNo, &l.LocNo,
		&l.QuantityToPick, &l.Status, &l.InventoryChangeID, &l.PickedAt, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repo) Create(ctx context.Context, pl PickList, lines []Line) (*PickList, error) {
	var id int64
	if err := r.db.QueryRow(ctx, `
		INSERT INTO kit_pick_lists (kit_id, requested_units, status)
		VALUES ($1,$2,'open')
		RETURNING id
	`, pl.KitID, pl.RequestedUnits).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert pick list: %w", err)
	}

	for _, l := range lines {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO kit_pick_list_lines (pick_list_id, kit_content_id, location_id, quantity_to_pick, status)
			VALUES ($1,$2,$3,$4,'open')
		`, id, l.KitContentID, l.LocationID, l.QuantityToPick); err != nil {
			if db.IsUniqueViolation(err) {
				return nil, errs.Conflict("duplicate allocation of content %d at location %d", l.KitContentID, l.LocationID)
			}
			return nil, fmt.Errorf("insert pick list line: %w", err)
		}
	}
	return scanHeader(r.db.QueryRow(ctx, headerSelect+` WHERE pl.id = $1`, id))
}

func (r *Repo) Get(ctx context.Context, id int64) (*PickList, error) {
	pl, err := scanHeader(r.db.QueryRow(ctx, headerSelect+` WHERE pl.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return pl, err
}

func (r *Repo) GetForUpdate(ctx context.Context, id int64) (*PickList, error) {
	pl, err := scanHeader(r.db.QueryRow(ctx, headerSelect+` WHERE pl.id = $1 FOR UPDATE OF pl`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return pl, err
}

func (r *Repo) ListLines(ctx context.Context, pickListID int64) ([]Line, error) {
	rows, err := r.db.Query(ctx,
		lineSelect+` WHERE l.pick_list_id = $1 ORDER BY COALESCE(p.key, ''), loc.box_no, loc.loc_no, l.id`,
		pickListID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *Repo) ListForKit(ctx context.Context, kitID int64) ([]Summary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT pl.id, pl.kit_id, k.name, pl.requested_units, pl.status, pl.completed_at, pl.created_at, pl.updated_at,
		       COUNT(l.id),
		       COUNT(l.id) FILTER (WHERE l.status = 'completed'),
		       COALESCE(SUM(l.quantity_to_pick), 0)::int,
		       COALESCE(SUM(l.quantity_to_pick) FILTER (WHERE l.status = 'completed'), 0)::int
		FROM kit_pick_lists pl
		JOIN kits k ON k.id = pl.kit_id
		LEFT JOIN kit_pick_list_lines l ON l.pick_list_id = pl.id
		WHERE pl.kit_id = $1
		GROUP BY pl.id, k.name
		ORDER BY pl.created_at DESC, pl.id DESC
	`, kitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(
			&s.ID, &s.KitID, &s.KitName, &s.RequestedUnits, &s.Status, &s.CompletedAt, &s.CreatedAt, &s.UpdatedAt,
			&s.LineCount, &s.CompletedLineCount, &s.TotalQuantity, &s.PickedQuantity,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) GetLineForUpdate(ctx context.Context, pickListID, lineID int64) (*Line, error) {
	l, err := scanLine(r.db.QueryRow(ctx,
		lineSelect+` WHERE l.pick_list_id = $1 AND l.id = $2 FOR UPDATE OF l`,
		pickListID, lineID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

func (r *Repo) UpdateLine(ctx context.Context, l Line) error {
	_, err := r.db.Exec(ctx, `
		UPDATE kit_pick_list_lines
		SET status=$2, inventory_change_id=$3, picked_at=$4, updated_at=now()
		WHERE id=$1
	`, l.ID, string(l.Status), l.InventoryChangeID, l.PickedAt)
	return err
}

func (r *Repo) UpdateStatus(ctx context.Context, id int64, status Status, completedAt *time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE kit_pick_lists SET status=$2, completed_at=$3, updated_at=now() WHERE id=$1
	`, id, string(status), completedAt)
	return err
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM kit_pick_lists WHERE id=$1`, id)
	return err
}
