package kits

import (
	"context"
	"errors"
	"time"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/infra/db"
	"github.com/jackc/pgx/v5"
)

type Repo struct{ db db.DBTX }

func NewRepo(conn db.DBTX) *Repo { return &Repo{db: conn} }

const kitColumns = `id, name, description, build_target, status, archived_at, created_at, updated_at`

func scanKit(row pgx.Row) (*Kit, error) {
	var k Kit
	if err := row.Scan(
		&k.ID,
		&k.Name,
		&k.Description,
		&k.BuildTarget,
		&k.Status,
		&k.ArchivedAt,
		&k.CreatedAt,
		&k.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *Repo) Create(ctx context.Context, k Kit) (*Kit, error) {
	return scanKit(r.db.QueryRow(ctx, `
		INSERT INTO kits (name, description, build_target, status)
		VALUES ($1,$2,$3,'active')
		RETURNING `+kitColumns,
		k.Name, k.Description, k.BuildTarget))
}

func (r *Repo) Get(ctx context.Context, id int64) (*Kit, error) {
	k, err := scanKit(r.db.QueryRow(ctx, `SELECT `+kitColumns+` FROM kits WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return k, err
}

func (r *Repo) List(ctx context.Context, status Status) ([]Summary, error) {
	q := `
		SELECT k.id, k.name, k.description, k.build_target, k.status, k.archived_at, k.created_at, k.updated_at,
		       (SELECT COUNT(*) FROM kit_pick_lists pl WHERE pl.kit_id = k.id AND pl.status = 'open'),
		       (SELECT COUNT(*) FROM kit_shopping_list_links sl WHERE sl.kit_id = k.id)
		FROM kits k`
	args := []any{}
	if status != "" {
		q += ` WHERE k.status = $1`
		args = append(args, string(status))
	}
	q += ` ORDER BY k.name, k.id`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.BuildTarget, &s.Status, &s.ArchivedAt, &s.CreatedAt, &s.UpdatedAt,
			&s.OpenPickLists, &s.ShoppingListLinks,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, k Kit) (*Kit, error) {
	return scanKit(r.db.QueryRow(ctx, `
		UPDATE kits SET name=$2, description=$3, build_target=$4, updated_at=now()
		WHERE id=$1
		RETURNING `+kitColumns,
		k.ID, k.Name, k.Description, k.BuildTarget))
}

func (r *Repo) SetStatus(ctx context.Context, id int64, status Status, archivedAt *time.Time) (*Kit, error) {
	return scanKit(r.db.QueryRow(ctx, `
		UPDATE kits SET status=$2, archived_at=$3, updated_at=now()
		WHERE id=$1
		RETURNING `+kitColumns,
		id, string(status), archivedAt))
}

func (r *Repo) Touch(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE kits SET updated_at=now() WHERE id=$1`, id)
	return err
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM kits WHERE id=$1`, id)
	return err
}

/* Contents */

const contentSelect = `
	SELECT c.id, c.kit_id, c.part_id, COALESCE(p.key, ''), COALESCE(p.description, ''),
	       c.required_per_unit, c.note, c.version, c.created_at, c.updated_at
	FROM kit_contents c
	LEFT JOIN parts p ON p.id = c.part_id`

func scanContent(row pgx.Row) (*Content, error) {
	var c Content
	if err := row.Scan(
		&c.ID, &c.KitID, &c.PartID, &c.PartKey, &c.PartDescription,
		&c.RequiredPerUnit, &c.Note, &c.Version, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) ListContents(ctx context.Context, kitID int64) ([]Content, error) {
	rows, err := r.db.Query(ctx, contentSelect+` WHERE c.kit_id = $1 ORDER BY p.key, c.id`, kitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *Repo) GetContent(ctx context.Context, kitID, contentID int64) (*Content, error) {
	c, err := scanContent(r.db.QueryRow(ctx, contentSelect+` WHERE c.kit_id = $1 AND c.id = $2`, kitID, contentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *Repo) CreateContent(ctx context.Context, c Content) (*Content, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO kit_contents (kit_id, part_id, required_per_unit, note)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, c.KitID, c.PartID, c.RequiredPerUnit, c.Note).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errs.Conflict("part %d is already in kit %d", c.PartID, c.KitID)
		}
		return nil, err
	}
	return r.GetContent(ctx, c.KitID, id)
}

func (r *Repo) UpdateContent(ctx context.Context, c Content, expectedVersion int) (*Content, bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE kit_contents
		SET required_per_unit=$3, note=$4, version=version+1, updated_at=now()
		WHERE kit_id=$1 AND id=$2 AND version=$5
	`, c.KitID, c.ID, c.RequiredPerUnit, c.Note, expectedVersion)
	if err != nil {
		return nil, false, err
	}
	if tag.RowsAffected() == 0 {
		return nil, false, nil
	}
	updated, err := r.GetContent(ctx, c.KitID, c.ID)
	return updated, err == nil, err
}

func (r *Repo) DeleteContent(ctx context.Context, kitID, contentID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM kit_contents WHERE kit_id=$1 AND id=$2`, kitID, contentID)
	if db.IsForeignKeyViolation(err) {
		return errs.Invalid("kit content %d is referenced by pick list lines", contentID)
	}
	return err
}

func (r *Repo) ActiveReservations(ctx context.Context, partIDs []int64) ([]ReservationRow, error) {
	if len(partIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT c.part_id, k.id, k.name, k.status, k.build_target, c.required_per_unit, k.updated_at
		FROM kit_contents c
		JOIN kits k ON k.id = c.kit_id
		WHERE c.part_id = ANY($1) AND k.status = 'active'
		ORDER BY c.part_id, k.name, k.id
	`, partIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReservationRow
	for rows.Next() {
		var rr ReservationRow
		if err := rows.Scan(&rr.PartID, &rr.KitID, &rr.KitName, &rr.Status, &rr.BuildTarget, &rr.RequiredPerUnit, &rr.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}
