package shopping

import (
	"context"
	"errors"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/infra/db"
	"github.com/jackc/pgx/v5"
)

type Repo struct{ db db.DBTX }

func NewRepo(conn db.DBTX) *Repo { return &Repo{db: conn} }

/* Lists */

const listSelect = `
	SELECT s.id, s.name, s.description, s.status,
	       (SELECT COUNT(*) FROM shopping_list_lines l WHERE l.shopping_list_id = s.id),
	       s.created_at, s.updated_at
	FROM shopping_lists s`

func scanList(row pgx.Row) (*List, error) {
	var l List
	if err := row.Scan(&l.ID, &l.Name, &l.Description, &l.Status, &l.LineCount, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repo) CreateList(ctx context.Context, l List) (*List, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO shopping_lists (name, description, status)
		VALUES ($1,$2,'concept')
		RETURNING id
	`, l.Name, l.Description).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errs.Conflict("shopping list %q already exists", l.Name)
		}
		return nil, err
	}
	return scanList(r.db.QueryRow(ctx, listSelect+` WHERE s.id = $1`, id))
}

func (r *Repo) GetList(ctx context.Context, id int64) (*List, error) {
	l, err := scanList(r.db.QueryRow(ctx, listSelect+` WHERE s.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

func (r *Repo) ListLists(ctx context.Context) ([]List, error) {
	rows, err := r.db.Query(ctx, listSelect+` ORDER BY s.updated_at DESC, s.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *Repo) SetStatus(ctx context.Context, id int64, status Status) (*List, error) {
	if _, err := r.db.Exec(ctx, `
		UPDATE shopping_lists SET status=$2, updated_at=now() WHERE id=$1
	`, id, string(status)); err != nil {
		return nil, err
	}
	return r.GetList(ctx, id)
}

/* Lines */

const lineSelect = `
	SELECT l.id, l.shopping_list_id, l.part_id, p.key, l.needed, l.note, l.created_at, l.updated_at
	FROM shopping_list_lines l
	JOIN parts p ON p.id = l.part_id`

func scanLine(row pgx.Row) (*Line, error) {
	var l Line
	if err := row.Scan(&l.ID, &l.ShoppingListID, &l.PartID, &l.PartKey, &l.Needed, &l.Note, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repo) ListLines(ctx context.Context, listID int64) ([]Line, error) {
	rows, err := r.db.Query(ctx, lineSelect+` WHERE l.shopping_list_id = $1 ORDER BY p.key, l.id`, listID)
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

func (r *Repo) GetLineForUpdate(ctx context.Context, listID, partID int64) (*Line, error) {
	l, err := scanLine(r.db.QueryRow(ctx,
		lineSelect+` WHERE l.shopping_list_id = $1 AND l.part_id = $2 FOR UPDATE OF l`,
		listID, partID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

func (r *Repo) InsertLine(ctx context.Context, l Line) (*Line, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO shopping_list_lines (shopping_list_id, part_id, needed, note)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, l.ShoppingListID, l.PartID, l.Needed, l.Note).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errs.Conflict("part %d added to shopping list %d concurrently", l.PartID, l.ShoppingListID)
		}
		return nil, err
	}
	return scanLine(r.db.QueryRow(ctx, lineSelect+` WHERE l.id = $1`, id))
}

func (r *Repo) UpdateLine(ctx context.Context, l Line) error {
	_, err := r.db.Exec(ctx, `
		UPDATE shopping_list_lines SET needed=$2, note=$3, updated_at=now() WHERE id=$1
	`, l.ID, l.Needed, l.Note)
	return err
}

/* Kit links */

const linkSelect = `
	SELECT kl.id, kl.kit_id, kl.shopping_list_id, s.name, s.status, kl.requested_units, kl.honor_reserved,
	       kl.snapshot_kit_updated_at, kl.created_at, kl.updated_at
	FROM kit_shopping_list_links kl
	JOIN shopping_lists s ON s.id = kl.shopping_list_id`

func scanLink(row pgx.Row) (*KitLink, error) {
	var l KitLink
	if err := row.Scan(
		&l.ID, &l.KitID, &l.ShoppingListID, &l.ShoppingListName, &l.ShoppingListStatus,
		&l.RequestedUnits, &l.HonorReserved, &l.SnapshotKitUpdatedAt, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repo) GetKitLinkForUpdate(ctx context.Context, kitID, listID int64) (*KitLink, error) {
	l, err := scanLink(r.db.QueryRow(ctx,
		linkSelect+` WHERE kl.kit_id = $1 AND kl.shopping_list_id = $2 FOR UPDATE OF kl`,
		kitID, listID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

func (r *Repo) InsertKitLink(ctx context.Context, l KitLink) (*KitLink, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO kit_shopping_list_links (kit_id, shopping_list_id, requested_units, honor_reserved, snapshot_kit_updated_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, l.KitID, l.ShoppingListID, l.RequestedUnits, l.HonorReserved, l.SnapshotKitUpdatedAt).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errs.Conflict("kit %d linked to shopping list %d concurrently", l.KitID, l.ShoppingListID)
		}
		return nil, err
	}
	return scanLink(r.db.QueryRow(ctx, linkSelect+` WHERE kl.id = $1`, id))
}

func (r *Repo) UpdateKitLink(ctx context.Context, l KitLink) error {
	_, err := r.db.Exec(ctx, `
		UPDATE kit_shopping_list_links
		SET requested_units=$2, honor_reserved=$3, snapshot_kit_updated_at=$4, updated_at=now()
		WHERE id=$1
	`, l.ID, l.RequestedUnits, l.HonorReserved, l.SnapshotKitUpdatedAt)
	return err
}

func (r *Repo) ListKitLinks(ctx context.Context, kitID int64) ([]KitLink, error) {
	rows, err := r.db.Query(ctx, linkSelect+` WHERE kl.kit_id = $1 ORDER BY kl.updated_at DESC, kl.id DESC`, kitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KitLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}
