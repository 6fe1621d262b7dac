package parts

import (
	"context"
	"errors"
	"fmt"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/infra/db"
	"github.com/jackc/pgx/v5"
)

type Repo struct{ db db.DBTX }

func NewRepo(conn db.DBTX) *Repo { return &Repo{db: conn} }

/* Boxes */

// CreateBox takes the next free box number and creates locations 1..capacity.
// Must run inside a transaction.
func (r *Repo) CreateBox(ctx context.Context, description string, capacity int) (*Box, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO boxes (box_no, description, capacity)
		SELECT COALESCE(MAX(box_no), 0) + 1, $1, $2 FROM boxes
		RETURNING id, box_no, description, capacity, created_at, updated_at
	`, description, capacity)
	var b Box
	if err := row.Scan(&b.ID, &b.BoxNo, &b.Description, &b.Capacity, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errs.Conflict("box number taken by a concurrent request")
		}
		return nil, err
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO locations (box_id, box_no, loc_no)
		SELECT $1, $2, g FROM generate_series(1, $3) AS g
	`, b.ID, b.BoxNo, capacity); err != nil {
		return nil, fmt.Errorf("create locations: %w", err)
	}
	return &b, nil
}

func (r *Repo) GetBox(ctx context.Context, boxNo int) (*Box, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, box_no, description, capacity, created_at, updated_at
		FROM boxes WHERE box_no = $1
	`, boxNo)
	var b Box
	if err := row.Scan(&b.ID, &b.BoxNo, &b.Description, &b.Capacity, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *Repo) ListBoxes(ctx context.Context) ([]Box, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, box_no, description, capacity, created_at, updated_at
		FROM boxes
		ORDER BY box_no
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Box
	for rows.Next() {
		var b Box
		if err := rows.Scan(&b.ID, &b.BoxNo, &b.Description, &b.Capacity, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) ListLocations(ctx context.Context, boxNo int) ([]Location, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, box_id, box_no, loc_no
		FROM locations
		WHERE box_no = $1
		ORDER BY loc_no
	`, boxNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.BoxID, &l.BoxNo, &l.LocNo); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) GetLocation(ctx context.Context, boxNo, locNo int) (*Location, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, box_id, box_no, loc_no
		FROM locations WHERE box_no = $1 AND loc_no = $2
	`, boxNo, locNo)
	var l Location
	if err := row.Scan(&l.ID, &l.BoxID, &l.BoxNo, &l.LocNo); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

/* Parts */

const partColumns = `id, key, description, manufacturer_code, category, seller, seller_link, created_at, updated_at`

func scanPart(row pgx.Row) (*Part, error) {
	var p Part
	if err := row.Scan(
		&p.ID,
		&p.Key,
		&p.Description,
		&p.ManufacturerCode,
		&p.Category,
		&p.Seller,
		&p.SellerLink,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) CreatePart(ctx context.Context, p Part) (*Part, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO parts (key, description, manufacturer_code, category, seller, seller_link)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING `+partColumns,
		p.Key, p.Description, p.ManufacturerCode, p.Category, p.Seller, p.SellerLink)
	out, err := scanPart(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errs.Conflict("part key %q already exists", p.Key)
		}
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetPartByKey(ctx context.Context, key string) (*Part, error) {
	p, err := scanPart(r.db.QueryRow(ctx, `SELECT `+partColumns+` FROM parts WHERE key = $1`, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *Repo) GetPartByID(ctx context.Context, id int64) (*Part, error) {
	p, err := scanPart(r.db.QueryRow(ctx, `SELECT `+partColumns+` FROM parts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *Repo) ListParts(ctx context.Context) ([]Part, error) {
	rows, err := r.db.Query(ctx, `SELECT `+partColumns+` FROM parts ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
