package store

import (
	"context"
	"errors"
	"fmt"

	"ralli/internal/domain"
	"ralli/internal/repository/audit"
	"ralli/internal/repository/pgutil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const storeColumns = `id::text, owner_id, owner_email, name, slug, status, is_active, contact_email, contact_phone, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, s domain.Store) (*domain.Store, error) {
	return Insert(ctx, r.pool, s)
}

// Insert creates a store using db. It is exported so the application
// repository can create the store inside its approval transaction.
func Insert(ctx context.Context, db pgutil.DBTX, s domain.Store) (*domain.Store, error) {
	const q = `
INSERT INTO stores (owner_id, owner_email, name, slug, status, is_active, contact_email, contact_phone)
VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)
RETURNING ` + storeColumns
	out, err := scanStore(db.QueryRow(ctx, q,
		s.OwnerID, s.OwnerEmail, s.Name, s.Slug, s.Status, s.IsActive, s.ContactEmail, s.ContactPhone,
	))
	if err != nil {
		if _, ok := pgutil.UniqueViolation(err); ok {
			return nil, domain.Conflict("slug is already taken")
		}
		if pgutil.InvalidInput(err) {
			return nil, domain.Invalid("invalid store fields")
		}
		return nil, fmt.Errorf("insert store: %w", err)
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	q := `SELECT ` + storeColumns + ` FROM stores WHERE id = $1`
	return r.get(ctx, q, id)
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Store, error) {
	q := `SELECT ` + storeColumns + ` FROM stores WHERE slug = $1`
	return r.get(ctx, q, slug)
}

func (r *postgresRepo) get(ctx context.Context, q string, arg string) (*domain.Store, error) {
	s, err := scanStore(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgutil.InvalidInput(err) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error().Err(err).Msg("store repo: get")
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Store, error) {
	q := `SELECT ` + storeColumns + ` FROM stores ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error().Err(err).Msg("store repo: list")
		return nil, err
	}
	defer rows.Close()

	result := []domain.Store{}
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) OwnedIDs(ctx context.Context, ownerID, email string) ([]string, error) {
	const q = `
SELECT id::text
FROM stores
WHERE status = 'approved'
  AND (owner_id = $1 OR ($2 <> '' AND lower(owner_email) = lower($2)))
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, q, ownerID, email)
	if err != nil {
		r.logger.Error().Err(err).Str("owner_id", ownerID).Msg("store repo: owned ids")
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresRepo) SlugInUse(ctx context.Context, slug string) (bool, error) {
	const q = `
SELECT EXISTS (SELECT 1 FROM stores WHERE slug = $1)
    OR EXISTS (SELECT 1 FROM store_applications WHERE slug = $1 AND status = 'pending')
`
	var used bool
	if err := r.pool.QueryRow(ctx, q, slug).Scan(&used); err != nil {
		return false, err
	}
	return used, nil
}

func (r *postgresRepo) SetActive(ctx context.Context, id string, active bool, entry domain.AuditEntry) (*domain.Store, error) {
	const q = `UPDATE stores SET is_active = $2 WHERE id = $1 RETURNING ` + storeColumns
	return r.updateAudited(ctx, entry, q, id, active)
}

func (r *postgresRepo) SetStatus(ctx context.Context, id, status string, entry domain.AuditEntry) (*domain.Store, error) {
	const q = `
UPDATE stores
SET status = $2::text,
    is_active = ($2::text = 'approved')
WHERE id = $1
RETURNING ` + storeColumns
	return r.updateAudited(ctx, entry, q, id, status)
}

func (r *postgresRepo) updateAudited(ctx context.Context, entry domain.AuditEntry, q string, args ...interface{}) (*domain.Store, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	s, err := scanStore(tx.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgutil.InvalidInput(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update store: %w", err)
	}
	entry.TargetType = "store"
	entry.TargetID = s.ID
	if err := audit.Write(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("write audit: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func scanStore(row pgx.Row) (*domain.Store, error) {
	var s domain.Store
	if err := row.Scan(
		&s.ID,
		&s.OwnerID,
		&s.OwnerEmail,
		&s.Name,
		&s.Slug,
		&s.Status,
		&s.IsActive,
		&s.ContactEmail,
		&s.ContactPhone,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
