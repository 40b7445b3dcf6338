package customer

import (
	"context"
	"errors"
	"fmt"

	"ralli/internal/domain"
	"ralli/internal/repository/pgutil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const customerColumns = `id::text, store_id::text, name, phone, email, preferred_language, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	out, err := Upsert(ctx, r.pool, c)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		r.logger.Error().Err(err).Str("store_id", c.StoreID).Msg("customer repo: upsert")
	}
	return out, err
}

// Upsert runs the insert-or-update statement on db so callers can include it
// in a wider transaction. Empty email or language keep the stored values.
func Upsert(ctx context.Context, db pgutil.DBTX, c domain.Customer) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (store_id, name, phone, email, preferred_language)
VALUES ($1, $2, $3, lower($4), $5)
ON CONFLICT (store_id, phone) DO UPDATE
SET name = EXCLUDED.name,
    email = COALESCE(NULLIF(EXCLUDED.email, ''), customers.email),
    preferred_language = COALESCE(NULLIF(EXCLUDED.preferred_language, ''), customers.preferred_language),
    updated_at = NOW()
RETURNING ` + customerColumns
	out, err := scanCustomer(db.QueryRow(ctx, q, c.StoreID, c.Name, c.Phone, c.Email, c.PreferredLanguage))
	if err != nil {
		if pgutil.ForeignKeyViolation(err) || pgutil.InvalidInput(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("upsert customer: %w", err)
	}
	return out, nil
}

func (r *postgresRepo) GetByPhone(ctx context.Context, storeID, phone string) (*domain.Customer, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE store_id = $1 AND phone = $2 LIMIT 1`
	return r.get(ctx, q, storeID, phone)
}

func (r *postgresRepo) GetByEmail(ctx context.Context, storeID, email string) (*domain.Customer, error) {
	q := `
SELECT ` + customerColumns + `
FROM customers
WHERE store_id = $1 AND lower(email) = lower($2) AND email <> ''
ORDER BY updated_at DESC
LIMIT 1`
	return r.get(ctx, q, storeID, email)
}

func (r *postgresRepo) get(ctx context.Context, q string, args ...interface{}) (*domain.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgutil.InvalidInput(err) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error().Err(err).Msg("customer repo: get")
		return nil, err
	}
	return c, nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	if err := row.Scan(
		&c.ID,
		&c.StoreID,
		&c.Name,
		&c.Phone,
		&c.Email,
		&c.PreferredLanguage,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
