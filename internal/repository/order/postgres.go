package order

import (
	"context"
	"errors"
	"fmt"

	"ralli/internal/domain"
	customerrepo "ralli/internal/repository/customer"
	"ralli/internal/repository/pgutil"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

var orderColumns = []string{
	"o.id::text", "o.store_id::text", "o.customer_id::text",
	"c.name", "c.phone", "c.email", "c.preferred_language",
	"o.racket_brand", "o.racket_model",
	"o.string_category", "o.string_focus", "o.string_brand", "o.string_model",
	"o.tension", "o.service_type", "o.notes", "o.status", "o.created_at", "o.completed_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, customer domain.Customer, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	c, err := customerrepo.Upsert(ctx, tx, customer)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO orders (store_id, customer_id, racket_brand, racket_model, string_category, string_focus,
                    string_brand, string_model, tension, service_type, notes, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'pending')
RETURNING id::text`
	var id string
	if err := tx.QueryRow(ctx, q,
		c.StoreID, c.ID, o.RacketBrand, o.RacketModel, o.StringCategory, o.StringFocus,
		o.StringBrand, o.StringModel, o.Tension, o.ServiceType, o.Notes,
	).Scan(&id); err != nil {
		if pgutil.InvalidInput(err) {
			return nil, domain.Invalid("order fields out of range")
		}
		r.logger.Error().Err(err).Str("store_id", c.StoreID).Msg("order repo: insert")
		return nil, fmt.Errorf("insert order: %w", err)
	}

	created, err := r.get(ctx, tx, c.StoreID, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Order, error) {
	limit := f.Limit
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	qb := selectOrders().
		Where(sq.Eq{"o.store_id": f.StoreID}).
		OrderBy("o.created_at DESC", "o.id DESC").
		Limit(uint64(limit))
	if f.Status != "" {
		qb = qb.Where(sq.Eq{"o.status": string(f.Status)})
	}
	if f.CustomerID != "" {
		qb = qb.Where(sq.Eq{"o.customer_id": f.CustomerID})
	}
	q, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		if pgutil.InvalidInput(err) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error().Err(err).Str("store_id", f.StoreID).Msg("order repo: list")
		return nil, err
	}
	defer rows.Close()

	result := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, storeID, id string) (*domain.Order, error) {
	return r.get(ctx, r.pool, storeID, id)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, storeID, id string, to domain.OrderStatus, notes *string, check TransitionCheck) (*domain.Order, domain.OrderStatus, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, "", err
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE store_id = $1 AND id = $2 FOR UPDATE`, storeID, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgutil.InvalidInput(err) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", err
	}
	from := domain.OrderStatus(current)
	if check != nil {
		if err := check(from); err != nil {
			return nil, from, err
		}
	}

	const q = `
UPDATE orders
SET status = $3::text,
    notes = COALESCE($4::text, notes),
    completed_at = CASE
        WHEN $3::text IN ('completed', 'picked_up') THEN COALESCE(completed_at, NOW())
        ELSE NULL
    END
WHERE store_id = $1 AND id = $2`
	if _, err := tx.Exec(ctx, q, storeID, id, string(to), notes); err != nil {
		if pgutil.InvalidInput(err) {
			return nil, from, domain.Invalid("invalid status")
		}
		return nil, from, fmt.Errorf("update order status: %w", err)
	}

	updated, err := r.get(ctx, tx, storeID, id)
	if err != nil {
		return nil, from, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, from, err
	}
	return updated, from, nil
}

func (r *postgresRepo) UpdateNotes(ctx context.Context, storeID, id, notes string) (*domain.Order, error) {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET notes = $3 WHERE store_id = $1 AND id = $2`, storeID, id, notes)
	if err != nil {
		if pgutil.InvalidInput(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update order notes: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.get(ctx, r.pool, storeID, id)
}

func (r *postgresRepo) Delete(ctx context.Context, storeID, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE store_id = $1 AND id = $2`, storeID, id)
	if err != nil {
		if pgutil.InvalidInput(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) get(ctx context.Context, db pgutil.DBTX, storeID, id string) (*domain.Order, error) {
	q, args, err := selectOrders().
		Where(sq.Eq{"o.store_id": storeID, "o.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}
	o, err := scanOrder(db.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgutil.InvalidInput(err) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error().Err(err).Str("store_id", storeID).Str("order_id", id).Msg("order repo: get")
		return nil, err
	}
	return o, nil
}

func selectOrders() sq.SelectBuilder {
	return psql.Select(orderColumns...).
		From("orders o").
		Join("customers c ON c.id = o.customer_id")
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status string
	if err := row.Scan(
		&o.ID,
		&o.StoreID,
		&o.CustomerID,
		&o.CustomerName,
		&o.CustomerPhone,
		&o.CustomerEmail,
		&o.CustomerLang,
		&o.RacketBrand,
		&o.RacketModel,
		&o.StringCategory,
		&o.StringFocus,
		&o.StringBrand,
		&o.StringModel,
		&o.Tension,
		&o.ServiceType,
		&o.Notes,
		&status,
		&o.CreatedAt,
		&o.CompletedAt,
	); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
