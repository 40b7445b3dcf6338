package role

import (
	"context"
	"errors"
	"fmt"

	"ralli/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgres returns a Repository backed by the platform_roles table.
func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) RoleForEmail(ctx context.Context, email string) (domain.Role, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return "", nil
	}
	var role string
	err := r.pool.QueryRow(ctx, `SELECT role FROM platform_roles WHERE email = $1`, email).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		r.logger.Error().Err(err).Msg("role repo: lookup")
		return "", fmt.Errorf("lookup platform role: %w", err)
	}
	return domain.Role(role), nil
}

func (r *postgresRepo) Grant(ctx context.Context, email string, role domain.Role) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.Invalid("email is required")
	}
	const q = `
INSERT INTO platform_roles (email, role)
VALUES ($1, $2)
ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role`
	if _, err := r.pool.Exec(ctx, q, email, string(role)); err != nil {
		return fmt.Errorf("grant platform role: %w", err)
	}
	return nil
}
