package application

import (
	"context"
	"errors"
	"fmt"

	"ralli/internal/domain"
	"ralli/internal/repository/audit"
	"ralli/internal/repository/pgutil"
	storerepo "ralli/internal/repository/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	applicationColumns = `id::text, applicant_id, owner_email, business_name, slug, contact_phone, city, message,
       status, reviewed_by, reviewed_at, rejection_reason, store_id::text, created_at`

	pendingApplicantIndex = "store_applications_pending_applicant_key"
)

var errPendingApplication = domain.Conflict("you already have a pending application")

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, a domain.Application) (*domain.Application, error) {
	const q = `
INSERT INTO store_applications (applicant_id, owner_email, business_name, slug, contact_phone, city, message)
VALUES ($1, lower($2), $3, $4, $5, $6, $7)
RETURNING ` + applicationColumns
	out, err := scanApplication(r.pool.QueryRow(ctx, q,
		a.ApplicantID, a.OwnerEmail, a.BusinessName, a.Slug, a.ContactPhone, a.City, a.Message,
	))
	if err != nil {
		if constraint, ok := pgutil.UniqueViolation(err); ok {
			if constraint == pendingApplicantIndex {
				return nil, errPendingApplication
			}
			return nil, domain.Conflict("slug is already taken")
		}
		r.logger.Error().Err(err).Str("applicant_id", a.ApplicantID).Msg("application repo: create")
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM store_applications WHERE id = $1`
	a, err := scanApplication(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgutil.InvalidInput(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *postgresRepo) HasPending(ctx context.Context, applicantID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM store_applications WHERE applicant_id = $1 AND status = 'pending')`
	var pending bool
	if err := r.pool.QueryRow(ctx, q, applicantID).Scan(&pending); err != nil {
		return false, err
	}
	return pending, nil
}

func (r *postgresRepo) List(ctx context.Context, status string) ([]domain.Application, error) {
	q := `SELECT ` + applicationColumns + `
FROM store_applications
WHERE ($1 = '' OR status = $1)
ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, q, status)
	if err != nil {
		r.logger.Error().Err(err).Msg("application repo: list")
		return nil, err
	}
	defer rows.Close()

	result := []domain.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Approve(ctx context.Context, id, reviewerID string) (*domain.Application, *domain.Store, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	lockQ := `SELECT ` + applicationColumns + ` FROM store_applications WHERE id = $1 FOR UPDATE`
	app, err := scanApplication(tx.QueryRow(ctx, lockQ, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgutil.InvalidInput(err) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("lock application: %w", err)
	}
	if app.Status != domain.StatusPending {
		return nil, nil, domain.StateConflict("application is already " + app.Status)
	}

	// The pending application holds the slug through its partial unique index;
	// release it before the store claims the same slug.
	const markQ = `
UPDATE store_applications
SET status = 'approved', reviewed_by = $2, reviewed_at = NOW()
WHERE id = $1`
	if _, err := tx.Exec(ctx, markQ, id, reviewerID); err != nil {
		return nil, nil, fmt.Errorf("mark application approved: %w", err)
	}

	st, err := storerepo.Insert(ctx, tx, domain.Store{
		OwnerID:      app.ApplicantID,
		OwnerEmail:   app.OwnerEmail,
		Name:         app.BusinessName,
		Slug:         app.Slug,
		Status:       domain.StatusApproved,
		IsActive:     true,
		ContactEmail: app.OwnerEmail,
		ContactPhone: app.ContactPhone,
	})
	if err != nil {
		return nil, nil, err
	}

	linkQ := `UPDATE store_applications SET store_id = $2 WHERE id = $1 RETURNING ` + applicationColumns
	app, err = scanApplication(tx.QueryRow(ctx, linkQ, id, st.ID))
	if err != nil {
		return nil, nil, fmt.Errorf("link store: %w", err)
	}

	if err := audit.Write(ctx, tx, domain.AuditEntry{
		ActorID:    reviewerID,
		Action:     "application.approve",
		TargetType: "application",
		TargetID:   app.ID,
		Detail:     map[string]interface{}{"storeId": st.ID, "slug": st.Slug},
	}); err != nil {
		return nil, nil, fmt.Errorf("write audit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return app, st, nil
}

func (r *postgresRepo) Reject(ctx context.Context, id, reviewerID, reason string) (*domain.Application, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q := `
UPDATE store_applications
SET status = 'rejected', reviewed_by = $2, reviewed_at = NOW(), rejection_reason = $3
WHERE id = $1 AND status = 'pending'
RETURNING ` + applicationColumns
	app, err := scanApplication(tx.QueryRow(ctx, q, id, reviewerID, reason))
	if err != nil {
		if pgutil.InvalidInput(err) {
			return nil, domain.ErrNotFound
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.missingOrSettled(ctx, tx, id)
		}
		return nil, fmt.Errorf("reject application: %w", err)
	}

	if err := audit.Write(ctx, tx, domain.AuditEntry{
		ActorID:    reviewerID,
		Action:     "application.reject",
		TargetType: "application",
		TargetID:   app.ID,
		Detail:     map[string]interface{}{"reason": reason},
	}); err != nil {
		return nil, fmt.Errorf("write audit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM store_applications WHERE id = $1 AND status <> 'approved'`, id)
	if err != nil {
		if pgutil.InvalidInput(err) {
			return domain.ErrNotFound
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.missingOrSettled(ctx, r.pool, id)
	}
	return nil
}

// missingOrSettled explains why a guarded write touched no row.
func (r *postgresRepo) missingOrSettled(ctx context.Context, db pgutil.DBTX, id string) error {
	var status string
	err := db.QueryRow(ctx, `SELECT status FROM store_applications WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgutil.InvalidInput(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return domain.StateConflict("application is already " + status)
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var a domain.Application
	if err := row.Scan(
		&a.ID,
		&a.ApplicantID,
		&a.OwnerEmail,
		&a.BusinessName,
		&a.Slug,
		&a.ContactPhone,
		&a.City,
		&a.Message,
		&a.Status,
		&a.ReviewedBy,
		&a.ReviewedAt,
		&a.RejectionReason,
		&a.StoreID,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
