package store

import (
	"context"

	"ralli/internal/domain"
)

// Repository persists stores (tenants).
type Repository interface {
	Create(ctx context.Context, s domain.Store) (*domain.Store, error)
	GetByID(ctx context.Context, id string) (*domain.Store, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Store, error)
	List(ctx context.Context) ([]domain.Store, error)
	// OwnedIDs returns approved stores owned by the subject or owner email.
	OwnedIDs(ctx context.Context, ownerID, email string) ([]string, error)
	// SlugInUse reports whether a store or a pending application holds slug.
	SlugInUse(ctx context.Context, slug string) (bool, error)
	SetActive(ctx context.Context, id string, active bool, entry domain.AuditEntry) (*domain.Store, error)
	SetStatus(ctx context.Context, id, status string, entry domain.AuditEntry) (*domain.Store, error)
}
