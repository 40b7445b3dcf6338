package application

import (
	"context"

	"ralli/internal/domain"
)

// Repository persists store applications and performs the approval
// transaction.
type Repository interface {
	Create(ctx context.Context, a domain.Application) (*domain.Application, error)
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	HasPending(ctx context.Context, applicantID string) (bool, error)
	List(ctx context.Context, status string) ([]domain.Application, error)
	// Approve marks a pending application approved and creates its store in
	// one transaction.
	Approve(ctx context.Context, id, reviewerID string) (*domain.Application, *domain.Store, error)
	Reject(ctx context.Context, id, reviewerID, reason string) (*domain.Application, error)
	Delete(ctx context.Context, id string) error
}
