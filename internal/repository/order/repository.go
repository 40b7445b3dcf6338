package order

import (
	"context"

	"ralli/internal/domain"
)

// MaxListLimit caps list queries.
const MaxListLimit = 200

// ListFilter narrows a store's orders. Zero values mean "any".
type ListFilter struct {
	StoreID    string
	Status     domain.OrderStatus
	CustomerID string
	Limit      int
}

// TransitionCheck vets a status change against the order's current status.
type TransitionCheck func(from domain.OrderStatus) error

// Repository persists orders. Every method is scoped to a store; rows of
// other stores behave as missing.
type Repository interface {
	// Create upserts the customer and inserts the order in one transaction.
	Create(ctx context.Context, customer domain.Customer, o domain.Order) (*domain.Order, error)
	List(ctx context.Context, f ListFilter) ([]domain.Order, error)
	GetByID(ctx context.Context, storeID, id string) (*domain.Order, error)
	// UpdateStatus locks the order, runs check against its current status and
	// applies the change together with notes, when non-nil, in one
	// transaction. It returns the updated order and the prior status.
	UpdateStatus(ctx context.Context, storeID, id string, to domain.OrderStatus, notes *string, check TransitionCheck) (*domain.Order, domain.OrderStatus, error)
	UpdateNotes(ctx context.Context, storeID, id, notes string) (*domain.Order, error)
	Delete(ctx context.Context, storeID, id string) error
}
