package customer

import (
	"context"

	"ralli/internal/domain"
)

// Repository persists and fetches customers within a store.
type Repository interface {
	// Upsert inserts the customer or, when (store, phone) exists, refreshes its
	// profile fields in the same statement.
	Upsert(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByPhone(ctx context.Context, storeID, phone string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, storeID, email string) (*domain.Customer, error)
}
