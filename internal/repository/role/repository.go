package role

import (
	"context"

	"ralli/internal/domain"
)

// Repository reads and grants platform roles keyed by email.
type Repository interface {
	// RoleForEmail returns the platform role of email, or "" when none.
	RoleForEmail(ctx context.Context, email string) (domain.Role, error)
	Grant(ctx context.Context, email string, role domain.Role) error
}
