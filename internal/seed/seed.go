package seed

import (
	"context"
	"fmt"

	"ralli/internal/domain"
	orderrepo "ralli/internal/repository/order"
	rolerepo "ralli/internal/repository/role"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	demoSlug  = "demo-stringing"
	demoName  = "Demo Stringing Co."
	demoOwner = "seed-demo-owner"
)

// Options controls what Apply writes.
type Options struct {
	// AdminEmails are granted the platform_admin role.
	AdminEmails []string
	// DemoOwnerEmail owns the demo store so that account sees it as staff.
	DemoOwnerEmail string
}

// Apply inserts basic seed data for manual testing. Running it twice leaves
// the same rows behind.
func Apply(ctx context.Context, pool *pgxpool.Pool, opts Options, logger zerolog.Logger) error {
	roles := rolerepo.NewPostgres(pool, logger)
	for _, email := range opts.AdminEmails {
		if err := roles.Grant(ctx, email, domain.RolePlatformAdmin); err != nil {
			return fmt.Errorf("grant admin %s: %w", email, err)
		}
		logger.Info().Str("email", email).Msg("platform admin granted")
	}

	storeID, err := ensureStore(ctx, pool, opts.DemoOwnerEmail)
	if err != nil {
		return fmt.Errorf("ensure demo store: %w", err)
	}

	orders := orderrepo.NewPostgres(pool, logger)
	existing, err := orders.List(ctx, orderrepo.ListFilter{StoreID: storeID, Limit: 1})
	if err != nil {
		return fmt.Errorf("list demo orders: %w", err)
	}
	if len(existing) > 0 {
		logger.Info().Str("store_id", storeID).Msg("demo orders already present")
		return nil
	}

	tension := 24
	for _, s := range []struct {
		customer domain.Customer
		order    domain.Order
	}{
		{
			customer: domain.Customer{StoreID: storeID, Name: "Alex Martin", Phone: "6045550100", Email: "alex@example.com", PreferredLanguage: "en"},
			order:    domain.Order{RacketBrand: "Yonex", RacketModel: "Astrox 88D", StringBrand: "Yonex", StringModel: "BG80", Tension: &tension, ServiceType: "standard"},
		},
		{
			customer: domain.Customer{StoreID: storeID, Name: "Camille Roy", Phone: "5145550199", PreferredLanguage: "fr"},
			order:    domain.Order{RacketBrand: "Victor", StringCategory: "durability", StringFocus: "control", ServiceType: "express", Notes: "Client apporte sa propre corde"},
		},
	} {
		o, err := orders.Create(ctx, s.customer, s.order)
		if err != nil {
			return fmt.Errorf("create demo order for %s: %w", s.customer.Name, err)
		}
		logger.Info().Str("order_id", o.ID).Str("customer", s.customer.Name).Msg("demo order created")
	}
	return nil
}

func ensureStore(ctx context.Context, pool *pgxpool.Pool, ownerEmail string) (string, error) {
	const q = `
INSERT INTO stores (owner_id, owner_email, name, slug, status, is_active)
VALUES ($1, lower($2), $3, $4, 'approved', TRUE)
ON CONFLICT (slug) DO UPDATE
SET owner_email = EXCLUDED.owner_email,
    name = EXCLUDED.name
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, demoOwner, ownerEmail, demoName, demoSlug).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}
