package customer

import (
	"context"
	"strings"

	"ralli/internal/domain"
	orderrepo "ralli/internal/repository/order"
	"github.com/rs/zerolog"
)

// RecentOrderLimit is how many past orders a lookup returns.
const RecentOrderLimit = 5

// Repository is the subset of the customer repository the service needs.
type Repository interface {
	Upsert(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByPhone(ctx context.Context, storeID, phone string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, storeID, email string) (*domain.Customer, error)
}

// OrderHistory lists a store's orders.
type OrderHistory interface {
	List(ctx context.Context, f orderrepo.ListFilter) ([]domain.Order, error)
}

// Service is the per-store customer directory.
type Service struct {
	customers Repository
	orders    OrderHistory
	logger    zerolog.Logger
}

func New(customers Repository, orders OrderHistory, logger zerolog.Logger) *Service {
	return &Service{customers: customers, orders: orders, logger: logger}
}

// Input carries the customer fields supplied with an order or import.
type Input struct {
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	PreferredLanguage string `json:"preferredLanguage"`
}

// Normalize validates in and returns the customer row to upsert into storeID.
func Normalize(storeID string, in Input) (domain.Customer, error) {
	c := domain.Customer{
		StoreID:           storeID,
		Name:              strings.TrimSpace(in.Name),
		Phone:             domain.NormalizePhone(in.Phone),
		Email:             domain.NormalizeEmail(in.Email),
		PreferredLanguage: strings.ToLower(strings.TrimSpace(in.PreferredLanguage)),
	}
	if c.Name == "" || c.Phone == "" {
		return domain.Customer{}, domain.Invalid("customer name and phone are required")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return domain.Customer{}, domain.Invalid("customer email is malformed")
	}
	return c, nil
}

// FindOrCreate upserts the customer keyed by (store, phone). The latest name
// always wins; email and language are replaced only when supplied.
func (s *Service) FindOrCreate(ctx context.Context, storeID string, in Input) (*domain.Customer, error) {
	c, err := Normalize(storeID, in)
	if err != nil {
		return nil, err
	}
	return s.customers.Upsert(ctx, c)
}

// Lookup is a customer with their latest orders in the store.
type Lookup struct {
	Customer     domain.Customer `json:"customer"`
	RecentOrders []domain.Order  `json:"recentOrders"`
}

// Lookup finds a customer by phone or, when the value contains "@", by email.
func (s *Service) Lookup(ctx context.Context, storeID, phoneOrEmail string) (*Lookup, error) {
	key := strings.TrimSpace(phoneOrEmail)
	if key == "" {
		return nil, domain.Invalid("phone or email is required")
	}

	var (
		c   *domain.Customer
		err error
	)
	if strings.Contains(key, "@") {
		c, err = s.customers.GetByEmail(ctx, storeID, domain.NormalizeEmail(key))
	} else {
		phone := domain.NormalizePhone(key)
		if phone == "" {
			return nil, domain.Invalid("phone is malformed")
		}
		c, err = s.customers.GetByPhone(ctx, storeID, phone)
	}
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.List(ctx, orderrepo.ListFilter{
		StoreID:    storeID,
		CustomerID: c.ID,
		Limit:      RecentOrderLimit,
	})
	if err != nil {
		return nil, err
	}
	return &Lookup{Customer: *c, RecentOrders: orders}, nil
}
