package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ralli/internal/domain"
	"ralli/internal/metrics"
	"ralli/internal/notify"
	orderrepo "ralli/internal/repository/order"
	customersvc "ralli/internal/service/customer"
	"github.com/rs/zerolog"
)

// Intake sources, used as a metrics label.
const (
	SourceStaff = "staff"
	SourceKiosk = "kiosk"
)

const (
	defaultServiceType = "standard"
	notifyTimeout      = 15 * time.Second
)

// StoreLookup resolves a store for notification copy.
type StoreLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Store, error)
}

// Recorder receives order metrics.
type Recorder interface {
	OrderCreated(source string)
	StatusChanged(from, to string)
	Notification(result string)
}

// Service is the per-store order ledger.
type Service struct {
	repo     orderrepo.Repository
	stores   StoreLookup
	notifier notify.Notifier
	metrics  Recorder
	policy   domain.TransitionPolicy
	logger   zerolog.Logger
}

func New(repo orderrepo.Repository, stores StoreLookup, notifier notify.Notifier, rec Recorder, policy domain.TransitionPolicy, logger zerolog.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		repo:     repo,
		stores:   stores,
		notifier: notifier,
		metrics:  rec,
		policy:   policy,
		logger:   logger,
	}
}

// CreateInput is a new stringing job together with its customer.
type CreateInput struct {
	CustomerName      string `json:"customerName"`
	CustomerPhone     string `json:"customerPhone"`
	CustomerEmail     string `json:"customerEmail"`
	PreferredLanguage string `json:"preferredLanguage"`
	RacketBrand       string `json:"racketBrand"`
	RacketModel       string `json:"racketModel"`
	StringCategory    string `json:"stringCategory"`
	StringFocus       string `json:"stringFocus"`
	StringBrand       string `json:"stringBrand"`
	StringModel       string `json:"stringModel"`
	Tension           *int   `json:"tension"`
	ServiceType       string `json:"serviceType"`
	Notes             string `json:"notes"`
}

// Create validates the job, upserts its customer and inserts the order as
// pending, all in one transaction.
func (s *Service) Create(ctx context.Context, storeID string, in CreateInput, source string) (*domain.Order, error) {
	customer, err := customersvc.Normalize(storeID, customersvc.Input{
		Name:              in.CustomerName,
		Phone:             in.CustomerPhone,
		Email:             in.CustomerEmail,
		PreferredLanguage: in.PreferredLanguage,
	})
	if err != nil {
		return nil, err
	}

	o := domain.Order{
		StoreID:        storeID,
		RacketBrand:    strings.TrimSpace(in.RacketBrand),
		RacketModel:    strings.TrimSpace(in.RacketModel),
		StringCategory: strings.TrimSpace(in.StringCategory),
		StringFocus:    strings.TrimSpace(in.StringFocus),
		StringBrand:    strings.TrimSpace(in.StringBrand),
		StringModel:    strings.TrimSpace(in.StringModel),
		Tension:        in.Tension,
		ServiceType:    strings.ToLower(strings.TrimSpace(in.ServiceType)),
		Notes:          strings.TrimSpace(in.Notes),
	}
	if err := validate(o); err != nil {
		return nil, err
	}
	if o.ServiceType == "" {
		o.ServiceType = defaultServiceType
	}

	created, err := s.repo.Create(ctx, customer, o)
	if err != nil {
		return nil, err
	}
	s.metrics.OrderCreated(source)
	s.logger.Info().
		Str("store_id", storeID).
		Str("order_id", created.ID).
		Str("source", source).
		Msg("order created")
	return created, nil
}

func validate(o domain.Order) error {
	if o.RacketBrand == "" {
		return domain.Invalid("racketBrand is required")
	}
	if o.StringBrand == "" && o.StringModel == "" && o.StringCategory == "" {
		return domain.Invalid("one of stringBrand, stringModel or stringCategory is required")
	}
	if o.Tension != nil && (*o.Tension < domain.MinTension || *o.Tension > domain.MaxTension) {
		return domain.Invalid(fmt.Sprintf("tension must be between %d and %d", domain.MinTension, domain.MaxTension))
	}
	return nil
}

// List returns the store's newest orders, optionally filtered by status.
func (s *Service) List(ctx context.Context, storeID, status string) ([]domain.Order, error) {
	f := orderrepo.ListFilter{StoreID: storeID, Limit: orderrepo.MaxListLimit}
	if strings.TrimSpace(status) != "" {
		st, ok := domain.ParseOrderStatus(status)
		if !ok {
			return nil, domain.Invalid("unknown status")
		}
		f.Status = st
	}
	return s.repo.List(ctx, f)
}

// Get returns one order of the store.
func (s *Service) Get(ctx context.Context, storeID, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, storeID, id)
}

// UpdateStatus moves an order to a new status under the configured policy.
// Entering "completed" from an unfinished status notifies the customer once
// the change is committed; notification failures never fail the update.
func (s *Service) UpdateStatus(ctx context.Context, storeID, id, status string) (*domain.Order, error) {
	return s.updateStatus(ctx, storeID, id, status, nil)
}

func (s *Service) updateStatus(ctx context.Context, storeID, id, status string, notes *string) (*domain.Order, error) {
	to, ok := domain.ParseOrderStatus(status)
	if !ok {
		return nil, domain.Invalid("unknown status")
	}

	updated, from, err := s.repo.UpdateStatus(ctx, storeID, id, to, notes, func(from domain.OrderStatus) error {
		if !s.policy.Allows(from, to) {
			return domain.StateConflict(fmt.Sprintf("cannot move order from %s to %s", from, to))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if from != to {
		s.metrics.StatusChanged(string(from), string(to))
	}
	s.logger.Info().
		Str("store_id", storeID).
		Str("order_id", id).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("order status updated")

	if to == domain.OrderCompleted && !from.IsCompletion() {
		s.notifyCompletion(ctx, updated)
	}
	return updated, nil
}

func (s *Service) notifyCompletion(ctx context.Context, o *domain.Order) {
	if o.CustomerEmail == "" {
		s.metrics.Notification(metrics.NotificationSkipped)
		return
	}

	// The status change is already committed; a client hanging up must not
	// cancel the email.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	c := notify.Completion{
		OrderID:       o.ID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Language:      o.CustomerLang,
		RacketBrand:   o.RacketBrand,
		RacketModel:   o.RacketModel,
	}
	if s.stores != nil {
		if st, err := s.stores.GetByID(ctx, o.StoreID); err == nil {
			c.StoreName = st.Name
		}
	}

	sent, err := s.notifier.NotifyCompletion(ctx, c)
	switch {
	case err != nil:
		s.metrics.Notification(metrics.NotificationFailed)
		s.logger.Warn().Err(err).Str("order_id", o.ID).Msg("completion notification failed")
	case sent:
		s.metrics.Notification(metrics.NotificationSent)
	default:
		s.metrics.Notification(metrics.NotificationSkipped)
	}
}

// UpdateNotes replaces the order's free-text notes.
func (s *Service) UpdateNotes(ctx context.Context, storeID, id, notes string) (*domain.Order, error) {
	return s.repo.UpdateNotes(ctx, storeID, id, strings.TrimSpace(notes))
}

// UpdateInput is a partial order update.
type UpdateInput struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// Update applies a status and/or notes change. Both land in the same
// transaction, so a rejected status change keeps the old notes too.
func (s *Service) Update(ctx context.Context, storeID, id string, in UpdateInput) (*domain.Order, error) {
	switch {
	case in.Status != nil:
		var notes *string
		if in.Notes != nil {
			trimmed := strings.TrimSpace(*in.Notes)
			notes = &trimmed
		}
		return s.updateStatus(ctx, storeID, id, *in.Status, notes)
	case in.Notes != nil:
		return s.UpdateNotes(ctx, storeID, id, *in.Notes)
	default:
		return nil, domain.Invalid("status or notes is required")
	}
}

// Delete removes an order of the store.
func (s *Service) Delete(ctx context.Context, storeID, id string) error {
	err := s.repo.Delete(ctx, storeID, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Error().Err(err).Str("store_id", storeID).Str("order_id", id).Msg("delete order")
	}
	return err
}
