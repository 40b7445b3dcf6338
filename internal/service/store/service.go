package store

import (
	"context"
	"errors"
	"strings"

	"ralli/internal/domain"
	"ralli/internal/service/auth"
	"github.com/rs/zerolog"
)

// Repository is the subset of the store repository the service needs.
type Repository interface {
	Create(ctx context.Context, s domain.Store) (*domain.Store, error)
	GetByID(ctx context.Context, id string) (*domain.Store, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Store, error)
	List(ctx context.Context) ([]domain.Store, error)
	SlugInUse(ctx context.Context, slug string) (bool, error)
	SetActive(ctx context.Context, id string, active bool, entry domain.AuditEntry) (*domain.Store, error)
	SetStatus(ctx context.Context, id, status string, entry domain.AuditEntry) (*domain.Store, error)
}

// Service manages stores: slug checks, direct registration, review and
// activation.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func New(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// SlugAvailability is the answer to a slug check.
type SlugAvailability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// CheckSlugAvailability reports whether slug can be claimed right now.
func (s *Service) CheckSlugAvailability(ctx context.Context, slug string) (SlugAvailability, error) {
	slug = strings.TrimSpace(slug)
	if problem := domain.SlugProblem(slug); problem != "" {
		return SlugAvailability{Reason: problem}, nil
	}
	used, err := s.repo.SlugInUse(ctx, slug)
	if err != nil {
		return SlugAvailability{}, err
	}
	if used {
		return SlugAvailability{Reason: domain.SlugTaken}, nil
	}
	return SlugAvailability{Available: true}, nil
}

// RegisterInput is a direct merchant registration.
type RegisterInput struct {
	OwnerID      string `json:"ownerId"`
	OwnerEmail   string `json:"ownerEmail"`
	BusinessName string `json:"businessName"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`
}

// Register creates a pending, inactive store whose slug is derived from the
// business name.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Store, error) {
	in.OwnerID = strings.TrimSpace(in.OwnerID)
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	if in.OwnerID == "" || in.BusinessName == "" {
		return nil, domain.Invalid("ownerId and businessName are required")
	}

	slug := domain.Slugify(in.BusinessName)
	switch domain.SlugProblem(slug) {
	case "":
	case domain.SlugReserved:
		return nil, domain.Conflict("slug is reserved")
	default:
		return nil, domain.Invalid("businessName must produce a valid slug")
	}
	used, err := s.repo.SlugInUse(ctx, slug)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, domain.Conflict("slug is already taken")
	}

	ownerEmail := domain.NormalizeEmail(in.OwnerEmail)
	contactEmail := domain.NormalizeEmail(in.ContactEmail)
	if ownerEmail == "" {
		ownerEmail = contactEmail
	}
	created, err := s.repo.Create(ctx, domain.Store{
		OwnerID:      in.OwnerID,
		OwnerEmail:   ownerEmail,
		Name:         in.BusinessName,
		Slug:         slug,
		Status:       domain.StatusPending,
		IsActive:     false,
		ContactEmail: contactEmail,
		ContactPhone: domain.NormalizePhone(in.ContactPhone),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("store_id", created.ID).Str("slug", created.Slug).Msg("merchant registered")
	return created, nil
}

// ReviewInput is an admin update of a store's review status and/or
// activation.
type ReviewInput struct {
	MerchantID string  `json:"merchantId"`
	Status     *string `json:"status"`
	IsActive   *bool   `json:"isActive"`
}

var reviewActions = map[string]string{
	domain.StatusApproved: "store.approve",
	domain.StatusRejected: "store.reject",
}

// Review applies a status decision and/or an activation toggle. Approval also
// activates the store; rejection deactivates it.
func (s *Service) Review(ctx context.Context, actor domain.Identity, in ReviewInput) (*domain.Store, error) {
	if err := auth.Authorize(actor, "", domain.ActionManageStores); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.MerchantID) == "" {
		return nil, domain.Invalid("merchantId is required")
	}
	if in.Status == nil && in.IsActive == nil {
		return nil, domain.Invalid("status or isActive is required")
	}

	var (
		out *domain.Store
		err error
	)
	if in.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*in.Status))
		if status != domain.StatusApproved && status != domain.StatusRejected {
			return nil, domain.Invalid("status must be approved or rejected")
		}
		out, err = s.repo.SetStatus(ctx, in.MerchantID, status, domain.AuditEntry{
			ActorID: actor.UserID,
			Action:  reviewActions[status],
			Detail:  map[string]interface{}{"status": status},
		})
		if err != nil {
			return nil, err
		}
	}
	if in.IsActive != nil {
		out, err = s.ToggleActive(ctx, actor, in.MerchantID, *in.IsActive)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ToggleActive flips a store's is_active flag and records an audit entry in
// the same transaction.
func (s *Service) ToggleActive(ctx context.Context, actor domain.Identity, storeID string, active bool) (*domain.Store, error) {
	if err := auth.Authorize(actor, storeID, domain.ActionManageStores); err != nil {
		return nil, err
	}
	action := "store.deactivate"
	if active {
		action = "store.activate"
	}
	out, err := s.repo.SetActive(ctx, storeID, active, domain.AuditEntry{
		ActorID: actor.UserID,
		Action:  action,
		Detail:  map[string]interface{}{"isActive": active, "actorEmail": actor.Email},
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("store_id", storeID).Str("action", action).Str("actor", actor.UserID).Msg("store activation changed")
	return out, nil
}

// List returns every store, newest first.
func (s *Service) List(ctx context.Context, actor domain.Identity) ([]domain.Store, error) {
	if err := auth.Authorize(actor, "", domain.ActionManageStores); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// KioskStore returns the store behind a public kiosk slug. Stores that are not
// approved and active are reported as missing.
func (s *Service) KioskStore(ctx context.Context, slug string) (*domain.Store, error) {
	slug = strings.TrimSpace(slug)
	if domain.SlugProblem(slug) == domain.SlugInvalidFormat {
		return nil, domain.ErrNotFound
	}
	st, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if st.Status != domain.StatusApproved || !st.IsActive {
		return nil, domain.ErrNotFound
	}
	return st, nil
}
