package application

import (
	"context"
	"strings"

	"ralli/internal/domain"
	"ralli/internal/service/auth"
	"github.com/rs/zerolog"
)

// Repository is the subset of the application repository the service needs.
type Repository interface {
	Create(ctx context.Context, a domain.Application) (*domain.Application, error)
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	HasPending(ctx context.Context, applicantID string) (bool, error)
	List(ctx context.Context, status string) ([]domain.Application, error)
	Approve(ctx context.Context, id, reviewerID string) (*domain.Application, *domain.Store, error)
	Reject(ctx context.Context, id, reviewerID, reason string) (*domain.Application, error)
	Delete(ctx context.Context, id string) error
}

// SlugChecker reports whether a slug is held by a store or pending
// application.
type SlugChecker interface {
	SlugInUse(ctx context.Context, slug string) (bool, error)
}

// Service runs the shop onboarding workflow.
type Service struct {
	repo   Repository
	slugs  SlugChecker
	logger zerolog.Logger
}

func New(repo Repository, slugs SlugChecker, logger zerolog.Logger) *Service {
	return &Service{repo: repo, slugs: slugs, logger: logger}
}

// SubmitInput captures an onboarding request.
type SubmitInput struct {
	BusinessName string `json:"businessName"`
	Slug         string `json:"slug"`
	OwnerEmail   string `json:"ownerEmail"`
	ContactPhone string `json:"contactPhone"`
	City         string `json:"city"`
	Message      string `json:"message"`
}

// Submit files a pending application for the caller.
func (s *Service) Submit(ctx context.Context, actor domain.Identity, in SubmitInput) (*domain.Application, error) {
	if err := auth.Authorize(actor, "", domain.ActionSubmitApplication); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.BusinessName)
	slug := strings.TrimSpace(in.Slug)
	ownerEmail := domain.NormalizeEmail(in.OwnerEmail)
	if name == "" || slug == "" || ownerEmail == "" {
		return nil, domain.Invalid("businessName, slug and ownerEmail are required")
	}
	switch domain.SlugProblem(slug) {
	case "":
	case domain.SlugReserved:
		return nil, domain.Invalid("slug is reserved")
	default:
		return nil, domain.Invalid("slug may only contain lowercase letters, digits and hyphens")
	}
	if actor.Email == "" || domain.NormalizeEmail(actor.Email) != ownerEmail {
		return nil, domain.ErrForbidden
	}

	pending, err := s.repo.HasPending(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, domain.Conflict("you already have a pending application")
	}
	used, err := s.slugs.SlugInUse(ctx, slug)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, domain.Conflict("slug is already taken")
	}

	app, err := s.repo.Create(ctx, domain.Application{
		ApplicantID:  actor.UserID,
		OwnerEmail:   ownerEmail,
		BusinessName: name,
		Slug:         slug,
		ContactPhone: domain.NormalizePhone(in.ContactPhone),
		City:         strings.TrimSpace(in.City),
		Message:      strings.TrimSpace(in.Message),
		Status:       domain.StatusPending,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("application_id", app.ID).Str("slug", app.Slug).Msg("application submitted")
	return app, nil
}

// Approve creates the store for a pending application atomically.
func (s *Service) Approve(ctx context.Context, actor domain.Identity, id string) (*domain.Application, *domain.Store, error) {
	if err := auth.Authorize(actor, "", domain.ActionReviewApplications); err != nil {
		return nil, nil, err
	}
	app, st, err := s.repo.Approve(ctx, id, actor.UserID)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info().Str("application_id", id).Str("store_id", st.ID).Str("reviewer", actor.UserID).Msg("application approved")
	return app, st, nil
}

// Reject closes a pending application with a reason.
func (s *Service) Reject(ctx context.Context, actor domain.Identity, id, reason string) (*domain.Application, error) {
	if err := auth.Authorize(actor, "", domain.ActionReviewApplications); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.Invalid("reason is required")
	}
	app, err := s.repo.Reject(ctx, id, actor.UserID, reason)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("application_id", id).Str("reviewer", actor.UserID).Msg("application rejected")
	return app, nil
}

// List returns applications, optionally filtered by status.
func (s *Service) List(ctx context.Context, actor domain.Identity, status string) ([]domain.Application, error) {
	if err := auth.Authorize(actor, "", domain.ActionReviewApplications); err != nil {
		return nil, err
	}
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "", domain.StatusPending, domain.StatusApproved, domain.StatusRejected:
	default:
		return nil, domain.Invalid("unknown status filter")
	}
	return s.repo.List(ctx, status)
}

// Get returns one application for review.
func (s *Service) Get(ctx context.Context, actor domain.Identity, id string) (*domain.Application, error) {
	if err := auth.Authorize(actor, "", domain.ActionReviewApplications); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes an application that has not been approved.
func (s *Service) Delete(ctx context.Context, actor domain.Identity, id string) error {
	if err := auth.Authorize(actor, "", domain.ActionReviewApplications); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
