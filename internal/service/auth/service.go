package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ralli/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// RoleLookup finds a platform role for an email.
type RoleLookup interface {
	RoleForEmail(ctx context.Context, email string) (domain.Role, error)
}

// StoreOwnership lists the approved stores a caller owns.
type StoreOwnership interface {
	OwnedIDs(ctx context.Context, ownerID, email string) ([]string, error)
}

// Config configures session token verification.
type Config struct {
	Secret string
	// Issuer, when set, must match the token's iss claim.
	Issuer string
}

// SessionClaims are the claims carried by an identity-provider session token.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service resolves request identities and authorizes actions.
type Service struct {
	cfg    Config
	roles  RoleLookup
	stores StoreOwnership
	logger zerolog.Logger
}

// New creates an identity Service.
func New(cfg Config, roles RoleLookup, stores StoreOwnership, logger zerolog.Logger) *Service {
	return &Service{cfg: cfg, roles: roles, stores: stores, logger: logger}
}

// ResolveIdentity turns a raw session token into an Identity. An empty token
// yields the anonymous identity; an invalid or expired one is rejected.
func (s *Service) ResolveIdentity(ctx context.Context, token string) (domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Anonymous, nil
	}
	claims, err := s.verify(token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("session token rejected")
		return domain.Anonymous, domain.ErrUnauthenticated
	}
	if claims.Subject == "" {
		return domain.Anonymous, domain.ErrUnauthenticated
	}

	id := domain.Identity{
		UserID: claims.Subject,
		Email:  domain.NormalizeEmail(claims.Email),
		Role:   domain.RoleAuthenticated,
	}

	storeIDs, err := s.stores.OwnedIDs(ctx, id.UserID, id.Email)
	if err != nil {
		return domain.Anonymous, fmt.Errorf("load owned stores: %w", err)
	}
	id.StoreIDs = storeIDs
	if len(storeIDs) > 0 {
		id.Role = domain.RoleTenantStaff
	}

	if id.Email != "" {
		role, err := s.roles.RoleForEmail(ctx, id.Email)
		if err != nil {
			return domain.Anonymous, fmt.Errorf("load platform role: %w", err)
		}
		if role == domain.RolePlatformAdmin {
			id.Role = domain.RolePlatformAdmin
		}
	}
	if id.StoreIDs == nil {
		id.StoreIDs = []string{}
	}
	return id, nil
}

func (s *Service) verify(raw string) (*SessionClaims, error) {
	if s.cfg.Secret == "" {
		return nil, errors.New("no session secret configured")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Authorize checks that id may perform action on storeID.
func (s *Service) Authorize(id domain.Identity, storeID string, action domain.Action) error {
	return Authorize(id, storeID, action)
}

// Authorize checks that id may perform action on storeID. Platform admins may
// act on any store; staff only on stores they own.
func Authorize(id domain.Identity, storeID string, action domain.Action) error {
	if !id.IsAuthenticated() {
		return domain.ErrUnauthenticated
	}
	if id.IsPlatformAdmin() {
		return nil
	}
	if action.AdminOnly() {
		return domain.ErrForbidden
	}
	if action == domain.ActionSubmitApplication {
		return nil
	}
	if storeID == "" || !id.OwnsStore(storeID) {
		return domain.ErrForbidden
	}
	return nil
}

// ResolveStoreID picks the store a tenant request targets. An explicit id wins;
// otherwise a caller owning exactly one store gets that store.
func ResolveStoreID(id domain.Identity, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested != "" {
		return requested, nil
	}
	if !id.IsAuthenticated() {
		return "", domain.ErrUnauthenticated
	}
	if len(id.StoreIDs) == 1 {
		return id.StoreIDs[0], nil
	}
	return "", domain.Invalid("storeId is required")
}
