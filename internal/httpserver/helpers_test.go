package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ralli/internal/domain"
	appsvc "ralli/internal/service/application"
	customersvc "ralli/internal/service/customer"
	ordersvc "ralli/internal/service/order"
	storesvc "ralli/internal/service/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	storeA = "11111111-1111-1111-1111-111111111111"
	storeB = "22222222-2222-2222-2222-222222222222"
	orderX = "33333333-3333-3333-3333-333333333333"
)

var (
	staffA = domain.Identity{UserID: "user_a", Email: "a@shop.test", Role: domain.RoleTenantStaff, StoreIDs: []string{storeA}}
	admin  = domain.Identity{UserID: "user_admin", Email: "ops@ralli.io", Role: domain.RolePlatformAdmin, StoreIDs: []string{}}
	member = domain.Identity{UserID: "user_new", Email: "new@shop.test", Role: domain.RoleAuthenticated, StoreIDs: []string{}}
)

func logDiscard() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// stubIdentity maps bearer tokens to identities.
type stubIdentity struct{}

func (stubIdentity) ResolveIdentity(_ context.Context, token string) (domain.Identity, error) {
	switch token {
	case "":
		return domain.Anonymous, nil
	case "staff-a":
		return staffA, nil
	case "admin":
		return admin, nil
	case "member":
		return member, nil
	case "boom":
		return domain.Anonymous, errors.New("db down")
	default:
		return domain.Anonymous, domain.ErrUnauthenticated
	}
}

type stubOrderService struct {
	orders    []domain.Order
	created   *domain.Order
	err       error
	gotStore  string
	gotSource string
	gotInput  ordersvc.CreateInput
	gotUpdate ordersvc.UpdateInput
}

func (s *stubOrderService) Create(_ context.Context, storeID string, in ordersvc.CreateInput, source string) (*domain.Order, error) {
	s.gotStore, s.gotSource, s.gotInput = storeID, source, in
	return s.created, s.err
}

func (s *stubOrderService) List(_ context.Context, storeID, _ string) ([]domain.Order, error) {
	s.gotStore = storeID
	return s.orders, s.err
}

func (s *stubOrderService) Get(_ context.Context, storeID, id string) (*domain.Order, error) {
	s.gotStore = storeID
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{ID: id, StoreID: storeID, Status: domain.OrderPending}, nil
}

func (s *stubOrderService) Update(_ context.Context, storeID, id string, in ordersvc.UpdateInput) (*domain.Order, error) {
	s.gotStore, s.gotUpdate = storeID, in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{ID: id, StoreID: storeID, Status: domain.OrderCompleted}, nil
}

func (s *stubOrderService) Delete(_ context.Context, storeID, _ string) error {
	s.gotStore = storeID
	return s.err
}

type stubCustomerService struct {
	result *customersvc.Lookup
	err    error
	gotKey string
}

func (s *stubCustomerService) Lookup(_ context.Context, _ string, key string) (*customersvc.Lookup, error) {
	s.gotKey = key
	return s.result, s.err
}

type stubStoreService struct {
	kiosk    *domain.Store
	store    *domain.Store
	err      error
	register storesvc.RegisterInput
}

func (s *stubStoreService) CheckSlugAvailability(_ context.Context, slug string) (storesvc.SlugAvailability, error) {
	if slug == "taken" {
		return storesvc.SlugAvailability{Reason: domain.SlugTaken}, nil
	}
	return storesvc.SlugAvailability{Available: true}, nil
}

func (s *stubStoreService) Register(_ context.Context, in storesvc.RegisterInput) (*domain.Store, error) {
	s.register = in
	return s.store, s.err
}

func (s *stubStoreService) Review(_ context.Context, actor domain.Identity, _ storesvc.ReviewInput) (*domain.Store, error) {
	if !actor.IsPlatformAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.store, s.err
}

func (s *stubStoreService) List(_ context.Context, actor domain.Identity) ([]domain.Store, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if !actor.IsPlatformAdmin() {
		return nil, domain.ErrForbidden
	}
	return []domain.Store{}, nil
}

func (s *stubStoreService) KioskStore(_ context.Context, slug string) (*domain.Store, error) {
	if s.kiosk == nil || s.kiosk.Slug != slug {
		return nil, domain.ErrNotFound
	}
	return s.kiosk, nil
}

type stubApplicationService struct {
	app    *domain.Application
	store  *domain.Store
	err    error
	reason string
}

func (s *stubApplicationService) Submit(_ context.Context, actor domain.Identity, _ appsvc.SubmitInput) (*domain.Application, error) {
	if !actor.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return s.app, s.err
}

func (s *stubApplicationService) Approve(_ context.Context, _ domain.Identity, _ string) (*domain.Application, *domain.Store, error) {
	return s.app, s.store, s.err
}

func (s *stubApplicationService) Reject(_ context.Context, _ domain.Identity, _ string, reason string) (*domain.Application, error) {
	s.reason = reason
	return s.app, s.err
}

func (s *stubApplicationService) List(_ context.Context, _ domain.Identity, _ string) ([]domain.Application, error) {
	return []domain.Application{}, s.err
}

func (s *stubApplicationService) Get(_ context.Context, actor domain.Identity, _ string) (*domain.Application, error) {
	if !actor.IsPlatformAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.app, s.err
}

func (s *stubApplicationService) Delete(_ context.Context, _ domain.Identity, _ string) error {
	return s.err
}

type testDeps struct {
	orders    *stubOrderService
	customers *stubCustomerService
	stores    *stubStoreService
	apps      *stubApplicationService
}

func newTestRouter(t *testing.T) (*gin.Engine, *testDeps) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	td := &testDeps{
		orders:    &stubOrderService{},
		customers: &stubCustomerService{},
		stores:    &stubStoreService{},
		apps:      &stubApplicationService{},
	}
	router, err := buildRouter(logDiscard(), nil, Deps{
		Identity:     stubIdentity{},
		Stores:       td.stores,
		Applications: td.apps,
		Customers:    td.customers,
		Orders:       td.orders,
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router, td
}

func do(router http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
