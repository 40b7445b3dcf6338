package httpserver

import (
	"context"
	"errors"
	"time"

	"ralli/internal/domain"
	"ralli/internal/metrics"
	appsvc "ralli/internal/service/application"
	customersvc "ralli/internal/service/customer"
	ordersvc "ralli/internal/service/order"
	storesvc "ralli/internal/service/store"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// IdentityResolver turns a session token into the caller's identity.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (domain.Identity, error)
}

type StoreService interface {
	CheckSlugAvailability(ctx context.Context, slug string) (storesvc.SlugAvailability, error)
	Register(ctx context.Context, in storesvc.RegisterInput) (*domain.Store, error)
	Review(ctx context.Context, actor domain.Identity, in storesvc.ReviewInput) (*domain.Store, error)
	List(ctx context.Context, actor domain.Identity) ([]domain.Store, error)
	KioskStore(ctx context.Context, slug string) (*domain.Store, error)
}

type ApplicationService interface {
	Submit(ctx context.Context, actor domain.Identity, in appsvc.SubmitInput) (*domain.Application, error)
	Approve(ctx context.Context, actor domain.Identity, id string) (*domain.Application, *domain.Store, error)
	Reject(ctx context.Context, actor domain.Identity, id, reason string) (*domain.Application, error)
	List(ctx context.Context, actor domain.Identity, status string) ([]domain.Application, error)
	Get(ctx context.Context, actor domain.Identity, id string) (*domain.Application, error)
	Delete(ctx context.Context, actor domain.Identity, id string) error
}

type CustomerService interface {
	Lookup(ctx context.Context, storeID, phoneOrEmail string) (*customersvc.Lookup, error)
}

type OrderService interface {
	Create(ctx context.Context, storeID string, in ordersvc.CreateInput, source string) (*domain.Order, error)
	List(ctx context.Context, storeID, status string) ([]domain.Order, error)
	Get(ctx context.Context, storeID, id string) (*domain.Order, error)
	Update(ctx context.Context, storeID, id string, in ordersvc.UpdateInput) (*domain.Order, error)
	Delete(ctx context.Context, storeID, id string) error
}

// Deps are the services the router dispatches to.
type Deps struct {
	Identity      IdentityResolver
	Stores        StoreService
	Applications  ApplicationService
	Customers     CustomerService
	Orders        OrderService
	Metrics       *metrics.Metrics
	SessionCookie string
	CORSOrigins   []string
}

// buildRouter wires routes for the API.
func buildRouter(logger zerolog.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.Identity == nil {
		return nil, errors.New("identity resolver is required")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.SessionCookie == "" {
		deps.SessionCookie = "__session"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestID(), requestLogger(logger, deps.Metrics), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Metrics.Registry(), promhttp.HandlerOpts{})))

	h := &handlers{logger: logger, deps: deps}
	api := router.Group("/", identityMiddleware(deps.Identity, deps.SessionCookie, logger))

	api.GET("/me", h.me)

	api.GET("/orders", h.listOrders)
	api.POST("/orders", h.createOrder)
	api.GET("/orders/:id", h.getOrder)
	api.PATCH("/orders/:id", h.updateOrder)
	api.DELETE("/orders/:id", h.deleteOrder)

	api.GET("/customers", h.lookupCustomer)

	api.GET("/kiosk/:slug", h.kioskStore)
	api.POST("/kiosk/:slug/orders", h.kioskCreateOrder)

	api.POST("/merchants", h.registerMerchant)
	api.GET("/merchants", h.listMerchants)
	api.PATCH("/merchants", h.reviewMerchant)
	api.GET("/stores/check-slug", h.checkSlug)

	api.POST("/applications", h.submitApplication)
	api.GET("/applications", h.listApplications)
	api.GET("/applications/:id", h.getApplication)
	api.PATCH("/applications/:id", h.reviewApplication)
	api.DELETE("/applications/:id", h.deleteApplication)

	return router, nil
}

type handlers struct {
	logger zerolog.Logger
	deps   Deps
}
