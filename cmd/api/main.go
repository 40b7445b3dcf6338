package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ralli/internal/config"
	"ralli/internal/db"
	"ralli/internal/domain"
	"ralli/internal/httpserver"
	"ralli/internal/logger"
	"ralli/internal/metrics"
	"ralli/internal/migrate"
	"ralli/internal/notify"
	applicationrepo "ralli/internal/repository/application"
	customerrepo "ralli/internal/repository/customer"
	orderrepo "ralli/internal/repository/order"
	rolerepo "ralli/internal/repository/role"
	storerepo "ralli/internal/repository/store"
	appsvc "ralli/internal/service/application"
	"ralli/internal/service/auth"
	customersvc "ralli/internal/service/customer"
	ordersvc "ralli/internal/service/order"
	storesvc "ralli/internal/service/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New("api", cfg.LogLevel, cfg.LogFormat)

	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("AUTH_JWT_SECRET is required")
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBStatementTO)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to db")
	}
	defer dbpool.Close()

	if cfg.MigrateOnStart {
		if err := migrate.Apply(ctx, dbpool, log); err != nil {
			log.Fatal().Err(err).Msg("apply migrations")
		}
	}

	m := metrics.New()

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Mail.Enabled() {
		notifier = notify.NewSMTP(notify.SMTPConfig{
			Host:      cfg.Mail.Host,
			Port:      cfg.Mail.Port,
			Username:  cfg.Mail.Username,
			Password:  cfg.Mail.APIKey,
			FromEmail: cfg.Mail.FromEmail,
			FromName:  cfg.Mail.FromName,
		}, log)
	} else {
		log.Warn().Msg("mail not configured, completion emails disabled")
	}

	storeRepo := storerepo.NewPostgres(dbpool, log)
	applicationRepo := applicationrepo.NewPostgres(dbpool, log)
	customerRepo := customerrepo.NewPostgres(dbpool, log)
	orderRepo := orderrepo.NewPostgres(dbpool, log)
	roleRepo := rolerepo.NewPostgres(dbpool, log)

	authService := auth.New(auth.Config{Secret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.Issuer}, roleRepo, storeRepo, log)
	storeService := storesvc.New(storeRepo, log)
	applicationService := appsvc.New(applicationRepo, storeRepo, log)
	customerService := customersvc.New(customerRepo, orderRepo, log)
	policy := domain.ParseTransitionPolicy(cfg.TransitionPolicy)
	orderService := ordersvc.New(orderRepo, storeRepo, notifier, m, policy, log)

	srv, err := httpserver.New(cfg.HTTPAddr, log, dbpool, httpserver.Deps{
		Identity:      authService,
		Stores:        storeService,
		Applications:  applicationService,
		Customers:     customerService,
		Orders:        orderService,
		Metrics:       m,
		SessionCookie: cfg.Auth.SessionCookie,
		CORSOrigins:   cfg.CORSOrigins,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("transition_policy", string(policy)).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		log.Info().Msg("server stopped")
	}
}
