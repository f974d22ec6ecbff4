package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/propcrm/crm-service/internal/api/http"
	"github.com/propcrm/crm-service/internal/api/http/handlers"
	"github.com/propcrm/crm-service/internal/auth"
	"github.com/propcrm/crm-service/internal/config"
	"github.com/propcrm/crm-service/internal/dashboard"
	"github.com/propcrm/crm-service/internal/events"
	"github.com/propcrm/crm-service/internal/observability"
	"github.com/propcrm/crm-service/internal/persistence"
	"github.com/propcrm/crm-service/internal/repository"
	"github.com/propcrm/crm-service/internal/service"
	"github.com/propcrm/crm-service/internal/session"
	"github.com/propcrm/crm-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if pool == nil {
		logger.Fatal("POSTGRES_DSN is required")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	location, err := cfg.Dashboard.Location()
	if err != nil {
		logger.Fatal("invalid dashboard time zone", zap.Error(err))
	}

	store := repository.NewStore(pool)
	records := repository.NewRecordRepository(pool)

	bridge := events.NewRedisBridge(events.NewInMemoryDispatcher(), redis.Client, redis.IdentityChannel, logger)
	provider := auth.NewProvider(auth.ProviderDependencies{
		Identities: store.Identities,
		Tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		Redis:      redis.Client,
		Dispatcher: bridge,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})

	registry := session.NewRegistry(session.RegistryDependencies{
		Sources:       func(token string) session.IdentitySource { return provider.Session(token) },
		Profiles:      store.Profiles,
		Organizations: store.Organizations,
		Metrics:       metrics,
		Logger:        logger,
		IdleTimeout:   cfg.Auth.SessionIdle(),
	})
	identitySub := provider.OnIdentityChange(registry.HandleEvent)
	defer identitySub.Unsubscribe()

	audit := service.NewAuditService(bridge, logger)
	audit.RegisterHandlers()
	defer audit.Close()

	aggregator := dashboard.NewAggregator(dashboard.Dependencies{
		Records:      records,
		Metrics:      metrics,
		Logger:       logger,
		Location:     location,
		QueryTimeout: cfg.Dashboard.QueryTimeout(),
		Deadline:     cfg.Dashboard.Deadline(),
	})
	authService := service.NewAuthService(provider, registry)
	signupService := service.NewSignupService(service.SignupDependencies{
		DB:        pool,
		Provider:  provider,
		TrialDays: cfg.Auth.TrialDays,
		Logger:    logger,
	})

	sessionWorker := worker.NewSessionWorker(bridge, registry, cfg.Auth.SessionIdle()/2, logger)
	go func() {
		if err := sessionWorker.Run(ctx); err != nil {
			logger.Error("session worker stopped", zap.Error(err))
		}
	}()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres":       pg,
			"redis":          redis,
			"identity_relay": bridge,
		}),
		Auth:           handlers.NewAuthHandler(authService, signupService),
		Session:        handlers.NewSessionHandler(),
		Dashboard:      handlers.NewDashboardHandler(aggregator),
		AuthMiddleware: auth.NewAuthMiddleware(provider, registry),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
