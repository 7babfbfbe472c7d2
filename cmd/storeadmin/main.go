package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/storeadmin/internal/app"
	"github.com/odyssey-erp/storeadmin/internal/auth"
	"github.com/odyssey-erp/storeadmin/internal/catalog"
	"github.com/odyssey-erp/storeadmin/internal/identity"
	"github.com/odyssey-erp/storeadmin/internal/observability"
	"github.com/odyssey-erp/storeadmin/internal/platform/cache"
	"github.com/odyssey-erp/storeadmin/internal/platform/db"
	"github.com/odyssey-erp/storeadmin/internal/rbac"
	"github.com/odyssey-erp/storeadmin/internal/roles"
	"github.com/odyssey-erp/storeadmin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		if cfg.IdentityCache == identity.CacheRedis {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Warn("redis ping", slog.Any("error", err))
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()

	tokens, err := identity.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("init tokens", slog.Any("error", err))
		os.Exit(1)
	}
	loader, err := identity.WithCache(identity.NewRepository(dbpool), identity.CacheOptions{
		Kind: cfg.IdentityCache,
		TTL:  cfg.IdentityCacheTTL,
		Size: cfg.IdentityCacheSize,
	}, redisClient, logger)
	if err != nil {
		logger.Error("init identity cache", slog.Any("error", err))
		os.Exit(1)
	}
	resolver := identity.NewResolver(tokens, loader, cfg.IdentityTimeout)

	session := rbac.Middleware{
		Resolver: resolver,
		Engine:   rbac.NewEngine(cfg.AuthzSuperAdminRole, cfg.AuthzMountPrefix, cfg.AuthzGroupScoped),
		Enforce:  cfg.AuthzEnforce,
		Logger:   logger,
		Metrics:  metrics,
	}
	if !cfg.AuthzEnforce {
		logger.Warn("authorization enforcement disabled, requests are authenticated only")
	}

	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	authService := auth.NewService(auth.NewRepository(dbpool), tokens)
	catalogService := catalog.NewService(catalog.NewRepository(dbpool), logger, catalog.Options{
		Concurrency: cfg.CatalogConcurrency,
		Metrics:     metrics,
	})
	rolesService := roles.NewService(roles.NewRepository(dbpool))

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthHandler:    auth.NewHandler(logger, authService),
		CatalogHandler: catalog.NewHandler(logger, catalogService, jobClient),
		RolesHandler:   roles.NewHandler(logger, rolesService),
		JobHandler:     jobs.NewHandler(inspector, logger),
		Session:        session,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: cfg.AppReadTimeout,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
