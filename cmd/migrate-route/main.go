package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/storeadmin/cmd/storeadmin/cli"
	"github.com/odyssey-erp/storeadmin/internal/app"
	"github.com/odyssey-erp/storeadmin/internal/catalog"
	"github.com/odyssey-erp/storeadmin/internal/platform/db"
	"github.com/odyssey-erp/storeadmin/jobs"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadToolConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		return cli.ExitError
	}

	dir := flag.String("dir", cfg.RouteSourceDir, "directory holding route files and manifests")
	enqueue := flag.Bool("enqueue", false, "queue the reconciliation on the worker instead of running it here")
	jsonOut := flag.Bool("json", false, "print the report as JSON")
	flag.Parse()

	logger := app.NewLogger(cfg)

	if *enqueue {
		jobsCLI, err := cli.NewJobsCLI(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			logger.Error("init jobs cli", slog.Any("error", err))
			return cli.ExitError
		}
		defer func() { _ = jobsCLI.Close() }()
		id, err := jobsCLI.Trigger(ctx, jobs.TaskCatalogReconcile, *dir)
		if err != nil {
			logger.Error("enqueue reconciliation", slog.Any("error", err))
			return cli.ExitError
		}
		fmt.Printf("queued %s (%s)\n", jobs.TaskCatalogReconcile, id)
		if stats, err := jobsCLI.InspectQueue(ctx); err == nil {
			fmt.Printf("queue %s: %d pending, %d active\n", stats.Queue, stats.Pending, stats.Active)
		}
		return cli.ExitOK
	}

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		return cli.ExitError
	}
	defer pool.Close()

	service := catalog.NewService(catalog.NewRepository(pool), logger, catalog.Options{Concurrency: cfg.CatalogConcurrency})
	return cli.NewRouteMigrator(service).MigrateCommand(ctx, cli.MigrateOptions{
		Dir:        *dir,
		JSONOutput: *jsonOut,
	})
}
