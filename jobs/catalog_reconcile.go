package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/storeadmin/internal/catalog"
	jobmetrics "github.com/odyssey-erp/storeadmin/internal/jobs"
	"github.com/odyssey-erp/storeadmin/internal/routecatalog"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// CatalogReconciler is the behaviour the job needs from the catalog service.
type CatalogReconciler interface {
	Reconcile(ctx context.Context, resources []routecatalog.Resource) (catalog.Report, error)
}

// CatalogReconcileJob loads route sources and reconciles them into storage.
type CatalogReconcileJob struct {
	Dir     string
	Service CatalogReconciler
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	load    func(dir string) ([]routecatalog.Resource, []routecatalog.Warning, error)
}

// NewCatalogReconcileJob constructs the job handler.
func NewCatalogReconcileJob(dir string, service CatalogReconciler, logger *slog.Logger, metrics *jobmetrics.Metrics) *CatalogReconcileJob {
	return &CatalogReconcileJob{
		Dir:     dir,
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		load:    routecatalog.LoadDir,
	}
}

// Handle executes one reconciliation run.
func (j *CatalogReconcileJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("catalog reconcile: dependencies not configured")
	}
	var payload CatalogReconcilePayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	_, err := j.Run(ctx, payload.Dir)
	return err
}

// Run reconciles the catalog from dir, falling back to the configured directory.
func (j *CatalogReconcileJob) Run(ctx context.Context, dir string) (report catalog.Report, err error) {
	if dir == "" {
		dir = j.Dir
	}
	tracker := j.metrics().Track(TaskCatalogReconcile)
	defer func() {
		err = tracker.End(err)
	}()

	load := j.load
	if load == nil {
		load = routecatalog.LoadDir
	}
	resources, warnings, err := load(dir)
	if err != nil {
		j.log().Error("load route sources", slog.String("dir", dir), slog.Any("error", err))
		return catalog.Report{}, err
	}
	for _, w := range warnings {
		j.log().Warn("route source skipped", slog.String("warning", w.String()))
	}

	start := time.Now()
	report, err = j.Service.Reconcile(ctx, resources)
	if err != nil {
		return report, err
	}
	if report.GroupsErr != nil || len(report.Failures) > 0 {
		// reconciliation is idempotent, so a retry only fills the gaps
		return report, fmt.Errorf("catalog reconcile: %d resource failures: %w", len(report.Failures), errors.Join(failureErrors(report)...))
	}
	j.log().Info("catalog reconciled",
		slog.String("dir", dir),
		slog.Int("resources", len(resources)),
		slog.Int("permissions_created", report.CreatedPermissions()),
		slog.Duration("duration", time.Since(start)))
	return report, nil
}

func failureErrors(report catalog.Report) []error {
	errs := make([]error, 0, len(report.Failures)+1)
	if report.GroupsErr != nil {
		errs = append(errs, report.GroupsErr)
	}
	for _, f := range report.Failures {
		errs = append(errs, f)
	}
	return errs
}

func (j *CatalogReconcileJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *CatalogReconcileJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCatalogReconcile))
	}
	return slog.Default().With(slog.String("job", TaskCatalogReconcile))
}
