package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogReconcile re-reads the route sources and reconciles the permission catalog.
	TaskCatalogReconcile = "catalog:reconcile"

	// catalogUniqueTTL keeps a second sync request from queueing while one is pending.
	catalogUniqueTTL = 10 * time.Minute
)

// CatalogReconcilePayload optionally overrides the route source directory.
type CatalogReconcilePayload struct {
	Dir string `json:"dir,omitempty"`
}

// NewCatalogReconcileTask constructs the reconciliation task.
func NewCatalogReconcileTask(payload CatalogReconcilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogReconcile, data, asynq.Queue(QueueDefault), asynq.Unique(catalogUniqueTTL), asynq.MaxRetry(3)), nil
}
