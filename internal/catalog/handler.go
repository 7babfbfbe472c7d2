package catalog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/storeadmin/internal/platform/httpx"
)

// SyncEnqueuer schedules a background reconciliation run.
type SyncEnqueuer interface {
	EnqueueCatalogReconcile(ctx context.Context) (string, error)
}

// Handler exposes the catalog over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	enqueuer SyncEnqueuer
}

// NewHandler constructs a Handler. enqueuer may be nil, in which case the
// sync endpoint reports the queue as unavailable.
func NewHandler(logger *slog.Logger, service *Service, enqueuer SyncEnqueuer) *Handler {
	return &Handler{logger: logger, service: service, enqueuer: enqueuer}
}

// MountGroupRoutes registers permission group routes.
func (h *Handler) MountGroupRoutes(r chi.Router) {
	r.Get("/", h.listGroups)
	r.Post("/sync", h.sync)
}

// MountPermissionRoutes registers permission routes.
func (h *Handler) MountPermissionRoutes(r chi.Router) {
	r.Get("/", h.listPermissions)
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGroups(r.Context())
	if err != nil {
		h.logger.Error("list permission groups", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": groups})
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if perms == nil {
		perms = []Permission{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": perms})
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "background jobs are not configured")
		return
	}
	id, err := h.enqueuer.EnqueueCatalogReconcile(r.Context())
	if err != nil {
		if errors.Is(err, ErrSyncQueued) {
			httpx.Problem(w, http.StatusConflict, "Sync Already Queued", err.Error())
			return
		}
		h.logger.Error("enqueue catalog sync", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("catalog sync queued", slog.String("task_id", id))
	httpx.JSON(w, http.StatusAccepted, map[string]string{"task_id": id})
}
