package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/odyssey-erp/storeadmin/internal/identity"
	"github.com/odyssey-erp/storeadmin/internal/platform/httpx"
	"github.com/odyssey-erp/storeadmin/internal/shared"
)

const (
	// DefaultHeader carries the bearer token.
	DefaultHeader = "Authorization"
	// DefaultScheme prefixes the token inside the header.
	DefaultScheme = "Bearer"
)

// IdentityResolver resolves a raw bearer token.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (identity.Identity, error)
}

// DecisionRecorder counts authorization outcomes.
type DecisionRecorder interface {
	ObserveDecision(allowed bool, reason string)
}

// Middleware authenticates requests and, when Enforce is set, authorizes
// them with Engine. Every rejection gets the same 401 response.
type Middleware struct {
	Resolver IdentityResolver
	Engine   *Engine
	Enforce  bool
	Logger   *slog.Logger
	Metrics  DecisionRecorder
	Header   string
	Scheme   string
}

type failureBody struct {
	Error string `json:"error"`
}

// AuthenticateOnly returns a copy of m that never consults the engine.
func (m Middleware) AuthenticateOnly() Middleware {
	m.Enforce = false
	return m
}

// Handler wraps next.
func (m Middleware) Handler(next http.Handler) http.Handler {
	header := m.Header
	if header == "" {
		header = DefaultHeader
	}
	scheme := m.Scheme
	if scheme == "" {
		scheme = DefaultScheme
	}
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get(header), scheme+" "))
		ident, err := m.Resolver.Resolve(r.Context(), token)
		if err != nil {
			reason := identity.ReasonOf(err)
			if reason == "" {
				reason = identity.ReasonLoadFailed
			}
			m.observe(false, reason)
			m.reject(w, r, logger, reason, err)
			return
		}
		ctx := shared.ContextWithIdentity(r.Context(), ident)
		ctx = shared.ContextWithSubject(ctx, strconv.FormatInt(ident.ID, 10))

		if m.Enforce && m.Engine != nil {
			decision := m.Engine.Decide(ident, r.Method, r.URL.Path)
			m.observe(decision.Allowed, decision.Reason)
			if !decision.Allowed {
				m.reject(w, r, logger, decision.Reason, decision.Err())
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m Middleware) observe(allowed bool, reason string) {
	if m.Metrics != nil {
		m.Metrics.ObserveDecision(allowed, reason)
	}
}

func (m Middleware) reject(w http.ResponseWriter, r *http.Request, logger *slog.Logger, reason string, err error) {
	logger.Warn("request rejected",
		slog.String("reason", reason),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	httpx.JSON(w, http.StatusUnauthorized, failureBody{Error: "Authentication failed"})
}
