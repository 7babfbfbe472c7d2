package app_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/storeadmin/internal/app"
	"github.com/odyssey-erp/storeadmin/internal/auth"
	"github.com/odyssey-erp/storeadmin/internal/identity"
	"github.com/odyssey-erp/storeadmin/internal/observability"
	"github.com/odyssey-erp/storeadmin/internal/rbac"
	"github.com/odyssey-erp/storeadmin/internal/roles"
	_ "github.com/odyssey-erp/storeadmin/testing"
)

type tokenResolver map[string]identity.Identity

func (t tokenResolver) Resolve(_ context.Context, token string) (identity.Identity, error) {
	ident, ok := t[token]
	if !ok {
		return identity.Identity{}, &identity.AuthError{Reason: identity.ReasonInvalidToken}
	}
	return ident, nil
}

type stubRoles struct{}

func (stubRoles) ListRoles(context.Context, roles.RoleListFilters) ([]roles.Role, error) {
	return []roles.Role{{ID: 1, Name: "Editor", Status: "Active"}}, nil
}

func (stubRoles) GetRole(_ context.Context, id int64) (roles.Role, error) {
	if id != 1 {
		return roles.Role{}, roles.ErrNotFound
	}
	return roles.Role{ID: 1, Name: "Editor", Status: "Active"}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &app.Config{AppEnv: "test", AuthzMountPrefix: "/api", AuthzEnforce: true}
	resolver := tokenResolver{
		"root":   {ID: 1, RoleNames: []string{rbac.DefaultSuperAdminRole}, Roles: []identity.Role{{Name: rbac.DefaultSuperAdminRole}}},
		"reader": {ID: 2, Roles: []identity.Role{{Name: "Reader", Permissions: []identity.Permission{
			{ID: 10, Name: "listRoles", Slug: "/", Method: "GET", Group: &identity.Group{ID: 3, Slug: "role"}},
		}}}},
		"nobody": {ID: 3},
	}
	return app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		AuthHandler:  auth.NewHandler(logger, auth.NewService(nil, nil)),
		RolesHandler: roles.NewHandler(logger, roles.NewService(stubRoles{})),
		Session: rbac.Middleware{
			Resolver: resolver,
			Engine:   rbac.NewEngine(rbac.DefaultSuperAdminRole, "/api", true),
			Enforce:  true,
			Logger:   logger,
		},
		Metrics: observability.NewMetrics(),
	})
}

func TestRouterAuthorization(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		name   string
		token  string
		path   string
		status int
	}{
		{name: "missing token", path: "/api/role", status: http.StatusUnauthorized},
		{name: "unknown token", token: "forged", path: "/api/role", status: http.StatusUnauthorized},
		{name: "super admin", token: "root", path: "/api/role/1", status: http.StatusOK},
		{name: "granted atom", token: "reader", path: "/api/role", status: http.StatusOK},
		{name: "atom not granted", token: "reader", path: "/api/role/1", status: http.StatusUnauthorized},
		{name: "no roles", token: "nobody", path: "/api/role", status: http.StatusUnauthorized},
		{name: "profile needs only authentication", token: "nobody", path: "/api/me", status: http.StatusOK},
		{name: "profile without token", path: "/api/me", status: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.status == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"Authentication failed"}`, rec.Body.String())
			}
		})
	}
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storeadmin_http_requests_total")
}
