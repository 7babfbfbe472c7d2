package roles

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	roles   []Role
	listErr error
	filters RoleListFilters
}

func (m *mockRepository) ListRoles(ctx context.Context, filters RoleListFilters) ([]Role, error) {
	m.filters = filters
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []Role
	for _, role := range m.roles {
		if filters.Status == "" || role.Status == filters.Status {
			out = append(out, role)
		}
	}
	return out, nil
}

func (m *mockRepository) GetRole(ctx context.Context, id int64) (Role, error) {
	for _, role := range m.roles {
		if role.ID == id {
			return role, nil
		}
	}
	return Role{}, ErrNotFound
}

func newRouter(repo RepositoryPort) http.Handler {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(repo))
	r := chi.NewRouter()
	r.Route("/role", h.MountRoutes)
	return r
}

func sampleRoles() []Role {
	return []Role{
		{ID: 1, Name: "Editor", Status: "Active", Permissions: []Permission{
			{ID: 10, Name: "getAll", Slug: "/", Method: "GET", GroupSlug: "brand"},
		}},
		{ID: 2, Name: "Legacy", Status: "InActive", Permissions: []Permission{}},
	}
}

func TestListRoles(t *testing.T) {
	repo := &mockRepository{roles: sampleRoles()}
	rr := httptest.NewRecorder()
	newRouter(repo).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/role/?status=Active", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data []Role `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Editor", body.Data[0].Name)
	assert.Equal(t, "brand", body.Data[0].Permissions[0].GroupSlug)
	assert.Equal(t, "Active", repo.filters.Status)
}

func TestListRolesRejectsUnknownStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	newRouter(&mockRepository{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/role/?status=Deleted", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListRolesStorageError(t *testing.T) {
	rr := httptest.NewRecorder()
	newRouter(&mockRepository{listErr: errors.New("boom")}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/role/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGetRole(t *testing.T) {
	router := newRouter(&mockRepository{roles: sampleRoles()})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/role/2", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Legacy"`)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/role/99", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/role/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
