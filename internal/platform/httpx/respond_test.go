package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) ProblemDetail {
	t.Helper()
	var pd ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pd))
	return pd
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"not found", fmt.Errorf("roles: get: %w", ErrNotFound), http.StatusNotFound, "roles: get: resource not found"},
		{"deadline", fmt.Errorf("identity: load: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, "request timed out"},
		{"unknown", errors.New("pq: relation does not exist"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, tc.err)
			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
			pd := decodeProblem(t, rr)
			assert.Equal(t, tc.status, pd.Status)
			assert.Equal(t, tc.detail, pd.Detail)
			assert.Equal(t, "about:blank", pd.Type)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var target struct {
		Email string `json:"email"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c"}`))
	require.NoError(t, DecodeJSON(req, &target))
	assert.Equal(t, "a@b.c", target.Email)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a"}{"email":"b"}`))
	assert.Error(t, DecodeJSON(req, &target))

	big := `{"email":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	assert.Error(t, DecodeJSON(req, &target))
}
