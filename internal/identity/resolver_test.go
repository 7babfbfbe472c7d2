package identity

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/storeadmin/internal/shared"
)

type stubLoader struct {
	identities map[int64]Identity
	err        error
	delay      time.Duration
	calls      atomic.Int32
	mu         sync.Mutex
	seen       []int64
}

func (s *stubLoader) LoadIdentity(ctx context.Context, id int64) (Identity, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.seen = append(s.seen, id)
	s.mu.Unlock()
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Identity{}, ctx.Err()
		}
	}
	if s.err != nil {
		return Identity{}, s.err
	}
	ident, ok := s.identities[id]
	if !ok {
		return Identity{}, ErrNotFound
	}
	return ident, nil
}

func sampleIdentity(id int64) Identity {
	return Identity{
		ID:        id,
		Name:      "Ayu",
		Email:     "ayu@example.com",
		Status:    shared.StatusActive,
		RoleNames: []string{"Editor"},
		Roles: []Role{{
			ID:     1,
			Name:   "Editor",
			Status: shared.StatusActive,
			Permissions: []Permission{
				{ID: 10, Name: "getById", Slug: "/:id", Method: "GET", Group: &Group{ID: 3, Name: "Brand", Slug: "brand"}},
			},
		}},
	}
}

func newTestResolver(t *testing.T, loader Loader, timeout time.Duration) (*Resolver, *Tokens) {
	t.Helper()
	tokens, err := NewTokens("secret", time.Hour)
	require.NoError(t, err)
	return NewResolver(tokens, loader, timeout), tokens
}

func issue(t *testing.T, tokens *Tokens, subject string) string {
	t.Helper()
	raw, _, err := tokens.Issue(subject)
	require.NoError(t, err)
	return raw
}

func TestResolveLoadsIdentity(t *testing.T) {
	loader := &stubLoader{identities: map[int64]Identity{7: sampleIdentity(7)}}
	resolver, tokens := newTestResolver(t, loader, 0)

	ident, err := resolver.Resolve(context.Background(), issue(t, tokens, "7"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), ident.ID)
	require.Len(t, ident.Roles, 1)
	assert.Equal(t, "brand", ident.Roles[0].Permissions[0].Group.Slug)
	assert.Equal(t, []int64{7}, loader.seen)
}

func TestResolveFailuresAreUniform(t *testing.T) {
	wrongSecret, err := NewTokens("other", time.Hour)
	require.NoError(t, err)
	expiredTokens, err := NewTokens("secret", time.Minute)
	require.NoError(t, err)
	expiredTokens.now = func() time.Time { return time.Now().Add(-time.Hour) }

	cases := []struct {
		name   string
		loader *stubLoader
		token  func(t *testing.T, tokens *Tokens) string
		reason string
	}{
		{
			name:   "empty token",
			loader: &stubLoader{},
			token:  func(t *testing.T, _ *Tokens) string { return "  " },
			reason: ReasonMissingToken,
		},
		{
			name:   "wrong secret",
			loader: &stubLoader{},
			token:  func(t *testing.T, _ *Tokens) string { return issue(t, wrongSecret, "7") },
			reason: ReasonInvalidToken,
		},
		{
			name:   "expired",
			loader: &stubLoader{},
			token:  func(t *testing.T, _ *Tokens) string { return issue(t, expiredTokens, "7") },
			reason: ReasonInvalidToken,
		},
		{
			name:   "non numeric subject",
			loader: &stubLoader{},
			token:  func(t *testing.T, tokens *Tokens) string { return issue(t, tokens, "5f1b2c") },
			reason: ReasonInvalidSubject,
		},
		{
			name:   "inactive or deleted admin",
			loader: &stubLoader{identities: map[int64]Identity{}},
			token:  func(t *testing.T, tokens *Tokens) string { return issue(t, tokens, "7") },
			reason: ReasonNotFound,
		},
		{
			name:   "storage failure",
			loader: &stubLoader{err: errors.New("connection refused")},
			token:  func(t *testing.T, tokens *Tokens) string { return issue(t, tokens, "7") },
			reason: ReasonLoadFailed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resolver, tokens := newTestResolver(t, tc.loader, 0)
			_, err := resolver.Resolve(context.Background(), tc.token(t, tokens))
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrAuthentication)
			assert.Equal(t, shared.ErrAuthentication.Error(), err.Error())
			assert.Equal(t, tc.reason, ReasonOf(err))
		})
	}
}

func TestResolveTimesOut(t *testing.T) {
	loader := &stubLoader{identities: map[int64]Identity{7: sampleIdentity(7)}, delay: time.Second}
	resolver, tokens := newTestResolver(t, loader, 20*time.Millisecond)

	_, err := resolver.Resolve(context.Background(), issue(t, tokens, strconv.Itoa(7)))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAuthentication)
	assert.Equal(t, ReasonTimeout, ReasonOf(err))
}

func TestReasonOfForeignError(t *testing.T) {
	assert.Empty(t, ReasonOf(errors.New("x")))
	assert.Empty(t, ReasonOf(nil))
}
