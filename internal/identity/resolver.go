package identity

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds token verification plus identity loading.
const DefaultTimeout = 3 * time.Second

// Resolver turns a bearer token into an Identity snapshot.
type Resolver struct {
	tokens  *Tokens
	loader  Loader
	timeout time.Duration
}

// NewResolver constructs a Resolver. A non-positive timeout selects DefaultTimeout.
func NewResolver(tokens *Tokens, loader Loader, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{tokens: tokens, loader: loader, timeout: timeout}
}

// Resolve verifies token and loads the active admin it names. Every failure
// is an *AuthError matching shared.ErrAuthentication.
func (r *Resolver) Resolve(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, &AuthError{Reason: ReasonMissingToken}
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	subject, err := r.tokens.Verify(token)
	if err != nil {
		return Identity{}, &AuthError{Reason: ReasonInvalidToken, Err: err}
	}
	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || id <= 0 {
		return Identity{}, &AuthError{Reason: ReasonInvalidSubject, Err: err}
	}
	ident, err := r.loader.LoadIdentity(ctx, id)
	switch {
	case err == nil:
		return ident, nil
	case errors.Is(err, ErrNotFound):
		return Identity{}, &AuthError{Reason: ReasonNotFound, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return Identity{}, &AuthError{Reason: ReasonTimeout, Err: err}
	default:
		return Identity{}, &AuthError{Reason: ReasonLoadFailed, Err: err}
	}
}
