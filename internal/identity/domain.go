// Package identity verifies bearer tokens and loads the caller's admin
// record together with its roles, permissions and permission groups.
package identity

import (
	"context"
	"errors"
	"slices"

	"github.com/odyssey-erp/storeadmin/internal/shared"
)

// ErrNotFound indicates there is no active admin with the requested id.
var ErrNotFound = errors.New("identity: not found")

// Failure reasons attached to an AuthError.
const (
	ReasonMissingToken   = "missing_token"
	ReasonInvalidToken   = "invalid_token"
	ReasonInvalidSubject = "invalid_subject"
	ReasonNotFound       = "identity_not_found"
	ReasonLoadFailed     = "identity_load_failed"
	ReasonTimeout        = "identity_timeout"
)

// AuthError reports why authentication failed. It always matches
// shared.ErrAuthentication and renders the same message regardless of cause;
// the reason and wrapped error are meant for logs only.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string { return shared.ErrAuthentication.Error() }

func (e *AuthError) Unwrap() error { return e.Err }

// Is makes every AuthError match shared.ErrAuthentication.
func (e *AuthError) Is(target error) bool { return target == shared.ErrAuthentication }

// ReasonOf extracts the failure reason from err, or "" if err is not an AuthError.
func ReasonOf(err error) string {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Reason
	}
	return ""
}

// Group is the permission group a permission belongs to.
type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Permission is a (method, path pattern) atom granted through a role.
type Permission struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Method string `json:"method"`
	Group  *Group `json:"group,omitempty"`
}

// Role is a named, ordered list of permissions.
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Status      string       `json:"status"`
	Permissions []Permission `json:"permissions"`
}

// Identity is the resolved snapshot of an authenticated admin. It is built
// once per request (or per cache fill) and never mutated afterwards.
type Identity struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Status    string   `json:"status"`
	RoleNames []string `json:"roles_name"`
	Roles     []Role   `json:"roles"`
}

// HasRoleName reports whether the cached role names contain name.
func (i Identity) HasRoleName(name string) bool {
	return slices.Contains(i.RoleNames, name)
}

// FromContext returns the identity attached by the session middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	ident, ok := shared.IdentityFromContext(ctx).(Identity)
	return ident, ok
}
