// Package rbac decides whether a resolved identity may call a route, and
// enforces that decision on HTTP requests.
package rbac

import "errors"

// ErrAuthorizationDenied is returned when an identity holds no permission
// covering the request.
var ErrAuthorizationDenied = errors.New("rbac: authorization denied")

// Decision reasons.
const (
	ReasonSuperAdmin       = "super_admin"
	ReasonMatched          = "matched"
	ReasonNoRoles          = "no_roles"
	ReasonOrphanPermission = "orphan_permission"
	ReasonNoMatch          = "no_match"
)

// Decision is the outcome of one authorization check.
type Decision struct {
	Allowed bool
	Reason  string
	// Permission is the name of the matching permission when Reason is
	// ReasonMatched.
	Permission string
}

// Err returns nil for an allow and ErrAuthorizationDenied otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return ErrAuthorizationDenied
}
