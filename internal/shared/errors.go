package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAuthentication covers every credential or identity failure. Callers
	// must not be able to tell which check rejected them.
	ErrAuthentication = errors.New("authentication failed")
)

const (
	// StatusActive marks enabled admins and roles.
	StatusActive = "Active"
	// StatusInactive marks disabled admins and roles.
	StatusInactive = "InActive"
)
