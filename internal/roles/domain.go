package roles

import (
	"errors"
	"time"
)

// ErrNotFound indicates that the requested role does not exist.
var ErrNotFound = errors.New("roles: not found")

// Permission is a permission granted by a role, flattened for display.
type Permission struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Method    string `json:"method"`
	GroupSlug string `json:"permission_group,omitempty"`
}

// Role represents a role with its ordered permissions.
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	Permissions []Permission `json:"permissions"`
}

// RoleListFilters narrows ListRoles.
type RoleListFilters struct {
	Status string
}
