// Package catalog persists the permission catalog and keeps it reconciled
// with the route sources.
package catalog

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound indicates that the requested record does not exist.
	ErrNotFound = errors.New("catalog: not found")
	// ErrSyncQueued is returned when a reconciliation run is already queued.
	ErrSyncQueued = errors.New("catalog: sync already queued")
)

// PermissionGroup is the category of atoms derived from one route file.
type PermissionGroup struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Permission is one (method, path pattern) atom.
type Permission struct {
	ID        int64            `json:"id"`
	GroupID   *int64           `json:"permission_group_id"`
	Name      string           `json:"name"`
	Slug      string           `json:"slug"`
	Method    string           `json:"method"`
	CreatedAt time.Time        `json:"created_at"`
	DeletedAt *time.Time       `json:"deleted_at,omitempty"`
	Group     *PermissionGroup `json:"permission_group,omitempty"`
}

// GroupWithPermissions is the admin listing shape.
type GroupWithPermissions struct {
	PermissionGroup
	Permissions []Permission `json:"permissions"`
}

// GroupResult lists the permissions created for one group during a run.
type GroupResult struct {
	Slug    string   `json:"permission_group"`
	Created []string `json:"permissions"`
}

// ReconciliationError isolates a storage failure to one resource.
type ReconciliationError struct {
	Slug string
	Err  error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("catalog: reconcile %s: %v", e.Slug, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// Report summarises one reconciliation run.
type Report struct {
	CreatedGroups []PermissionGroup      `json:"created_groups"`
	GroupsErr     error                  `json:"-"`
	Groups        []GroupResult          `json:"groups"`
	Unmigrated    []string               `json:"unmigrated"`
	Failures      []*ReconciliationError `json:"-"`
}

// CreatedPermissions counts permissions created across all groups.
func (r Report) CreatedPermissions() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Created)
	}
	return n
}
