package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence for the permission catalog.
type Repository interface {
	ListGroupSlugs(ctx context.Context) ([]string, error)
	CreateGroups(ctx context.Context, groups []PermissionGroup) ([]PermissionGroup, error)
	FindGroupBySlug(ctx context.Context, slug string) (PermissionGroup, error)
	PermissionExists(ctx context.Context, groupID int64, method, slug string) (bool, error)
	CreatePermission(ctx context.Context, perm Permission) (bool, error)
	ListGroups(ctx context.Context) ([]PermissionGroup, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListGroupSlugs returns every group slug, soft-deleted groups included.
func (r *PGRepository) ListGroupSlugs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT slug FROM permission_groups`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list group slugs: %w", err)
	}
	slugs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("catalog: scan group slugs: %w", err)
	}
	return slugs, nil
}

// CreateGroups inserts groups in one statement. Slugs that appeared since the
// caller's diff are left untouched and omitted from the result.
func (r *PGRepository) CreateGroups(ctx context.Context, groups []PermissionGroup) ([]PermissionGroup, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	names := make([]string, len(groups))
	slugs := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
		slugs[i] = g.Slug
	}
	rows, err := r.pool.Query(ctx, `
		INSERT INTO permission_groups (name, slug)
		SELECT n, s FROM unnest($1::text[], $2::text[]) AS t(n, s)
		ON CONFLICT (slug) DO NOTHING
		RETURNING id, name, slug, created_at`, names, slugs)
	if err != nil {
		return nil, fmt.Errorf("catalog: create groups: %w", err)
	}
	created, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (PermissionGroup, error) {
		var g PermissionGroup
		err := row.Scan(&g.ID, &g.Name, &g.Slug, &g.CreatedAt)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: scan created groups: %w", err)
	}
	return created, nil
}

// FindGroupBySlug fetches a group by slug.
func (r *PGRepository) FindGroupBySlug(ctx context.Context, slug string) (PermissionGroup, error) {
	var (
		g       PermissionGroup
		deleted pgtype.Timestamptz
	)
	err := r.pool.QueryRow(ctx, `SELECT id, name, slug, created_at, deleted_at FROM permission_groups WHERE slug = $1`, slug).
		Scan(&g.ID, &g.Name, &g.Slug, &g.CreatedAt, &deleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PermissionGroup{}, ErrNotFound
		}
		return PermissionGroup{}, fmt.Errorf("catalog: find group %s: %w", slug, err)
	}
	g.DeletedAt = timePtr(deleted)
	return g, nil
}

// PermissionExists reports whether (group, method, slug) is already stored.
func (r *PGRepository) PermissionExists(ctx context.Context, groupID int64, method, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM permissions
			WHERE permission_group_id = $1 AND method = $2 AND slug = $3
		)`, groupID, method, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("catalog: check permission: %w", err)
	}
	return exists, nil
}

// CreatePermission inserts a permission. It returns false when the unique
// (group, method, slug) index already holds the row.
func (r *PGRepository) CreatePermission(ctx context.Context, perm Permission) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO permissions (permission_group_id, name, slug, method)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT uq_permissions_group_method_slug DO NOTHING`,
		perm.GroupID, perm.Name, perm.Slug, perm.Method)
	if err != nil {
		return false, fmt.Errorf("catalog: create permission: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListGroups returns non-deleted groups, newest first.
func (r *PGRepository) ListGroups(ctx context.Context) ([]PermissionGroup, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, slug, created_at
		FROM permission_groups
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list groups: %w", err)
	}
	defer rows.Close()
	var groups []PermissionGroup
	for rows.Next() {
		var g PermissionGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// ListPermissions returns non-deleted permissions with their owning group.
func (r *PGRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.permission_group_id, p.name, p.slug, p.method, p.created_at,
		       g.id, g.name, g.slug, g.created_at
		FROM permissions p
		LEFT JOIN permission_groups g ON g.id = p.permission_group_id
		WHERE p.deleted_at IS NULL
		ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list permissions: %w", err)
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var (
			p        Permission
			groupID  pgtype.Int8
			gID      pgtype.Int8
			gName    pgtype.Text
			gSlug    pgtype.Text
			gCreated pgtype.Timestamptz
		)
		if err := rows.Scan(&p.ID, &groupID, &p.Name, &p.Slug, &p.Method, &p.CreatedAt, &gID, &gName, &gSlug, &gCreated); err != nil {
			return nil, fmt.Errorf("catalog: scan permission: %w", err)
		}
		if groupID.Valid {
			id := groupID.Int64
			p.GroupID = &id
		}
		if gID.Valid {
			p.Group = &PermissionGroup{ID: gID.Int64, Name: gName.String, Slug: gSlug.String, CreatedAt: gCreated.Time}
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

var _ Repository = (*PGRepository)(nil)
