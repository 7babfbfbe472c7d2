package roles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectRolesSQL = `
SELECT r.id, r.name, r.status, r.created_at,
       p.id, p.name, p.slug, p.method, g.slug
FROM roles r
LEFT JOIN role_permissions rp ON rp.role_id = r.id
LEFT JOIN permissions p ON p.id = rp.permission_id AND p.deleted_at IS NULL
LEFT JOIN permission_groups g ON g.id = p.permission_group_id
WHERE r.deleted_at IS NULL`

// ListRoles returns non-deleted roles ordered by name.
func (r *Repository) ListRoles(ctx context.Context, filters RoleListFilters) ([]Role, error) {
	query := selectRolesSQL
	args := []any{}
	if filters.Status != "" {
		query += ` AND r.status = $1`
		args = append(args, filters.Status)
	}
	query += ` ORDER BY r.name, r.id, rp.position, rp.permission_id`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("roles: list: %w", err)
	}
	return collectRoles(rows)
}

// GetRole fetches one role by id.
func (r *Repository) GetRole(ctx context.Context, id int64) (Role, error) {
	rows, err := r.pool.Query(ctx, selectRolesSQL+` AND r.id = $1 ORDER BY rp.position, rp.permission_id`, id)
	if err != nil {
		return Role{}, fmt.Errorf("roles: get %d: %w", id, err)
	}
	roles, err := collectRoles(rows)
	if err != nil {
		return Role{}, err
	}
	if len(roles) == 0 {
		return Role{}, ErrNotFound
	}
	return roles[0], nil
}

func collectRoles(rows pgx.Rows) ([]Role, error) {
	defer rows.Close()
	roles := []Role{}
	index := map[int64]int{}
	for rows.Next() {
		var (
			role                  Role
			permID                pgtype.Int8
			permName, permSlug    pgtype.Text
			permMethod, groupSlug pgtype.Text
		)
		if err := rows.Scan(&role.ID, &role.Name, &role.Status, &role.CreatedAt,
			&permID, &permName, &permSlug, &permMethod, &groupSlug); err != nil {
			return nil, fmt.Errorf("roles: scan: %w", err)
		}
		idx, ok := index[role.ID]
		if !ok {
			idx = len(roles)
			index[role.ID] = idx
			role.Permissions = []Permission{}
			roles = append(roles, role)
		}
		if permID.Valid {
			roles[idx].Permissions = append(roles[idx].Permissions, Permission{
				ID:        permID.Int64,
				Name:      permName.String,
				Slug:      permSlug.String,
				Method:    permMethod.String,
				GroupSlug: groupSlug.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles: rows: %w", err)
	}
	return roles, nil
}
