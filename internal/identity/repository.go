package identity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/storeadmin/internal/shared"
)

// Loader fetches an identity snapshot by admin id.
type Loader interface {
	LoadIdentity(ctx context.Context, id int64) (Identity, error)
}

// PGRepository loads identities from PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed loader.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// The whole role -> permission -> group graph comes back in one round trip,
// one row per (role, permission) pair, in assignment order.
const loadIdentitySQL = `
SELECT a.id, a.name, a.email, a.status, a.roles_name,
       r.id, r.name, r.status,
       p.id, p.name, p.slug, p.method,
       g.id, g.name, g.slug
FROM admins a
LEFT JOIN admin_roles ar ON ar.admin_id = a.id
LEFT JOIN roles r ON r.id = ar.role_id AND r.deleted_at IS NULL
LEFT JOIN role_permissions rp ON rp.role_id = r.id
LEFT JOIN permissions p ON p.id = rp.permission_id AND p.deleted_at IS NULL
LEFT JOIN permission_groups g ON g.id = p.permission_group_id
WHERE a.id = $1 AND a.status = $2 AND a.deleted_at IS NULL
ORDER BY ar.position, ar.role_id, rp.position, rp.permission_id`

// LoadIdentity returns the active, non-deleted admin with its role graph.
func (r *PGRepository) LoadIdentity(ctx context.Context, id int64) (Identity, error) {
	rows, err := r.pool.Query(ctx, loadIdentitySQL, id, shared.StatusActive)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: load %d: %w", id, err)
	}
	defer rows.Close()

	var (
		ident     Identity
		found     bool
		roleIndex = map[int64]int{}
	)
	for rows.Next() {
		var (
			roleID, permID, groupID        pgtype.Int8
			roleName, roleStatus           pgtype.Text
			permName, permSlug, permMethod pgtype.Text
			groupName, groupSlug           pgtype.Text
		)
		if err := rows.Scan(
			&ident.ID, &ident.Name, &ident.Email, &ident.Status, &ident.RoleNames,
			&roleID, &roleName, &roleStatus,
			&permID, &permName, &permSlug, &permMethod,
			&groupID, &groupName, &groupSlug,
		); err != nil {
			return Identity{}, fmt.Errorf("identity: scan %d: %w", id, err)
		}
		found = true
		if !roleID.Valid {
			continue
		}
		idx, ok := roleIndex[roleID.Int64]
		if !ok {
			idx = len(ident.Roles)
			roleIndex[roleID.Int64] = idx
			ident.Roles = append(ident.Roles, Role{
				ID:          roleID.Int64,
				Name:        roleName.String,
				Status:      roleStatus.String,
				Permissions: []Permission{},
			})
		}
		if !permID.Valid {
			continue
		}
		perm := Permission{
			ID:     permID.Int64,
			Name:   permName.String,
			Slug:   permSlug.String,
			Method: permMethod.String,
		}
		if groupID.Valid {
			perm.Group = &Group{ID: groupID.Int64, Name: groupName.String, Slug: groupSlug.String}
		}
		ident.Roles[idx].Permissions = append(ident.Roles[idx].Permissions, perm)
	}
	if err := rows.Err(); err != nil {
		return Identity{}, fmt.Errorf("identity: load %d: %w", id, err)
	}
	if !found {
		return Identity{}, ErrNotFound
	}
	if ident.RoleNames == nil {
		ident.RoleNames = []string{}
	}
	return ident, nil
}

var _ Loader = (*PGRepository)(nil)
