package rbac

import (
	"strings"

	"github.com/odyssey-erp/storeadmin/internal/identity"
)

// DefaultSuperAdminRole is the role name that bypasses every check.
const DefaultSuperAdminRole = "Super Admin"

// Engine evaluates identities against method and path. It holds no state
// beyond its configuration and is safe for concurrent use.
type Engine struct {
	// SuperAdminRole is matched against Identity.RoleNames. Empty disables
	// the bypass.
	SuperAdminRole string
	// MountPrefix is removed from request paths before matching.
	MountPrefix string
	// GroupScoped also matches permission slugs qualified by their group
	// slug, so "/:id" in group "brand" covers "/brand/42".
	GroupScoped bool
}

// NewEngine constructs an Engine.
func NewEngine(superAdminRole, mountPrefix string, groupScoped bool) *Engine {
	return &Engine{SuperAdminRole: superAdminRole, MountPrefix: mountPrefix, GroupScoped: groupScoped}
}

// Allow reports whether ident may call method on path.
func (e *Engine) Allow(ident identity.Identity, method, path string) bool {
	return e.Decide(ident, method, path).Allowed
}

// Decide evaluates roles in assignment order and permissions in load order;
// the first match allows. A permission with no group denies the whole
// request as soon as it is reached.
func (e *Engine) Decide(ident identity.Identity, method, path string) Decision {
	if e.SuperAdminRole != "" && ident.HasRoleName(e.SuperAdminRole) {
		return Decision{Allowed: true, Reason: ReasonSuperAdmin}
	}
	if len(ident.Roles) == 0 {
		return Decision{Reason: ReasonNoRoles}
	}
	method = strings.ToUpper(method)
	path = stripPrefix(path, e.MountPrefix)

	for _, role := range ident.Roles {
		for _, perm := range role.Permissions {
			if perm.Group == nil {
				return Decision{Reason: ReasonOrphanPermission, Permission: perm.Name}
			}
			if perm.Method != method {
				continue
			}
			pattern := perm.Slug
			if e.GroupScoped {
				// group-relative slugs only ever match under their own group
				if scoped, ok := qualify(perm.Group.Slug, perm.Slug); ok {
					pattern = scoped
				}
			}
			if MatchPath(pattern, path) {
				return Decision{Allowed: true, Reason: ReasonMatched, Permission: perm.Name}
			}
		}
	}
	return Decision{Reason: ReasonNoMatch}
}

// qualify prefixes slug with the group segment unless it already starts
// with it.
func qualify(group, slug string) (string, bool) {
	if group == "" {
		return "", false
	}
	segs := segments(slug)
	if len(segs) > 0 && segs[0] == group {
		return "", false
	}
	if len(segs) == 0 {
		return "/" + group, true
	}
	return "/" + group + "/" + strings.Join(segs, "/"), true
}
