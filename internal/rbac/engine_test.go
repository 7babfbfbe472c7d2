package rbac

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odyssey-erp/storeadmin/internal/identity"
)

var brandGroup = &identity.Group{ID: 1, Name: "Brand", Slug: "brand"}

func identityWith(roleNames []string, roles ...identity.Role) identity.Identity {
	return identity.Identity{ID: 1, Name: "Ayu", Status: "Active", RoleNames: roleNames, Roles: roles}
}

func role(name string, perms ...identity.Permission) identity.Role {
	return identity.Role{ID: 1, Name: name, Status: "Active", Permissions: perms}
}

func perm(method, slug string, group *identity.Group) identity.Permission {
	return identity.Permission{Name: method + " " + slug, Method: method, Slug: slug, Group: group}
}

func TestSuperAdminIsAllowedEverywhere(t *testing.T) {
	engine := NewEngine(DefaultSuperAdminRole, "/api", true)
	ident := identityWith([]string{"Editor", "Super Admin"})

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		for _, path := range []string{"/", "/api/brand", "/api/brand/42/extra", "/anything/at/all"} {
			d := engine.Decide(ident, method, path)
			assert.True(t, d.Allowed, "%s %s", method, path)
			assert.Equal(t, ReasonSuperAdmin, d.Reason)
		}
	}
}

func TestSuperAdminBypassCanBeDisabled(t *testing.T) {
	engine := NewEngine("", "", false)
	d := engine.Decide(identityWith([]string{"Super Admin"}), http.MethodGet, "/brand")
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNoRoles, d.Reason)
}

func TestBrandIDPattern(t *testing.T) {
	engine := NewEngine(DefaultSuperAdminRole, "", false)
	ident := identityWith([]string{"Viewer"}, role("Viewer", perm("GET", "/brand/:id", brandGroup)))

	cases := []struct {
		method string
		path   string
		want   bool
	}{
		{"GET", "/brand/42", true},
		{"GET", "/brand/abc", true},
		{"GET", "/brand/42/extra", false},
		{"POST", "/brand/42", false},
		{"get", "/brand/42", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, engine.Allow(ident, tc.method, tc.path), "%s %s", tc.method, tc.path)
	}
}

func TestOrphanPermissionDeniesEvenWhenLaterRoleMatches(t *testing.T) {
	engine := NewEngine(DefaultSuperAdminRole, "", false)
	ident := identityWith([]string{"A", "B"},
		role("A", perm("GET", "/voucher", nil)),
		role("B", perm("GET", "/brand/:id", brandGroup)),
	)

	d := engine.Decide(ident, http.MethodGet, "/brand/42")
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonOrphanPermission, d.Reason)
	assert.ErrorIs(t, d.Err(), ErrAuthorizationDenied)
}

func TestEarlierMatchWinsBeforeOrphan(t *testing.T) {
	engine := NewEngine(DefaultSuperAdminRole, "", false)
	ident := identityWith([]string{"B", "A"},
		role("B", perm("GET", "/brand/:id", brandGroup)),
		role("A", perm("GET", "/voucher", nil)),
	)

	d := engine.Decide(ident, http.MethodGet, "/brand/42")
	assert.True(t, d.Allowed)
	assert.Equal(t, ReasonMatched, d.Reason)
	assert.Equal(t, "GET /brand/:id", d.Permission)
	assert.NoError(t, d.Err())
}

func TestZeroRolesDenied(t *testing.T) {
	engine := NewEngine(DefaultSuperAdminRole, "", true)
	d := engine.Decide(identityWith(nil), http.MethodGet, "/")
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNoRoles, d.Reason)
}

func TestRoleWithoutPermissionsIsNoMatch(t *testing.T) {
	engine := NewEngine(DefaultSuperAdminRole, "", true)
	d := engine.Decide(identityWith([]string{"Empty"}, role("Empty")), http.MethodGet, "/brand")
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNoMatch, d.Reason)
}

func TestMountPrefixIsStripped(t *testing.T) {
	engine := NewEngine(DefaultSuperAdminRole, "/api", false)
	ident := identityWith([]string{"Viewer"}, role("Viewer", perm("GET", "/brand/:id", brandGroup)))

	assert.True(t, engine.Allow(ident, "GET", "/api/brand/42"))
	assert.True(t, engine.Allow(ident, "GET", "/brand/42"))
	assert.False(t, engine.Allow(ident, "GET", "/apibrand/42"))
}

func TestGroupScopedMatchesResourceRelativeSlugs(t *testing.T) {
	ident := identityWith([]string{"Viewer"}, role("Viewer",
		perm("GET", "/", brandGroup),
		perm("GET", "/:id", brandGroup),
		perm("PUT", "/brand/:id", brandGroup),
	))

	scoped := NewEngine(DefaultSuperAdminRole, "/api", true)
	assert.True(t, scoped.Allow(ident, "GET", "/api/brand"))
	assert.True(t, scoped.Allow(ident, "GET", "/api/brand/42"))
	assert.True(t, scoped.Allow(ident, "PUT", "/api/brand/42"))
	assert.False(t, scoped.Allow(ident, "PUT", "/api/brand/brand/42"))
	assert.False(t, scoped.Allow(ident, "GET", "/api/category/42"))
	assert.False(t, scoped.Allow(ident, "DELETE", "/api/brand/42"))

	literal := NewEngine(DefaultSuperAdminRole, "/api", false)
	assert.False(t, literal.Allow(ident, "GET", "/api/brand/42"))
	assert.True(t, literal.Allow(ident, "GET", "/api/42"))
}

func TestGroupScopedDoesNotLeakAcrossGroups(t *testing.T) {
	roleGroup := &identity.Group{ID: 3, Name: "Role", Slug: "role"}
	ident := identityWith([]string{"Role Reader"}, role("Role Reader", perm("GET", "/:id", roleGroup)))
	engine := NewEngine(DefaultSuperAdminRole, "/api", true)

	for _, path := range []string{"/api/permission", "/api/permission_group", "/api/brand", "/api/42"} {
		d := engine.Decide(ident, http.MethodGet, path)
		assert.False(t, d.Allowed, path)
		assert.Equal(t, ReasonNoMatch, d.Reason, path)
	}
	assert.True(t, engine.Allow(ident, http.MethodGet, "/api/role/7"))
	assert.False(t, engine.Allow(ident, http.MethodGet, "/api/role"))
}

func TestQualify(t *testing.T) {
	cases := []struct {
		group, slug, want string
		ok                bool
	}{
		{"brand", "/", "/brand", true},
		{"brand", "/:id", "/brand/:id", true},
		{"brand", "/brand/:id", "", false},
		{"brand", "/:id/variant", "/brand/:id/variant", true},
		{"", "/:id", "", false},
	}
	for _, tc := range cases {
		got, ok := qualify(tc.group, tc.slug)
		assert.Equal(t, tc.ok, ok, tc.slug)
		assert.Equal(t, tc.want, got, tc.slug)
	}
}
