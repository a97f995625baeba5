package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placar/internal/rbac"
)

func TestParseRoleResolvesAliases(t *testing.T) {
	assert.Equal(t, rbac.RoleAdminTime, rbac.ParseRole("admin"))
	assert.Equal(t, rbac.RoleOrganizadorLiga, rbac.ParseRole("organizador"))
	assert.Equal(t, rbac.RoleSuperAdmin, rbac.ParseRole(" Super_Admin "))
}

func TestParseRoleUnknownFallsBackToFan(t *testing.T) {
	assert.Equal(t, rbac.RoleTorcedor, rbac.ParseRole("root"))
	assert.Equal(t, rbac.RoleTorcedor, rbac.ParseRole(""))
}

func TestPermissionsForUnknownRoleIsLeastPrivileged(t *testing.T) {
	unknown := rbac.PermissionsFor(rbac.Role("hacker"))
	fan := rbac.PermissionsFor(rbac.RoleTorcedor)
	require.Equal(t, fan, unknown)
	assert.NotContains(t, unknown, rbac.PermSettingsManage)
}

func TestPermissionsForAliasMatchesCanonical(t *testing.T) {
	assert.Equal(t, rbac.PermissionsFor(rbac.RoleAdminTime), rbac.PermissionsFor(rbac.Role("admin")))
}

func TestPermissionsForReturnsCopy(t *testing.T) {
	perms := rbac.PermissionsFor(rbac.RoleAdminTime)
	perms[0] = "tampered"
	assert.NotContains(t, rbac.PermissionsFor(rbac.RoleAdminTime), rbac.Permission("tampered"))
}

func TestSocioHasOneClickCheckout(t *testing.T) {
	assert.True(t, rbac.Has(rbac.RoleSocioTorcedor, rbac.PermStoreOneClick))
	assert.False(t, rbac.Has(rbac.RoleTorcedor, rbac.PermStoreOneClick))
}

func TestSettingsManagePermission(t *testing.T) {
	assert.True(t, rbac.Has(rbac.RoleAdminTime, rbac.PermSettingsManage))
	assert.True(t, rbac.Has(rbac.RoleSuperAdmin, rbac.PermSettingsManage))
	assert.True(t, rbac.Has(rbac.RoleOrganizadorLiga, rbac.PermSettingsManage))
	assert.False(t, rbac.Has(rbac.RoleArbitro, rbac.PermSettingsManage))
	assert.False(t, rbac.Has(rbac.RoleSocioTorcedor, rbac.PermSettingsManage))
}

func TestIsTenantAdmin(t *testing.T) {
	assert.True(t, rbac.IsTenantAdmin(rbac.Role("admin")))
	assert.True(t, rbac.IsTenantAdmin(rbac.RoleSuperAdmin))
	assert.False(t, rbac.IsTenantAdmin(rbac.RoleOrganizadorLiga))
}
