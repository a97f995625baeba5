// Package rbac holds the static role to permission table.
package rbac

import (
	"sort"
	"strings"
)

type Role string

const (
	RoleTorcedor        Role = "torcedor"
	RoleSocioTorcedor   Role = "socio_torcedor"
	RoleAdminTime       Role = "admin_time"
	RoleOrganizadorLiga Role = "organizador_liga"
	RoleArbitro         Role = "arbitro"
	RoleSuperAdmin      Role = "super_admin"
)

// LeastPrivileged is the role unknown role strings collapse to.
const LeastPrivileged = RoleTorcedor

type Permission string

const (
	PermProfileRead       Permission = "profile:read"
	PermProfileUpdate     Permission = "profile:update"
	PermStoreBuy          Permission = "store:buy"
	PermStoreOneClick     Permission = "store:one_click_checkout"
	PermStoreDiscounts    Permission = "store:member_discounts"
	PermMatchesView       Permission = "matches:view"
	PermMatchesReport     Permission = "matches:report"
	PermTeamManage        Permission = "team:manage"
	PermMembersManage     Permission = "members:manage"
	PermProductsManage    Permission = "products:manage"
	PermOrdersManage      Permission = "orders:manage"
	PermSponsorsManage    Permission = "sponsors:manage"
	PermLeaguesManage     Permission = "leagues:manage"
	PermSettingsView      Permission = "settings:view"
	PermSettingsManage    Permission = "settings:manage"
	PermSettingsAudit     Permission = "settings:audit"
	PermSessionsManage    Permission = "sessions:manage"
	PermConsentsView      Permission = "consents:view"
	PermPlatformTenants   Permission = "platform:tenants"
	PermPlatformUsers     Permission = "platform:users"
	PermBroadcastManage   Permission = "broadcast:manage"
	PermNotificationsSend Permission = "notifications:send"
)

var aliases = map[string]Role{
	"admin":       RoleAdminTime,
	"organizador": RoleOrganizadorLiga,
}

var fanPermissions = []Permission{
	PermProfileRead,
	PermProfileUpdate,
	PermStoreBuy,
	PermMatchesView,
}

var teamAdminPermissions = []Permission{
	PermProfileRead,
	PermProfileUpdate,
	PermStoreBuy,
	PermMatchesView,
	PermTeamManage,
	PermMembersManage,
	PermProductsManage,
	PermOrdersManage,
	PermSponsorsManage,
	PermSettingsView,
	PermSettingsManage,
	PermSettingsAudit,
	PermSessionsManage,
	PermConsentsView,
	PermBroadcastManage,
	PermNotificationsSend,
}

var table = map[Role][]Permission{
	RoleTorcedor: fanPermissions,
	RoleSocioTorcedor: append(append([]Permission{}, fanPermissions...),
		PermStoreOneClick,
		PermStoreDiscounts,
	),
	RoleAdminTime: teamAdminPermissions,
	RoleOrganizadorLiga: {
		PermProfileRead,
		PermProfileUpdate,
		PermMatchesView,
		PermMatchesReport,
		PermLeaguesManage,
		PermSettingsView,
		PermSettingsManage,
		PermBroadcastManage,
		PermNotificationsSend,
	},
	RoleArbitro: {
		PermProfileRead,
		PermProfileUpdate,
		PermMatchesView,
		PermMatchesReport,
	},
	RoleSuperAdmin: append(append([]Permission{}, teamAdminPermissions...),
		PermMatchesReport,
		PermLeaguesManage,
		PermPlatformTenants,
		PermPlatformUsers,
	),
}

// ParseRole resolves legacy aliases and falls back to the least privileged
// role for anything it does not recognise.
func ParseRole(value string) Role {
	normalized := Role(strings.ToLower(strings.TrimSpace(value)))
	if canonical, ok := aliases[string(normalized)]; ok {
		return canonical
	}
	if _, ok := table[normalized]; ok {
		return normalized
	}
	return LeastPrivileged
}

func (r Role) Valid() bool {
	_, ok := table[r]
	return ok
}

// PermissionsFor returns a fresh, sorted copy of the role's permission set.
func PermissionsFor(role Role) []Permission {
	perms, ok := table[ParseRole(string(role))]
	if !ok {
		perms = table[LeastPrivileged]
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func Has(role Role, permission Permission) bool {
	for _, p := range table[ParseRole(string(role))] {
		if p == permission {
			return true
		}
	}
	return false
}

func Strings(perms []Permission) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, string(p))
	}
	return out
}

// IsTenantAdmin reports whether the role administers a tenant's back office.
func IsTenantAdmin(role Role) bool {
	switch ParseRole(string(role)) {
	case RoleAdminTime, RoleSuperAdmin:
		return true
	}
	return false
}
