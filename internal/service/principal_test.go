package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placar/internal/rbac"
	"placar/internal/service"
	"placar/internal/utils"
)

func TestResolveTenant(t *testing.T) {
	cases := []struct {
		name      string
		principal service.Principal
		want      string
	}{
		{"super admin", service.Principal{Role: rbac.RoleSuperAdmin, TenantID: "club-1"}, "global"},
		{"team admin", service.Principal{Role: rbac.RoleAdminTime, TenantID: "club-1"}, "club-1"},
		{"league organiser", service.Principal{Role: rbac.RoleOrganizadorLiga, TenantID: "club-1", LeagueID: "liga-1"}, "liga-1"},
		{"organiser without league", service.Principal{Role: rbac.RoleOrganizadorLiga, TenantID: "club-1"}, "global"},
		{"fan", service.Principal{Role: rbac.RoleTorcedor, TenantID: "club-7"}, "club-7"},
		{"fan without team", service.Principal{Role: rbac.RoleSocioTorcedor}, "global"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, service.ResolveTenant(tc.principal))
		})
	}
}

func TestPrincipalFromClaimsRecomputesPermissions(t *testing.T) {
	claims := &utils.AccessClaims{
		UserID:      uuid.NewString(),
		Role:        "admin",
		TenantID:    "club-1",
		Permissions: []string{"platform:users"},
	}
	p, err := service.PrincipalFromClaims(claims, "raw")
	require.NoError(t, err)

	assert.Equal(t, rbac.RoleAdminTime, p.Role)
	assert.False(t, p.Can(rbac.PermPlatformUsers))
	assert.True(t, p.Can(rbac.PermSettingsManage))
	assert.Equal(t, uuid.Nil, p.SessionID)
	assert.Equal(t, utils.HashToken("raw"), p.TokenHash)
}

func TestPrincipalFromClaimsRejectsBadIDs(t *testing.T) {
	_, err := service.PrincipalFromClaims(&utils.AccessClaims{UserID: "nope"}, "raw")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = service.PrincipalFromClaims(&utils.AccessClaims{UserID: uuid.NewString(), SessionID: "nope"}, "raw")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}
