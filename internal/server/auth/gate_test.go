package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_Authenticate(t *testing.T) {
	s := newTestSigner(t)
	g := NewGate(s, logging.Nop{})
	ctx := context.Background()

	valid, _, err := s.SignAccess(AccessClaims{UserID: "u1", Role: models.RoleOrganization, OrganizationID: "o1"}, time.Hour)
	require.NoError(t, err)

	resource, err := s.SignResource("k")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   *Principal
	}{
		{name: "missing header", header: ""},
		{name: "no scheme", header: valid},
		{name: "wrong scheme", header: "Basic " + valid},
		{name: "lowercase scheme", header: "bearer " + valid},
		{name: "empty token", header: "Bearer "},
		{name: "garbage token", header: "Bearer abc"},
		{name: "resource token", header: "Bearer " + resource},
		{
			name:   "valid",
			header: "Bearer " + valid,
			want:   &Principal{UserID: "u1", Role: models.RoleOrganization, OrganizationID: "o1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Authenticate(ctx, tt.header))
		})
	}
}

func TestAuthorize(t *testing.T) {
	user := &Principal{UserID: "u1", Role: models.RoleUser, OrganizationID: "o1"}

	assert.ErrorIs(t, Authorize(nil, models.RoleUser), common.ErrorUnauthorized)
	assert.ErrorIs(t, Authorize(nil), common.ErrorUnauthorized)
	assert.ErrorIs(t, Authorize(user, models.RoleSuperAdmin), common.ErrForbidden)
	assert.NoError(t, Authorize(user, models.RoleOrganization, models.RoleUser))
	assert.NoError(t, Authorize(user))
}

func TestCheckTenantAndOwnership(t *testing.T) {
	p := &Principal{UserID: "u1", Role: models.RoleUser, OrganizationID: "o1"}
	admin := &Principal{Username: "root", Role: models.RoleSuperAdmin}

	assert.NoError(t, CheckTenant(p, "o1"))
	assert.ErrorIs(t, CheckTenant(p, "o2"), common.ErrForbidden)
	assert.ErrorIs(t, CheckTenant(admin, ""), common.ErrForbidden)
	assert.ErrorIs(t, CheckTenant(nil, "o1"), common.ErrorUnauthorized)

	assert.NoError(t, CheckOwnership(p, "o1", "u1"))
	assert.ErrorIs(t, CheckOwnership(p, "o1", "u2"), common.ErrForbidden, "same tenant, other creator")
	assert.ErrorIs(t, CheckOwnership(p, "o2", "u1"), common.ErrForbidden, "same creator id, other tenant")
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))

	p := &Principal{UserID: "u1"}
	assert.Same(t, p, FromContext(NewContext(ctx, p)))
}
