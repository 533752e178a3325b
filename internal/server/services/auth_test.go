package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	svc     *AuthService
	signer  *auth.Signer
	hasher  *prefixHasher
	rm      *fakeRepoManager
	refresh *memRefresh
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db, _ := newSQLMockDB(t)

	ann := &models.User{
		ID:             "u1",
		Email:          "ann@example.com",
		PasswordHash:   "h:secret1",
		Role:           models.RoleUser,
		OrganizationID: "org-1",
	}
	rm := &fakeRepoManager{
		users:   newFakeUsers(ann),
		orgs:    &fakeOrgs{ids: map[string]bool{"org-1": true}},
		refresh: newMemRefresh(),
	}
	f := &authFixture{
		signer:  newTestSigner(t),
		hasher:  &prefixHasher{},
		rm:      rm,
		refresh: rm.refresh,
	}
	f.svc = NewAuthService(db, rm, nil, f.signer, f.hasher, testConfig(), logging.Nop{})
	f.svc.now = func() time.Time { return testNow }
	return f
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)

	pair, err := f.svc.Login(context.Background(), "  Ann@Example.com ", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, testNow.Add(15*time.Minute), pair.AccessTokenExpiresAt)

	claims, err := f.signer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.Equal(t, "org-1", claims.OrganizationID)

	lk, _, err := auth.SplitRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	stored := f.refresh.byUser["u1"]
	require.NotNil(t, stored)
	assert.Equal(t, lk, stored.LookupKey)
	assert.Equal(t, testNow.Add(7*24*time.Hour), stored.ExpiresAt)
	assert.NotContains(t, stored.SecretHash, lk)

	upd, ok := f.rm.users.updates["u1"]
	require.True(t, ok, "last login not recorded")
	require.NotNil(t, upd.LastLoginAt)
	assert.Equal(t, testNow, *upd.LastLoginAt)
	assert.Nil(t, upd.PasswordHash)
	assert.Nil(t, upd.Role)
}

func TestLogin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	f := newAuthFixture(t)

	_, errUnknown := f.svc.Login(context.Background(), "nobody@example.com", "secret1")
	_, errWrong := f.svc.Login(context.Background(), "ann@example.com", "wrong-pass")

	require.ErrorIs(t, errUnknown, common.ErrInvalidCredentials)
	require.ErrorIs(t, errWrong, common.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
	assert.Equal(t, 2, f.hasher.verified, "unknown email must still run a hash check")
	assert.Empty(t, f.refresh.byUser)
}

func TestLogin_ReplacesPreviousRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first, err := f.svc.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	second, err := f.svc.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, common.ErrInvalidRefreshToken)

	_, err = f.svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestLogin_CollaboratorFaults(t *testing.T) {
	tests := []struct {
		name  string
		fault func(f *authFixture)
	}{
		{"find user", func(f *authFixture) { f.rm.users.findErr = errBoom }},
		{"update last login", func(f *authFixture) { f.rm.users.updateErr = errBoom }},
		{"save refresh", func(f *authFixture) { f.refresh.saveErr = errBoom }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			tt.fault(f)

			pair, err := f.svc.Login(context.Background(), "ann@example.com", "secret1")
			require.ErrorIs(t, err, common.ErrorInternal)
			assert.Nil(t, pair)
			assert.NotContains(t, err.Error(), "boom")
		})
	}
}

func TestAdminLogin(t *testing.T) {
	f := newAuthFixture(t)

	pair, err := f.svc.AdminLogin(context.Background(), "superadmin", "admin-pass")
	require.NoError(t, err)
	assert.Empty(t, pair.RefreshToken)
	assert.Equal(t, testNow.Add(time.Hour), pair.AccessTokenExpiresAt)

	claims, err := f.signer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, claims.Role)
	assert.Equal(t, "superadmin", claims.Username)
	assert.Empty(t, claims.OrganizationID)

	for _, c := range [][2]string{
		{"superadmin", "wrong"},
		{"admin", "admin-pass"},
		{"", ""},
	} {
		_, err := f.svc.AdminLogin(context.Background(), c[0], c[1])
		assert.ErrorIs(t, err, common.ErrInvalidCredentials, "%q/%q", c[0], c[1])
	}
}

func TestAdminLogin_EmptyConfiguredPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.svc.adminPassword = ""

	_, err := f.svc.AdminLogin(context.Background(), "superadmin", "")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestEqualSecret(t *testing.T) {
	tests := []struct {
		name              string
		given, configured string
		want              bool
	}{
		{"same", "superadmin", "superadmin", true},
		{"prefix", "super", "superadmin", false},
		{"longer", "superadmin!", "superadmin", false},
		{"same length", "superadmiN", "superadmin", false},
		{"both empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, equalSecret(tt.given, tt.configured))
		})
	}
}

func TestRegister_Roles(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Register(ctx, "Bob@Example.com", "password", "org-1"))
	require.Len(t, f.rm.users.created, 1)
	bob := f.rm.users.created[0]
	assert.Equal(t, "bob@example.com", bob.Email)
	assert.Equal(t, "h:password", bob.PasswordHash)
	assert.Equal(t, models.RoleUser, bob.Role)
	assert.Equal(t, "org-1", bob.OrganizationID)

	require.NoError(t, f.svc.RegisterOrganization(ctx, "owner@example.com", "password", "org-1"))
	require.Len(t, f.rm.users.created, 2)
	assert.Equal(t, models.RoleOrganization, f.rm.users.created[1].Role)
}

func TestRegister_UnknownOrganizationCreatesNothing(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.Register(context.Background(), "bob@example.com", "password", "org-404")
	require.ErrorIs(t, err, common.ErrUnknownOrganization)
	assert.Empty(t, f.rm.users.created)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Run("pre-check", func(t *testing.T) {
		f := newAuthFixture(t)
		err := f.svc.Register(context.Background(), "ANN@example.com", "password", "org-1")
		require.ErrorIs(t, err, common.ErrDuplicateEmail)
		assert.Empty(t, f.rm.users.created)
	})

	t.Run("unique violation", func(t *testing.T) {
		f := newAuthFixture(t)
		f.rm.users.createErr = common.ErrDuplicateEmail
		err := f.svc.Register(context.Background(), "bob@example.com", "password", "org-1")
		require.ErrorIs(t, err, common.ErrDuplicateEmail)
	})
}

// Input shape is checked by the transport, so the service only answers
// organization, duplicate and storage outcomes.
func TestRegister_ThenLoginWithShortPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	err := f.svc.Register(ctx, "a@x.com", "pw", "org-does-not-exist")
	require.ErrorIs(t, err, common.ErrUnknownOrganization)
	assert.Empty(t, f.rm.users.created)

	require.NoError(t, f.svc.Register(ctx, "a@x.com", "pw", "org-1"))

	pair, err := f.svc.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	_, err = f.svc.Login(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestRegister_EmptyOrganizationIsUnknown(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.Register(context.Background(), "bob@example.com", "password", "")
	require.ErrorIs(t, err, common.ErrUnknownOrganization)
	assert.Empty(t, f.rm.users.created)
}

func TestRegister_OrganizationDeletedBeforeInsert(t *testing.T) {
	f := newAuthFixture(t)
	f.rm.users.createErr = common.ErrUnknownOrganization

	err := f.svc.Register(context.Background(), "bob@example.com", "password", "org-1")
	require.ErrorIs(t, err, common.ErrUnknownOrganization)
}

func TestRegister_CollaboratorFaults(t *testing.T) {
	tests := []struct {
		name  string
		fault func(f *authFixture)
	}{
		{"organization lookup", func(f *authFixture) { f.rm.orgs.existsErr = errBoom }},
		{"email lookup", func(f *authFixture) { f.rm.users.findErr = errBoom }},
		{"hash", func(f *authFixture) { f.hasher.hashErr = errBoom }},
		{"create", func(f *authFixture) { f.rm.users.createErr = errBoom }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			tt.fault(f)

			err := f.svc.Register(context.Background(), "bob@example.com", "password", "org-1")
			require.ErrorIs(t, err, common.ErrorInternal)
		})
	}
}
