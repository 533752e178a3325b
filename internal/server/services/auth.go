package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/server/config"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/repomanager"
)

// TokenPair is the result of a login or refresh. RefreshToken is empty for
// the super-admin.
type TokenPair struct {
	AccessToken          string
	AccessTokenExpiresAt time.Time
	RefreshToken         string
}

// AuthService issues tokens and registers accounts.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	refresh     refreshtokens.Repository
	signer      *auth.Signer
	hasher      auth.Hasher
	log         logging.Logger
	now         func() time.Time

	adminUsername  string
	adminPassword  string
	accessTTL      time.Duration
	adminTTL       time.Duration
	refreshTTL     time.Duration
	dummyHashOnce  sync.Once
	dummyHash      string
	dummyHashError error
}

// NewAuthService wires the service. refresh selects the refresh credential
// store; when nil the PostgreSQL store of m is used.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, refresh refreshtokens.Repository,
	signer *auth.Signer, hasher auth.Hasher, cfg *config.Config, log logging.Logger) *AuthService {
	if refresh == nil {
		refresh = m.RefreshTokens(db)
	}
	return &AuthService{
		db:            db,
		repomanager:   m,
		refresh:       refresh,
		signer:        signer,
		hasher:        hasher,
		log:           log,
		now:           time.Now,
		adminUsername: cfg.AdminUsername,
		adminPassword: cfg.AdminPassword,
		accessTTL:     cfg.AccessTokenValidityDuration,
		adminTTL:      cfg.AdminTokenValidityDuration,
		refreshTTL:    cfg.RefreshTokenValidityDuration,
	}
}

// Login verifies an email/password pair and returns a fresh access token and
// refresh token. Any prior refresh token of the user stops working.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	log := logging.FromContext(ctx, s.log)
	email = normalizeEmail(email)

	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		s.burnPasswordCheck(password)
		log.Info(ctx, "login rejected", "reason", "unknown email")
		return nil, common.ErrInvalidCredentials
	}
	if err != nil {
		return nil, internalError(ctx, s.log, "finding user", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		log.Info(ctx, "login rejected", "reason", "wrong password", "user_id", user.ID)
		return nil, common.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.repomanager.Users(s.db).Update(ctx, user.ID, models.UserUpdate{LastLoginAt: &now}); err != nil {
		return nil, internalError(ctx, s.log, "updating last login", err, "user_id", user.ID)
	}

	pair, err := s.issueAccess(ctx, user)
	if err != nil {
		return nil, err
	}

	next, err := s.newRefreshRecord(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.refresh.Save(ctx, next.record); err != nil {
		return nil, internalError(ctx, s.log, "saving refresh token", err, "user_id", user.ID)
	}
	pair.RefreshToken = next.token

	log.Info(ctx, "login succeeded", "user_id", user.ID, "role", user.Role)
	return pair, nil
}

// AdminLogin checks the configured super-admin credentials. The admin gets an
// access token only.
func (s *AuthService) AdminLogin(ctx context.Context, username, password string) (*TokenPair, error) {
	log := logging.FromContext(ctx, s.log)

	userOK := equalSecret(username, s.adminUsername)
	passOK := equalSecret(password, s.adminPassword)
	if !userOK || !passOK || s.adminPassword == "" {
		log.Warn(ctx, "admin login rejected")
		return nil, common.ErrInvalidCredentials
	}

	token, exp, err := s.signer.SignAccess(auth.AccessClaims{
		Username: username,
		Role:     models.RoleSuperAdmin,
	}, s.adminTTL)
	if err != nil {
		return nil, internalError(ctx, s.log, "signing admin token", err)
	}

	log.Info(ctx, "admin login succeeded")
	return &TokenPair{AccessToken: token, AccessTokenExpiresAt: exp}, nil
}

// Register creates a user with role user in organizationID.
func (s *AuthService) Register(ctx context.Context, email, password, organizationID string) error {
	return s.register(ctx, email, password, organizationID, models.RoleUser)
}

// RegisterOrganization creates the organization account of organizationID.
func (s *AuthService) RegisterOrganization(ctx context.Context, email, password, organizationID string) error {
	return s.register(ctx, email, password, organizationID, models.RoleOrganization)
}

func (s *AuthService) register(ctx context.Context, email, password, organizationID string, role models.Role) error {
	log := logging.FromContext(ctx, s.log)

	email = normalizeEmail(email)

	exists, err := s.repomanager.Organizations(s.db).Exists(ctx, organizationID)
	if err != nil {
		return internalError(ctx, s.log, "checking organization", err, "organization_id", organizationID)
	}
	if !exists {
		log.Info(ctx, "registration rejected", "reason", "unknown organization", "organization_id", organizationID)
		return common.ErrUnknownOrganization
	}

	users := s.repomanager.Users(s.db)
	if _, err := users.FindByEmail(ctx, email); err == nil {
		return common.ErrDuplicateEmail
	} else if !errors.Is(err, common.ErrorNotFound) {
		return internalError(ctx, s.log, "checking email", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return internalError(ctx, s.log, "hashing password", err)
	}

	u, err := users.Create(ctx, &models.User{
		Email:          email,
		PasswordHash:   hash,
		Role:           role,
		OrganizationID: organizationID,
	})
	if err != nil {
		// the unique index catches a concurrent registration of the same email
		return passOrInternal(ctx, s.log, "creating user", err)
	}

	log.Info(ctx, "user registered", "user_id", u.ID, "role", role, "organization_id", organizationID)
	return nil
}

func (s *AuthService) issueAccess(ctx context.Context, u *models.User) (*TokenPair, error) {
	token, exp, err := s.signer.SignAccess(auth.AccessClaims{
		UserID:         u.ID,
		Email:          u.Email,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
	}, s.accessTTL)
	if err != nil {
		return nil, internalError(ctx, s.log, "signing access token", err, "user_id", u.ID)
	}
	return &TokenPair{AccessToken: token, AccessTokenExpiresAt: exp}, nil
}

type refreshRecord struct {
	token  string
	record *models.RefreshToken
}

func (s *AuthService) newRefreshRecord(ctx context.Context, userID string) (*refreshRecord, error) {
	cred, err := auth.NewRefreshCredential()
	if err != nil {
		return nil, internalError(ctx, s.log, "generating refresh token", err)
	}
	hash, err := s.hasher.Hash(cred.Secret)
	if err != nil {
		return nil, internalError(ctx, s.log, "hashing refresh secret", err)
	}
	now := s.now()
	return &refreshRecord{
		token: cred.Token,
		record: &models.RefreshToken{
			UserID:     userID,
			LookupKey:  cred.LookupKey,
			SecretHash: hash,
			ExpiresAt:  now.Add(s.refreshTTL),
			CreatedAt:  now,
		},
	}, nil
}

// burnPasswordCheck spends one bcrypt comparison so unknown emails answer in
// about the same time as wrong passwords.
func (s *AuthService) burnPasswordCheck(password string) {
	s.dummyHashOnce.Do(func() {
		s.dummyHash, s.dummyHashError = s.hasher.Hash("stockkeeper-unknown-user")
	})
	if s.dummyHashError == nil {
		s.hasher.Verify(password, s.dummyHash)
	}
}

// equalSecret compares SHA-256 digests so the time taken does not depend on
// the length of either value.
func equalSecret(given, configured string) bool {
	a := sha256.Sum256([]byte(given))
	b := sha256.Sum256([]byte(configured))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
