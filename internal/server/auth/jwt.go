package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ResourceTokenTTL is the fixed lifetime of a resource (file) token.
const ResourceTokenTTL = 10 * time.Minute

const (
	audienceAccess   = "stockkeeper.access"
	audienceResource = "stockkeeper.resource"
)

// AccessClaims identify the caller of a protected operation. Regular users
// carry UserID, Email and OrganizationID; the super-admin carries Username.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID         string      `json:"userId,omitempty"`
	Email          string      `json:"email,omitempty"`
	Username       string      `json:"username,omitempty"`
	Role           models.Role `json:"role"`
	OrganizationID string      `json:"organizationId,omitempty"`
}

// ResourceClaims grant read access to one stored file.
type ResourceClaims struct {
	jwt.RegisteredClaims
	FileRef string `json:"fileRef"`
}

// Signer issues and verifies HS256 tokens. Access and resource tokens use
// distinct secrets and audiences, so neither verifies as the other.
type Signer struct {
	accessSecret   []byte
	resourceSecret []byte
	now            func() time.Time
}

func NewSigner(accessSecret, resourceSecret string) (*Signer, error) {
	if accessSecret == "" || resourceSecret == "" {
		return nil, errors.New("signer: empty secret")
	}
	if accessSecret == resourceSecret {
		return nil, errors.New("signer: access and resource secrets must differ")
	}
	return &Signer{
		accessSecret:   []byte(accessSecret),
		resourceSecret: []byte(resourceSecret),
		now:            time.Now,
	}, nil
}

// WithClock replaces the time source. Used by tests.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

// SignAccess signs claims with the access secret. iat, exp, jti and the
// audience are set here; any values in claims are overwritten. The expiry
// is returned alongside the token.
func (s *Signer) SignAccess(claims AccessClaims, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(ttl)

	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		Audience:  jwt.ClaimStrings{audienceAccess},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        uuid.NewString(),
	}
	if claims.Subject == "" {
		claims.Subject = claims.Username
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing access token: %w", err)
	}
	return token, exp, nil
}

// VerifyAccess checks signature, algorithm, audience and expiry. Every
// failure wraps common.ErrInvalidToken; expiry additionally wraps
// common.ErrTokenExpired.
func (s *Signer) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(token, claims, s.accessSecret, audienceAccess); err != nil {
		return nil, err
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrInvalidToken, claims.Role)
	}
	return claims, nil
}

// SignResource signs fileRef with the resource secret for ResourceTokenTTL.
func (s *Signer) SignResource(fileRef string) (string, error) {
	now := s.now()
	claims := ResourceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{audienceResource},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ResourceTokenTTL)),
		},
		FileRef: fileRef,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.resourceSecret)
	if err != nil {
		return "", fmt.Errorf("signing resource token: %w", err)
	}
	return token, nil
}

// VerifyResource returns the file reference carried by a resource token.
func (s *Signer) VerifyResource(token string) (string, error) {
	claims := &ResourceClaims{}
	if err := s.parse(token, claims, s.resourceSecret, audienceResource); err != nil {
		return "", err
	}
	if claims.FileRef == "" {
		return "", fmt.Errorf("%w: missing file reference", common.ErrInvalidToken)
	}
	return claims.FileRef, nil
}

func (s *Signer) parse(token string, claims jwt.Claims, secret []byte, audience string) error {
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrMalformedToken)
	default:
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
}
