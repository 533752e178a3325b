package auth

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID         string
	Email          string
	Username       string
	Role           models.Role
	OrganizationID string
}

// PrincipalFromClaims converts verified access claims into a Principal.
func PrincipalFromClaims(c *AccessClaims) *Principal {
	return &Principal{
		UserID:         c.UserID,
		Email:          c.Email,
		Username:       c.Username,
		Role:           c.Role,
		OrganizationID: c.OrganizationID,
	}
}

type principalKey struct{}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal attached by the transport, or nil.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
