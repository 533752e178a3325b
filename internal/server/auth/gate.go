package auth

import (
	"context"
	"slices"
	"strings"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

// Gate resolves bearer headers into principals.
type Gate struct {
	signer *Signer
	log    logging.Logger
}

func NewGate(signer *Signer, log logging.Logger) *Gate {
	return &Gate{signer: signer, log: log}
}

// Authenticate returns the principal for an "authorization" header value,
// or nil when the header is missing, not a Bearer header, or carries a token
// that does not verify. Authenticate never fails the request itself; the
// decision belongs to Authorize.
func (g *Gate) Authenticate(ctx context.Context, rawHeader string) *Principal {
	if rawHeader == "" {
		return nil
	}

	log := logging.FromContext(ctx, g.log)

	scheme, token, ok := strings.Cut(rawHeader, " ")
	if !ok || scheme != common.BearerScheme || token == "" {
		log.Warn(ctx, "malformed authorization header")
		return nil
	}

	claims, err := g.signer.VerifyAccess(token)
	if err != nil {
		log.Warn(ctx, "access token rejected", "error", err)
		return nil
	}

	return PrincipalFromClaims(claims)
}

// Authorize requires an authenticated principal whose role is one of
// allowed. With no roles given any authenticated principal passes.
func Authorize(p *Principal, allowed ...models.Role) error {
	if p == nil {
		return common.ErrorUnauthorized
	}
	if len(allowed) > 0 && !slices.Contains(allowed, p.Role) {
		return common.ErrForbidden
	}
	return nil
}

// CheckTenant requires the principal to belong to organizationID.
func CheckTenant(p *Principal, organizationID string) error {
	if p == nil {
		return common.ErrorUnauthorized
	}
	if p.OrganizationID == "" || p.OrganizationID != organizationID {
		return common.ErrForbidden
	}
	return nil
}

// CheckOwnership requires both the tenant and the creator to match.
func CheckOwnership(p *Principal, organizationID, createdBy string) error {
	if err := CheckTenant(p, organizationID); err != nil {
		return err
	}
	if p.UserID == "" || p.UserID != createdBy {
		return common.ErrForbidden
	}
	return nil
}
