// Package refreshtokens stores the server side of refresh credentials:
// one live record per user, addressed by its public lookup key.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

// Repository is implemented by the PostgreSQL and Redis stores.
type Repository interface {
	// Find returns the record with lookupKey, or common.ErrorNotFound.
	Find(ctx context.Context, lookupKey string) (*models.RefreshToken, error)

	// Save unconditionally replaces the user's record with token.
	Save(ctx context.Context, token *models.RefreshToken) error

	// Rotate replaces the record of next.UserID with next only if its lookup
	// key is still expectedLookupKey. Otherwise it returns
	// common.ErrorNotFound and changes nothing. Of concurrent Rotate calls
	// with the same expected key at most one succeeds.
	Rotate(ctx context.Context, expectedLookupKey string, next *models.RefreshToken) error
}
