package models

import "time"

// RefreshToken is the stored half of a refresh credential. The secret is
// kept only as a bcrypt digest; LookupKey is the indexable public half.
// A user has at most one live record.
type RefreshToken struct {
	UserID     string
	LookupKey  string
	SecretHash string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Expired reports whether the credential is past its expiry at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
