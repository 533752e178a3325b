package auth

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
)

const (
	refreshLookupKeyBytes = 16
	refreshSecretBytes    = 32
)

// RefreshCredential is a freshly generated refresh token. Token is the wire
// form handed to the client; only LookupKey and a digest of Secret are
// stored.
type RefreshCredential struct {
	Token     string
	LookupKey string
	Secret    string
}

// NewRefreshCredential generates a random lookup key and secret.
func NewRefreshCredential() (RefreshCredential, error) {
	lk, err := common.MakeRandHexString(refreshLookupKeyBytes)
	if err != nil {
		return RefreshCredential{}, fmt.Errorf("generating lookup key: %w", err)
	}
	secret, err := common.MakeRandHexString(refreshSecretBytes)
	if err != nil {
		return RefreshCredential{}, fmt.Errorf("generating secret: %w", err)
	}

	return RefreshCredential{
		Token:     lk + common.RefreshTokenDelimiter + secret,
		LookupKey: lk,
		Secret:    secret,
	}, nil
}

// SplitRefreshToken parses the wire form back into lookup key and secret.
// A token without both parts is common.ErrMalformedToken.
func SplitRefreshToken(token string) (lookupKey, secret string, err error) {
	lookupKey, secret, ok := strings.Cut(token, common.RefreshTokenDelimiter)
	if !ok || lookupKey == "" || secret == "" {
		return "", "", common.ErrMalformedToken
	}
	return lookupKey, secret, nil
}
