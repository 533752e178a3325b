// Package common contains shared constants and sentinel errors used across
// StockKeeper components.
package common

// AuthorizationHeaderName is the gRPC metadata key (and HTTP header, case
// folded) carrying the bearer access token.
const AuthorizationHeaderName = "authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// RefreshTokenDelimiter separates the lookup key from the secret in the wire
// form of a refresh token.
const RefreshTokenDelimiter = "."

// RequestIDHeaderName is the metadata key used to correlate log lines of one request.
const RequestIDHeaderName = "x-request-id"
