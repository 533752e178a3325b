// Package client is the StockKeeper gRPC client.
//
// GRPCClient speaks the JSON codec of package api, keeps the token pair of
// the current session in memory and attaches the access token to every
// protected call. When a protected call fails with Unauthenticated and a
// refresh token is held, the client rotates the pair once and retries the
// call once. gRPC status codes are mapped to the sentinel errors
// ErrUnauthorized, ErrForbidden and ErrUnavailable; anything else is wrapped.
//
// A GRPCClient is safe for concurrent use.
package client
