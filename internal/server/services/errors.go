// Package services contains server-side business logic: authentication and
// token issuance, refresh rotation, signed resource URLs, and the
// organization, tag and item operations. Services return the sentinel errors
// of package common; collaborator faults are logged and reported as
// common.ErrorInternal.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
)

// operational errors pass through services unchanged.
var operational = []error{
	common.ErrorNotFound,
	common.ErrorUnauthorized,
	common.ErrForbidden,
	common.ErrInvalidArgument,
	common.ErrInvalidCredentials,
	common.ErrDuplicateEmail,
	common.ErrUnknownOrganization,
	common.ErrMalformedToken,
	common.ErrInvalidRefreshToken,
	common.ErrRefreshTokenExpired,
}

func isOperational(err error) bool {
	for _, e := range operational {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// internalError logs err with msg and returns common.ErrorInternal.
func internalError(ctx context.Context, log logging.Logger, msg string, err error, args ...any) error {
	logging.FromContext(ctx, log).Error(ctx, msg, append(args, "error", err)...)
	return common.ErrorInternal
}

// passOrInternal returns operational errors as they are and hides the rest
// behind common.ErrorInternal.
func passOrInternal(ctx context.Context, log logging.Logger, msg string, err error, args ...any) error {
	if isOperational(err) {
		return err
	}
	return internalError(ctx, log, msg, err, args...)
}
