package grpc

import (
	"errors"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var statusCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrInvalidArgument, codes.InvalidArgument},
	{common.ErrMalformedToken, codes.InvalidArgument},
	{common.ErrInvalidCredentials, codes.Unauthenticated},
	{common.ErrorUnauthorized, codes.Unauthenticated},
	{common.ErrInvalidRefreshToken, codes.Unauthenticated},
	{common.ErrRefreshTokenExpired, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrForbidden, codes.PermissionDenied},
	{common.ErrDuplicateEmail, codes.AlreadyExists},
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrUnknownOrganization, codes.FailedPrecondition},
}

// toStatus maps service errors to gRPC statuses. Anything unknown becomes a
// bare Internal so no detail leaks to the caller.
func toStatus(err error) error {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return status.Error(sc.code, sc.err.Error())
		}
	}
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}
