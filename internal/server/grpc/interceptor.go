package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/api"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// access describes who may call a method. Public methods skip Authorize.
type access struct {
	public bool
	roles  []models.Role
}

var (
	public       = access{public: true}
	superAdmin   = access{roles: []models.Role{models.RoleSuperAdmin}}
	organization = access{roles: []models.Role{models.RoleOrganization}}
	member       = access{roles: []models.Role{models.RoleOrganization, models.RoleUser}}
)

// methodAccess is the role table. Methods missing here are denied.
var methodAccess = map[string]access{
	api.FullMethod(api.MethodPing):                 public,
	api.FullMethod(api.MethodAdminLogin):           public,
	api.FullMethod(api.MethodLogin):                public,
	api.FullMethod(api.MethodRegister):             public,
	api.FullMethod(api.MethodRegisterOrganization): public,
	api.FullMethod(api.MethodRefreshToken):         public,
	api.FullMethod(api.MethodCreateOrganization):   superAdmin,
	api.FullMethod(api.MethodListOrganizations):    superAdmin,
	api.FullMethod(api.MethodCreateTag):            organization,
	api.FullMethod(api.MethodUpdateTag):            organization,
	api.FullMethod(api.MethodDeleteTag):            organization,
	api.FullMethod(api.MethodListTags):             member,
	api.FullMethod(api.MethodCreateItem):           member,
	api.FullMethod(api.MethodGetItem):              member,
	api.FullMethod(api.MethodListItems):            member,
	api.FullMethod(api.MethodUpdateItem):           member,
	api.FullMethod(api.MethodDeleteItem):           member,
	api.FullMethod(api.MethodAddItemPhoto):         member,
	api.FullMethod(api.MethodDeleteItemPhoto):      member,
}

// requestInterceptor attaches a request id and a request-scoped logger and
// logs the outcome of every call.
func (s *GRPCServer) requestInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	reqID := firstMetadata(ctx, api.MetadataRequestID)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(api.MetadataRequestID, reqID))

	log := s.logger.With("method", info.FullMethod, "request_id", reqID)
	ctx = logging.NewContext(ctx, log)

	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"code", code.String(), "duration", time.Since(start)}
	if code == codes.Internal || code == codes.Unknown {
		log.Error(ctx, "rpc failed", args...)
	} else {
		log.Info(ctx, "rpc", args...)
	}
	return resp, err
}

// authInterceptor resolves the caller and enforces the role table.
func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	acc, ok := methodAccess[info.FullMethod]
	if !ok {
		return nil, status.Error(codes.PermissionDenied, "method not allowed")
	}

	p := s.gate.Authenticate(ctx, firstMetadata(ctx, api.MetadataAuthorization))
	if !acc.public {
		if err := auth.Authorize(p, acc.roles...); err != nil {
			return nil, toStatus(err)
		}
	}
	if p != nil {
		ctx = auth.NewContext(ctx, p)
		ctx = logging.NewContext(ctx, logging.FromContext(ctx, s.logger).With("role", p.Role))
	}

	return handler(ctx, req)
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}
