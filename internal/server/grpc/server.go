// Package grpc exposes the services over gRPC with the JSON codec of package
// api. The service descriptor is declared by hand.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/stockkeeper/internal/api"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/services"
	"google.golang.org/grpc"
)

// AuthService is the part of services.AuthService the transport calls.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	AdminLogin(ctx context.Context, username, password string) (*services.TokenPair, error)
	Register(ctx context.Context, email, password, organizationID string) error
	RegisterOrganization(ctx context.Context, email, password, organizationID string) error
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type OrganizationService interface {
	Create(ctx context.Context, p *auth.Principal, name string) (*models.Organization, error)
	List(ctx context.Context, p *auth.Principal) ([]models.Organization, error)
}

type TagService interface {
	Create(ctx context.Context, p *auth.Principal, name string) (*models.Tag, error)
	List(ctx context.Context, p *auth.Principal) ([]models.Tag, error)
	Update(ctx context.Context, p *auth.Principal, tagID, name string) error
	Delete(ctx context.Context, p *auth.Principal, tagID string) error
}

type ItemService interface {
	Create(ctx context.Context, p *auth.Principal, in services.NewItem) (*models.Item, error)
	Get(ctx context.Context, p *auth.Principal, itemID string) (*models.Item, error)
	List(ctx context.Context, p *auth.Principal, q services.ListItemsQuery) (*models.ItemPage, error)
	Update(ctx context.Context, p *auth.Principal, itemID string, upd models.ItemUpdate) (*models.Item, error)
	Delete(ctx context.Context, p *auth.Principal, itemID string) error
	AddPhoto(ctx context.Context, p *auth.Principal, itemID, contentType string) (*services.PhotoUpload, error)
	DeletePhoto(ctx context.Context, p *auth.Principal, itemID, photoID string) error
}

// Services groups the collaborators of the server.
type Services struct {
	Auth          AuthService
	Organizations OrganizationService
	Tags          TagService
	Items         ItemService
}

type GRPCServer struct {
	address string
	svc     Services
	gate    *auth.Gate
	logger  logging.Logger
}

func NewGRPCServer(address string, l logging.Logger, gate *auth.Gate, svc Services) *GRPCServer {
	return &GRPCServer{
		address: address,
		svc:     svc,
		gate:    gate,
		logger:  l.With("module", "grpc_server"),
	}
}

// newServer builds a grpc.Server with the interceptors and the service.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.requestInterceptor, s.authInterceptor))
	srv.RegisterService(&serviceDesc, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}

// stockKeeperServer is the handler type checked by grpc.RegisterService.
type stockKeeperServer interface {
	Ping(context.Context, *api.Empty) (*api.PingResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: api.ServiceName,
	HandlerType: (*stockKeeperServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(api.MethodPing, (*GRPCServer).Ping),
		unary(api.MethodAdminLogin, (*GRPCServer).AdminLogin),
		unary(api.MethodLogin, (*GRPCServer).Login),
		unary(api.MethodRegister, (*GRPCServer).Register),
		unary(api.MethodRegisterOrganization, (*GRPCServer).RegisterOrganization),
		unary(api.MethodRefreshToken, (*GRPCServer).RefreshToken),
		unary(api.MethodCreateOrganization, (*GRPCServer).CreateOrganization),
		unary(api.MethodListOrganizations, (*GRPCServer).ListOrganizations),
		unary(api.MethodCreateTag, (*GRPCServer).CreateTag),
		unary(api.MethodListTags, (*GRPCServer).ListTags),
		unary(api.MethodUpdateTag, (*GRPCServer).UpdateTag),
		unary(api.MethodDeleteTag, (*GRPCServer).DeleteTag),
		unary(api.MethodCreateItem, (*GRPCServer).CreateItem),
		unary(api.MethodGetItem, (*GRPCServer).GetItem),
		unary(api.MethodListItems, (*GRPCServer).ListItems),
		unary(api.MethodUpdateItem, (*GRPCServer).UpdateItem),
		unary(api.MethodDeleteItem, (*GRPCServer).DeleteItem),
		unary(api.MethodAddItemPhoto, (*GRPCServer).AddItemPhoto),
		unary(api.MethodDeleteItemPhoto, (*GRPCServer).DeleteItemPhoto),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stockkeeper/v1",
}

// unary adapts a typed handler method to a grpc.MethodDesc, the way
// generated code does for each method.
func unary[Req, Resp any](method string, call func(*GRPCServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(*GRPCServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: api.FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
