package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/api"
	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Session describes the token pair currently held by the client.
type Session struct {
	AccessTokenExpiresAt time.Time
	Refreshable          bool
}

// publicMethods never carry the access token and never trigger a refresh.
var publicMethods = map[string]bool{
	api.FullMethod(api.MethodPing):                 true,
	api.FullMethod(api.MethodAdminLogin):           true,
	api.FullMethod(api.MethodLogin):                true,
	api.FullMethod(api.MethodRegister):             true,
	api.FullMethod(api.MethodRegisterOrganization): true,
	api.FullMethod(api.MethodRefreshToken):         true,
}

type invokeFunc func(ctx context.Context, method string, req, reply any) error

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	invoke      invokeFunc

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time

	// refreshMu serializes rotations so concurrent failures spend the
	// refresh token once.
	refreshMu sync.Mutex
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(api.MetadataAuthorization)
	md.Set(api.MetadataAuthorization, common.BearerScheme+" "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if publicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	used, _ := s.tokens()
	err := invoker(withAccessToken(ctx, used), method, req, reply, cc, opts...)
	if status.Code(err) != codes.Unauthenticated {
		return err
	}

	fresh, ok := s.refreshOnce(ctx, used)
	if !ok {
		return err
	}

	return invoker(withAccessToken(ctx, fresh), method, req, reply, cc, opts...)
}

// refreshOnce rotates the token pair unless another call already replaced
// the access token that failed. It returns the access token to retry with.
func (s *GRPCClient) refreshOnce(ctx context.Context, failed string) (string, bool) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	current, refresh := s.tokens()
	if current != failed && current != "" {
		return current, true
	}
	if refresh == "" {
		return "", false
	}

	var resp api.TokenResponse
	if err := s.invoke(ctx, api.MethodRefreshToken, &api.RefreshTokenRequest{RefreshToken: refresh}, &resp); err != nil {
		return "", false
	}
	s.setTokens(&resp)
	return resp.AccessToken, true
}

func (s *GRPCClient) tokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(resp *api.TokenResponse) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = resp.AccessToken
	s.refreshToken = resp.RefreshToken
	s.expiresAt = time.Time{}
	if resp.AccessTokenExpiresAt != nil {
		s.expiresAt = resp.AccessTokenExpiresAt.AsTime()
	}
	return &Session{AccessTokenExpiresAt: s.expiresAt, Refreshable: s.refreshToken != ""}
}

func NewStockKeeperClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.invoke = func(ctx context.Context, method string, req, reply any) error {
		return conn.Invoke(ctx, api.FullMethod(method), req, reply)
	}
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) call(ctx context.Context, method string, req, reply any) error {
	return s.mapError(s.invoke(ctx, method, req, reply))
}

// protected fails fast when there is no session to authenticate with.
func (s *GRPCClient) protected(ctx context.Context, method string, req, reply any) error {
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}
	return s.call(ctx, method, req, reply)
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrForbidden, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (s *GRPCClient) LoggedIn() bool {
	access, _ := s.tokens()
	return access != ""
}

// Logout forgets the session locally. The server keeps the refresh record
// until it expires or the next login replaces it.
func (s *GRPCClient) Logout() {
	s.setTokens(&api.TokenResponse{})
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	var resp api.PingResponse
	if err := s.call(ctx, api.MethodPing, &api.Empty{}, &resp); err != nil {
		return err
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) AdminLogin(ctx context.Context, username, password string) (*Session, error) {
	var resp api.TokenResponse
	if err := s.call(ctx, api.MethodAdminLogin, &api.AdminLoginRequest{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	return s.setTokens(&resp), nil
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp api.TokenResponse
	if err := s.call(ctx, api.MethodLogin, &api.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return s.setTokens(&resp), nil
}

func (s *GRPCClient) Register(ctx context.Context, email, password, organizationID string) error {
	req := &api.RegisterRequest{Email: email, Password: password, OrganizationID: organizationID}
	return s.call(ctx, api.MethodRegister, req, &api.Empty{})
}

func (s *GRPCClient) RegisterOrganization(ctx context.Context, email, password, organizationID string) error {
	req := &api.RegisterRequest{Email: email, Password: password, OrganizationID: organizationID}
	return s.call(ctx, api.MethodRegisterOrganization, req, &api.Empty{})
}

// Refresh rotates the token pair explicitly.
func (s *GRPCClient) Refresh(ctx context.Context) (*Session, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	_, refresh := s.tokens()
	if refresh == "" {
		return nil, ErrNotLoggedIn
	}

	var resp api.TokenResponse
	if err := s.call(ctx, api.MethodRefreshToken, &api.RefreshTokenRequest{RefreshToken: refresh}, &resp); err != nil {
		return nil, err
	}
	return s.setTokens(&resp), nil
}

func (s *GRPCClient) CreateOrganization(ctx context.Context, name string) (*api.Organization, error) {
	var resp api.Organization
	if err := s.protected(ctx, api.MethodCreateOrganization, &api.CreateOrganizationRequest{Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) ListOrganizations(ctx context.Context) ([]api.Organization, error) {
	var resp api.ListOrganizationsResponse
	if err := s.protected(ctx, api.MethodListOrganizations, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Organizations, nil
}

func (s *GRPCClient) CreateTag(ctx context.Context, name string) (*api.Tag, error) {
	var resp api.Tag
	if err := s.protected(ctx, api.MethodCreateTag, &api.CreateTagRequest{Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) ListTags(ctx context.Context) ([]api.Tag, error) {
	var resp api.ListTagsResponse
	if err := s.protected(ctx, api.MethodListTags, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Tags, nil
}

func (s *GRPCClient) UpdateTag(ctx context.Context, tagID, name string) error {
	return s.protected(ctx, api.MethodUpdateTag, &api.UpdateTagRequest{TagID: tagID, Name: name}, &api.Empty{})
}

func (s *GRPCClient) DeleteTag(ctx context.Context, tagID string) error {
	return s.protected(ctx, api.MethodDeleteTag, &api.DeleteTagRequest{TagID: tagID}, &api.Empty{})
}

func (s *GRPCClient) CreateItem(ctx context.Context, req *api.CreateItemRequest) (*api.Item, error) {
	var resp api.Item
	if err := s.protected(ctx, api.MethodCreateItem, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) GetItem(ctx context.Context, itemID string) (*api.Item, error) {
	var resp api.Item
	if err := s.protected(ctx, api.MethodGetItem, &api.GetItemRequest{ItemID: itemID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) ListItems(ctx context.Context, req *api.ListItemsRequest) (*api.ListItemsResponse, error) {
	var resp api.ListItemsResponse
	if err := s.protected(ctx, api.MethodListItems, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) UpdateItem(ctx context.Context, req *api.UpdateItemRequest) (*api.Item, error) {
	var resp api.Item
	if err := s.protected(ctx, api.MethodUpdateItem, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) DeleteItem(ctx context.Context, itemID string) error {
	return s.protected(ctx, api.MethodDeleteItem, &api.DeleteItemRequest{ItemID: itemID}, &api.Empty{})
}

func (s *GRPCClient) AddItemPhoto(ctx context.Context, itemID, contentType string) (*api.AddItemPhotoResponse, error) {
	var resp api.AddItemPhotoResponse
	req := &api.AddItemPhotoRequest{ItemID: itemID, ContentType: contentType}
	if err := s.protected(ctx, api.MethodAddItemPhoto, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) DeleteItemPhoto(ctx context.Context, itemID, photoID string) error {
	req := &api.DeleteItemPhotoRequest{ItemID: itemID, PhotoID: photoID}
	return s.protected(ctx, api.MethodDeleteItemPhoto, req, &api.Empty{})
}
