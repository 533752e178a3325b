package grpc

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/api"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/services"
)

func (s *GRPCServer) Ping(ctx context.Context, _ *api.Empty) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) AdminLogin(ctx context.Context, req *api.AdminLoginRequest) (*api.TokenResponse, error) {
	pair, err := s.svc.Auth.AdminLogin(ctx, req.Username, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return tokenResponse(pair), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.TokenResponse, error) {
	pair, err := s.svc.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return tokenResponse(pair), nil
}

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.Empty, error) {
	if err := validateRegister(req); err != nil {
		return nil, err
	}
	if err := s.svc.Auth.Register(ctx, req.Email, req.Password, req.OrganizationID); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) RegisterOrganization(ctx context.Context, req *api.RegisterRequest) (*api.Empty, error) {
	if err := validateRegister(req); err != nil {
		return nil, err
	}
	if err := s.svc.Auth.RegisterOrganization(ctx, req.Email, req.Password, req.OrganizationID); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.TokenResponse, error) {
	pair, err := s.svc.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return tokenResponse(pair), nil
}

func (s *GRPCServer) CreateOrganization(ctx context.Context, req *api.CreateOrganizationRequest) (*api.Organization, error) {
	org, err := s.svc.Organizations.Create(ctx, auth.FromContext(ctx), req.Name)
	if err != nil {
		return nil, toStatus(err)
	}
	out := organizationToAPI(*org)
	return &out, nil
}

func (s *GRPCServer) ListOrganizations(ctx context.Context, _ *api.Empty) (*api.ListOrganizationsResponse, error) {
	orgs, err := s.svc.Organizations.List(ctx, auth.FromContext(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &api.ListOrganizationsResponse{Organizations: make([]api.Organization, 0, len(orgs))}
	for _, o := range orgs {
		resp.Organizations = append(resp.Organizations, organizationToAPI(o))
	}
	return resp, nil
}

func (s *GRPCServer) CreateTag(ctx context.Context, req *api.CreateTagRequest) (*api.Tag, error) {
	tag, err := s.svc.Tags.Create(ctx, auth.FromContext(ctx), req.Name)
	if err != nil {
		return nil, toStatus(err)
	}
	out := tagToAPI(*tag)
	return &out, nil
}

func (s *GRPCServer) ListTags(ctx context.Context, _ *api.Empty) (*api.ListTagsResponse, error) {
	tags, err := s.svc.Tags.List(ctx, auth.FromContext(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &api.ListTagsResponse{Tags: make([]api.Tag, 0, len(tags))}
	for _, t := range tags {
		resp.Tags = append(resp.Tags, tagToAPI(t))
	}
	return resp, nil
}

func (s *GRPCServer) UpdateTag(ctx context.Context, req *api.UpdateTagRequest) (*api.Empty, error) {
	if err := s.svc.Tags.Update(ctx, auth.FromContext(ctx), req.TagID, req.Name); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) DeleteTag(ctx context.Context, req *api.DeleteTagRequest) (*api.Empty, error) {
	if err := s.svc.Tags.Delete(ctx, auth.FromContext(ctx), req.TagID); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) CreateItem(ctx context.Context, req *api.CreateItemRequest) (*api.Item, error) {
	item, err := s.svc.Items.Create(ctx, auth.FromContext(ctx), services.NewItem{
		Name:        req.Name,
		Description: req.Description,
		Value:       req.Value,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	out := itemToAPI(*item)
	return &out, nil
}

func (s *GRPCServer) GetItem(ctx context.Context, req *api.GetItemRequest) (*api.Item, error) {
	item, err := s.svc.Items.Get(ctx, auth.FromContext(ctx), req.ItemID)
	if err != nil {
		return nil, toStatus(err)
	}
	out := itemToAPI(*item)
	return &out, nil
}

func (s *GRPCServer) ListItems(ctx context.Context, req *api.ListItemsRequest) (*api.ListItemsResponse, error) {
	page, err := s.svc.Items.List(ctx, auth.FromContext(ctx), services.ListItemsQuery{
		TagIDs:     req.TagIDs,
		SearchTerm: req.SearchTerm,
		Sort:       models.ItemSort(req.Sort),
		OnlyOwn:    req.OnlyOwn,
		Page:       req.Page,
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &api.ListItemsResponse{
		Items: make([]api.Item, 0, len(page.Items)),
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
	}
	for _, it := range page.Items {
		resp.Items = append(resp.Items, itemToAPI(it))
	}
	return resp, nil
}

func (s *GRPCServer) UpdateItem(ctx context.Context, req *api.UpdateItemRequest) (*api.Item, error) {
	item, err := s.svc.Items.Update(ctx, auth.FromContext(ctx), req.ItemID, models.ItemUpdate{
		Name:        req.Name,
		Description: req.Description,
		Value:       req.Value,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	out := itemToAPI(*item)
	return &out, nil
}

func (s *GRPCServer) DeleteItem(ctx context.Context, req *api.DeleteItemRequest) (*api.Empty, error) {
	if err := s.svc.Items.Delete(ctx, auth.FromContext(ctx), req.ItemID); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) AddItemPhoto(ctx context.Context, req *api.AddItemPhotoRequest) (*api.AddItemPhotoResponse, error) {
	up, err := s.svc.Items.AddPhoto(ctx, auth.FromContext(ctx), req.ItemID, req.ContentType)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.AddItemPhotoResponse{PhotoID: up.PhotoID, UploadURL: up.UploadURL, ContentType: up.ContentType}, nil
}

func (s *GRPCServer) DeleteItemPhoto(ctx context.Context, req *api.DeleteItemPhotoRequest) (*api.Empty, error) {
	if err := s.svc.Items.DeletePhoto(ctx, auth.FromContext(ctx), req.ItemID, req.PhotoID); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}
