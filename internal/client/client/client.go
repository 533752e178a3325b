package client

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/api"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	LoggedIn() bool
	Logout()

	AdminLogin(ctx context.Context, username, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Register(ctx context.Context, email, password, organizationID string) error
	RegisterOrganization(ctx context.Context, email, password, organizationID string) error
	Refresh(ctx context.Context) (*Session, error)

	CreateOrganization(ctx context.Context, name string) (*api.Organization, error)
	ListOrganizations(ctx context.Context) ([]api.Organization, error)

	CreateTag(ctx context.Context, name string) (*api.Tag, error)
	ListTags(ctx context.Context) ([]api.Tag, error)
	UpdateTag(ctx context.Context, tagID, name string) error
	DeleteTag(ctx context.Context, tagID string) error

	CreateItem(ctx context.Context, req *api.CreateItemRequest) (*api.Item, error)
	GetItem(ctx context.Context, itemID string) (*api.Item, error)
	ListItems(ctx context.Context, req *api.ListItemsRequest) (*api.ListItemsResponse, error)
	UpdateItem(ctx context.Context, req *api.UpdateItemRequest) (*api.Item, error)
	DeleteItem(ctx context.Context, itemID string) error
	AddItemPhoto(ctx context.Context, itemID, contentType string) (*api.AddItemPhotoResponse, error)
	DeleteItemPhoto(ctx context.Context, itemID, photoID string) error
}
