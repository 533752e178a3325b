package api

import "google.golang.org/protobuf/types/known/timestamppb"

type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is used by both Register and RegisterOrganization.
type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	OrganizationID string `json:"organizationId"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse answers logins and refreshes. RefreshToken is empty for the
// super-admin.
type TokenResponse struct {
	AccessToken          string                 `json:"accessToken"`
	AccessTokenExpiresAt *timestamppb.Timestamp `json:"accessTokenExpiresAt,omitempty"`
	RefreshToken         string                 `json:"refreshToken,omitempty"`
}

type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

type Organization struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	CreatedAt *timestamppb.Timestamp `json:"createdAt,omitempty"`
}

type ListOrganizationsResponse struct {
	Organizations []Organization `json:"organizations"`
}

type CreateTagRequest struct {
	Name string `json:"name"`
}

type UpdateTagRequest struct {
	TagID string `json:"tagId"`
	Name  string `json:"name"`
}

type DeleteTagRequest struct {
	TagID string `json:"tagId"`
}

type Tag struct {
	ID             string                 `json:"id"`
	OrganizationID string                 `json:"organizationId"`
	Name           string                 `json:"name"`
	CreatedAt      *timestamppb.Timestamp `json:"createdAt,omitempty"`
}

type ListTagsResponse struct {
	Tags []Tag `json:"tags"`
}

type CreateItemRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Value       float64  `json:"value"`
	TagIDs      []string `json:"tags"`
}

type GetItemRequest struct {
	ItemID string `json:"itemId"`
}

type ListItemsRequest struct {
	TagIDs     []string `json:"tags,omitempty"`
	SearchTerm string   `json:"searchTerm,omitempty"`
	Sort       string   `json:"sort,omitempty"`
	OnlyOwn    bool     `json:"onlyOwn,omitempty"`
	Page       int      `json:"page,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

type ListItemsResponse struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// UpdateItemRequest is a partial update: an absent (or null) field is left
// unchanged, a present zero value is written.
type UpdateItemRequest struct {
	ItemID      string    `json:"itemId"`
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Value       *float64  `json:"value,omitempty"`
	TagIDs      *[]string `json:"tags,omitempty"`
}

type DeleteItemRequest struct {
	ItemID string `json:"itemId"`
}

type Item struct {
	ID             string                 `json:"id"`
	OrganizationID string                 `json:"organizationId"`
	CreatedBy      string                 `json:"createdBy"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Value          float64                `json:"value"`
	TagIDs         []string               `json:"tags"`
	Photos         []Photo                `json:"photos"`
	CreatedAt      *timestamppb.Timestamp `json:"createdAt,omitempty"`
	UpdatedAt      *timestamppb.Timestamp `json:"updatedAt,omitempty"`
}

// Photo carries a signed, short-lived URL, never the storage key.
type Photo struct {
	ID          string                 `json:"id"`
	URL         string                 `json:"url"`
	ContentType string                 `json:"contentType"`
	CreatedAt   *timestamppb.Timestamp `json:"createdAt,omitempty"`
}

type AddItemPhotoRequest struct {
	ItemID      string `json:"itemId"`
	ContentType string `json:"contentType"`
}

// AddItemPhotoResponse tells the client where to PUT the image. The upload
// must send ContentType as its Content-Type header.
type AddItemPhotoResponse struct {
	PhotoID     string `json:"photoId"`
	UploadURL   string `json:"uploadUrl"`
	ContentType string `json:"contentType"`
}

type DeleteItemPhotoRequest struct {
	ItemID  string `json:"itemId"`
	PhotoID string `json:"photoId"`
}
