package grpc

import (
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/api"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/services"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func timestamp(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}

func tokenResponse(p *services.TokenPair) *api.TokenResponse {
	return &api.TokenResponse{
		AccessToken:          p.AccessToken,
		AccessTokenExpiresAt: timestamp(p.AccessTokenExpiresAt),
		RefreshToken:         p.RefreshToken,
	}
}

func organizationToAPI(o models.Organization) api.Organization {
	return api.Organization{ID: o.ID, Name: o.Name, CreatedAt: timestamp(o.CreatedAt)}
}

func tagToAPI(t models.Tag) api.Tag {
	return api.Tag{
		ID:             t.ID,
		OrganizationID: t.OrganizationID,
		Name:           t.Name,
		CreatedAt:      timestamp(t.CreatedAt),
	}
}

func itemToAPI(it models.Item) api.Item {
	out := api.Item{
		ID:             it.ID,
		OrganizationID: it.OrganizationID,
		CreatedBy:      it.CreatedBy,
		Name:           it.Name,
		Description:    it.Description,
		Value:          it.Value,
		TagIDs:         it.TagIDs,
		Photos:         make([]api.Photo, 0, len(it.Photos)),
		CreatedAt:      timestamp(it.CreatedAt),
		UpdatedAt:      timestamp(it.UpdatedAt),
	}
	if out.TagIDs == nil {
		out.TagIDs = []string{}
	}
	for _, p := range it.Photos {
		out.Photos = append(out.Photos, api.Photo{
			ID:          p.ID,
			URL:         p.URL,
			ContentType: p.ContentType,
			CreatedAt:   timestamp(p.CreatedAt),
		})
	}
	return out
}
