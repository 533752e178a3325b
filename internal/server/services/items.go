package services

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	maxItemNameLen   = 200
	defaultPageLimit = 10
	maxPageLimit     = 50
)

// photoExtensions lists the accepted upload content types.
var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// NewItem is the input of CreateItem.
type NewItem struct {
	Name        string
	Description string
	Value       float64
	TagIDs      []string
}

// ListItemsQuery is the input of ListItems. Zero Page and Limit select the
// defaults.
type ListItemsQuery struct {
	TagIDs     []string
	SearchTerm string
	Sort       models.ItemSort
	OnlyOwn    bool
	Page       int
	Limit      int
}

// PhotoUpload tells the client where to PUT the image bytes.
type PhotoUpload struct {
	PhotoID     string
	UploadURL   string
	ContentType string
}

// ItemService manages the inventory of the caller's organization. Reads are
// open to the whole organization; changes are limited to the item's creator.
type ItemService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	resources   *ResourceService
	store       ObjectStore
	log         logging.Logger
}

func NewItemService(db *sql.DB, m repomanager.RepositoryManager, resources *ResourceService, store ObjectStore, log logging.Logger) *ItemService {
	return &ItemService{db: db, repomanager: m, resources: resources, store: store, log: log}
}

func (s *ItemService) Create(ctx context.Context, p *auth.Principal, in NewItem) (*models.Item, error) {
	if err := auth.Authorize(p, models.RoleOrganization, models.RoleUser); err != nil {
		return nil, err
	}

	name, err := itemName(in.Name)
	if err != nil {
		return nil, err
	}
	tagIDs := uniqueIDs(in.TagIDs)

	var created *models.Item
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.checkTags(ctx, tx, p.OrganizationID, tagIDs); err != nil {
			return err
		}

		item, err := s.repomanager.Items(tx).Create(ctx, &models.Item{
			OrganizationID: p.OrganizationID,
			CreatedBy:      p.UserID,
			Name:           name,
			Description:    in.Description,
			Value:          in.Value,
		})
		if err != nil {
			return err
		}
		if len(tagIDs) > 0 {
			if err := s.repomanager.Items(tx).ReplaceTags(ctx, item.ID, tagIDs); err != nil {
				return err
			}
		}
		item.TagIDs = tagIDs
		item.Photos = []models.Photo{}
		created = item
		return nil
	})
	if err != nil {
		return nil, passOrInternal(ctx, s.log, "creating item", err)
	}

	logging.FromContext(ctx, s.log).Info(ctx, "item created", "item_id", created.ID, "organization_id", created.OrganizationID)
	return created, nil
}

// Get returns one item of the caller's organization with signed photo URLs.
func (s *ItemService) Get(ctx context.Context, p *auth.Principal, itemID string) (*models.Item, error) {
	if err := auth.Authorize(p, models.RoleOrganization, models.RoleUser); err != nil {
		return nil, err
	}

	item, err := s.find(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckTenant(p, item.OrganizationID); err != nil {
		return nil, err
	}

	items := []models.Item{*item}
	if err := s.attachPhotos(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// List returns one page of the caller's organization inventory.
func (s *ItemService) List(ctx context.Context, p *auth.Principal, q ListItemsQuery) (*models.ItemPage, error) {
	if err := auth.Authorize(p, models.RoleOrganization, models.RoleUser); err != nil {
		return nil, err
	}

	filter, err := itemFilter(p, q)
	if err != nil {
		return nil, err
	}

	page, err := s.repomanager.Items(s.db).List(ctx, filter)
	if err != nil {
		return nil, internalError(ctx, s.log, "listing items", err)
	}
	if err := s.attachPhotos(ctx, page.Items); err != nil {
		return nil, err
	}
	return page, nil
}

// Update applies a partial update to an item the caller created.
func (s *ItemService) Update(ctx context.Context, p *auth.Principal, itemID string, upd models.ItemUpdate) (*models.Item, error) {
	if err := auth.Authorize(p, models.RoleOrganization, models.RoleUser); err != nil {
		return nil, err
	}
	if upd.Empty() {
		return nil, common.ErrInvalidArgument
	}
	if upd.Name != nil {
		name, err := itemName(*upd.Name)
		if err != nil {
			return nil, err
		}
		upd.Name = &name
	}
	if upd.TagIDs != nil {
		ids := uniqueIDs(*upd.TagIDs)
		upd.TagIDs = &ids
	}

	item, err := s.find(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckOwnership(p, item.OrganizationID, item.CreatedBy); err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Items(tx)
		if upd.TagIDs != nil {
			if err := s.checkTags(ctx, tx, item.OrganizationID, *upd.TagIDs); err != nil {
				return err
			}
			if err := repo.ReplaceTags(ctx, itemID, *upd.TagIDs); err != nil {
				return err
			}
		}
		return repo.Update(ctx, itemID, upd)
	})
	if err != nil {
		return nil, passOrInternal(ctx, s.log, "updating item", err, "item_id", itemID)
	}

	logging.FromContext(ctx, s.log).Info(ctx, "item updated", "item_id", itemID)
	return s.Get(ctx, p, itemID)
}

// Delete removes an item the caller created together with its photos.
func (s *ItemService) Delete(ctx context.Context, p *auth.Principal, itemID string) error {
	if err := auth.Authorize(p, models.RoleOrganization, models.RoleUser); err != nil {
		return err
	}

	item, err := s.find(ctx, itemID)
	if err != nil {
		return err
	}
	if err := auth.CheckOwnership(p, item.OrganizationID, item.CreatedBy); err != nil {
		return err
	}

	keys, err := s.repomanager.Photos(s.db).ListStorageKeys(ctx, itemID)
	if err != nil {
		return internalError(ctx, s.log, "listing photo keys", err, "item_id", itemID)
	}
	if err := s.repomanager.Items(s.db).Delete(ctx, itemID); err != nil {
		return passOrInternal(ctx, s.log, "deleting item", err, "item_id", itemID)
	}

	log := logging.FromContext(ctx, s.log)
	for _, key := range keys {
		// best effort, the photo rows are already gone
		if err := s.store.Delete(ctx, key); err != nil {
			log.Warn(ctx, "orphaned photo object", "key", key, "error", err)
		}
	}

	log.Info(ctx, "item deleted", "item_id", itemID, "photos", len(keys))
	return nil
}

// AddPhoto registers a new photo of an item the caller created and returns
// a presigned upload URL for its bytes.
func (s *ItemService) AddPhoto(ctx context.Context, p *auth.Principal, itemID, contentType string) (*PhotoUpload, error) {
	if err := auth.Authorize(p, models.RoleOrganization, models.RoleUser); err != nil {
		return nil, err
	}

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := photoExtensions[contentType]
	if !ok {
		return nil, common.ErrInvalidArgument
	}

	item, err := s.find(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckOwnership(p, item.OrganizationID, item.CreatedBy); err != nil {
		return nil, err
	}

	photoID := uuid.NewString()
	key := "items/" + item.OrganizationID + "/" + item.ID + "/" + photoID + ext

	uploadURL, err := s.store.PresignPut(ctx, key, contentType)
	if err != nil {
		return nil, internalError(ctx, s.log, "presigning upload", err, "item_id", itemID)
	}

	if _, err := s.repomanager.Photos(s.db).Create(ctx, &models.Photo{
		ID:          photoID,
		ItemID:      item.ID,
		StorageKey:  key,
		ContentType: contentType,
	}); err != nil {
		return nil, internalError(ctx, s.log, "saving photo", err, "item_id", itemID)
	}

	logging.FromContext(ctx, s.log).Info(ctx, "photo added", "item_id", itemID, "photo_id", photoID)
	return &PhotoUpload{PhotoID: photoID, UploadURL: uploadURL, ContentType: contentType}, nil
}

// DeletePhoto removes one photo of an item the caller created.
func (s *ItemService) DeletePhoto(ctx context.Context, p *auth.Principal, itemID, photoID string) error {
	if err := auth.Authorize(p, models.RoleOrganization, models.RoleUser); err != nil {
		return err
	}

	item, err := s.find(ctx, itemID)
	if err != nil {
		return err
	}
	if err := auth.CheckOwnership(p, item.OrganizationID, item.CreatedBy); err != nil {
		return err
	}

	photos := s.repomanager.Photos(s.db)
	photo, err := photos.FindByID(ctx, photoID)
	if err != nil {
		return passOrInternal(ctx, s.log, "finding photo", err, "photo_id", photoID)
	}
	if photo.ItemID != item.ID {
		return common.ErrorNotFound
	}

	if err := photos.Delete(ctx, photoID); err != nil {
		return passOrInternal(ctx, s.log, "deleting photo", err, "photo_id", photoID)
	}
	if err := s.store.Delete(ctx, photo.StorageKey); err != nil {
		logging.FromContext(ctx, s.log).Warn(ctx, "orphaned photo object", "key", photo.StorageKey, "error", err)
	}

	logging.FromContext(ctx, s.log).Info(ctx, "photo deleted", "item_id", itemID, "photo_id", photoID)
	return nil
}

func (s *ItemService) find(ctx context.Context, itemID string) (*models.Item, error) {
	item, err := s.repomanager.Items(s.db).FindByID(ctx, itemID)
	if err != nil {
		return nil, passOrInternal(ctx, s.log, "finding item", err, "item_id", itemID)
	}
	return item, nil
}

// checkTags requires every id to be a tag of organizationID.
func (s *ItemService) checkTags(ctx context.Context, db dbx.DBTX, organizationID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := s.repomanager.Tags(db).CountInOrganization(ctx, organizationID, ids)
	if err != nil {
		return err
	}
	if n != len(ids) {
		logging.FromContext(ctx, s.log).Info(ctx, "unknown tags", "requested", len(ids), "found", n)
		return common.ErrInvalidArgument
	}
	return nil
}

// attachPhotos loads the photos of items and gives each one a signed URL.
func (s *ItemService) attachPhotos(ctx context.Context, items []models.Item) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}

	byItem, err := s.repomanager.Photos(s.db).ListByItems(ctx, ids)
	if err != nil {
		return internalError(ctx, s.log, "listing photos", err)
	}

	for i := range items {
		photos := byItem[items[i].ID]
		if photos == nil {
			photos = []models.Photo{}
		}
		for j := range photos {
			u, err := s.resources.URL(ctx, photos[j].StorageKey)
			if err != nil {
				return err
			}
			photos[j].URL = u
		}
		items[i].Photos = photos
	}
	return nil
}

func itemFilter(p *auth.Principal, q ListItemsQuery) (models.ItemFilter, error) {
	f := models.ItemFilter{
		OrganizationID: p.OrganizationID,
		TagIDs:         uniqueIDs(q.TagIDs),
		SearchTerm:     strings.TrimSpace(q.SearchTerm),
		Sort:           q.Sort,
		Page:           q.Page,
		Limit:          q.Limit,
	}

	switch f.Sort {
	case "":
		f.Sort = models.SortNewest
	case models.SortNewest, models.SortOldest, models.SortAZ, models.SortZA:
	default:
		return f, common.ErrInvalidArgument
	}

	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = defaultPageLimit
	}
	if f.Page < 1 || f.Limit < 1 || f.Limit > maxPageLimit {
		return f, common.ErrInvalidArgument
	}

	if q.OnlyOwn {
		f.CreatedBy = p.UserID
	}
	return f, nil
}

func itemName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxItemNameLen {
		return "", common.ErrInvalidArgument
	}
	return name, nil
}

// uniqueIDs returns ids sorted without blanks or duplicates. It never
// returns nil.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
