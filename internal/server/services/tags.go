package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/repomanager"
)

const maxTagNameLen = 50

// TagService manages the tags of the caller's organization.
type TagService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewTagService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *TagService {
	return &TagService{db: db, repomanager: m, log: log}
}

func (s *TagService) Create(ctx context.Context, p *auth.Principal, name string) (*models.Tag, error) {
	if err := auth.Authorize(p, models.RoleOrganization); err != nil {
		return nil, err
	}
	name, err := tagName(name)
	if err != nil {
		return nil, err
	}

	tag, err := s.repomanager.Tags(s.db).Create(ctx, &models.Tag{
		OrganizationID: p.OrganizationID,
		Name:           name,
		CreatedBy:      p.UserID,
	})
	if err != nil {
		return nil, internalError(ctx, s.log, "creating tag", err)
	}

	logging.FromContext(ctx, s.log).Info(ctx, "tag created", "tag_id", tag.ID, "organization_id", tag.OrganizationID)
	return tag, nil
}

func (s *TagService) List(ctx context.Context, p *auth.Principal) ([]models.Tag, error) {
	if err := auth.Authorize(p, models.RoleOrganization, models.RoleUser); err != nil {
		return nil, err
	}

	tags, err := s.repomanager.Tags(s.db).ListByOrganization(ctx, p.OrganizationID)
	if err != nil {
		return nil, internalError(ctx, s.log, "listing tags", err)
	}
	return tags, nil
}

// Update renames a tag of the caller's organization.
func (s *TagService) Update(ctx context.Context, p *auth.Principal, tagID, name string) error {
	if err := auth.Authorize(p, models.RoleOrganization); err != nil {
		return err
	}
	name, err := tagName(name)
	if err != nil {
		return err
	}

	repo := s.repomanager.Tags(s.db)
	if err := s.checkTag(ctx, repo.FindByID, p, tagID); err != nil {
		return err
	}
	if err := repo.Rename(ctx, tagID, name); err != nil {
		return passOrInternal(ctx, s.log, "renaming tag", err, "tag_id", tagID)
	}

	logging.FromContext(ctx, s.log).Info(ctx, "tag renamed", "tag_id", tagID)
	return nil
}

// Delete removes a tag of the caller's organization and unlinks it from
// every item.
func (s *TagService) Delete(ctx context.Context, p *auth.Principal, tagID string) error {
	if err := auth.Authorize(p, models.RoleOrganization); err != nil {
		return err
	}

	repo := s.repomanager.Tags(s.db)
	if err := s.checkTag(ctx, repo.FindByID, p, tagID); err != nil {
		return err
	}
	if err := repo.Delete(ctx, tagID); err != nil {
		return passOrInternal(ctx, s.log, "deleting tag", err, "tag_id", tagID)
	}

	logging.FromContext(ctx, s.log).Info(ctx, "tag deleted", "tag_id", tagID)
	return nil
}

// checkTag reports common.ErrInvalidArgument when tagID is not a tag of the
// caller's organization.
func (s *TagService) checkTag(ctx context.Context, find func(context.Context, string) (*models.Tag, error), p *auth.Principal, tagID string) error {
	tag, err := find(ctx, tagID)
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrInvalidArgument
	}
	if err != nil {
		return internalError(ctx, s.log, "finding tag", err, "tag_id", tagID)
	}
	if tag.OrganizationID != p.OrganizationID {
		logging.FromContext(ctx, s.log).Warn(ctx, "tag of another organization", "tag_id", tagID)
		return common.ErrInvalidArgument
	}
	return nil
}

func tagName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxTagNameLen {
		return "", common.ErrInvalidArgument
	}
	return name, nil
}
