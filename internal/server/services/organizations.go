package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/repomanager"
)

const maxOrganizationNameLen = 100

// OrganizationService manages tenants. Only the super-admin may use it.
type OrganizationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewOrganizationService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *OrganizationService {
	return &OrganizationService{db: db, repomanager: m, log: log}
}

func (s *OrganizationService) Create(ctx context.Context, p *auth.Principal, name string) (*models.Organization, error) {
	if err := auth.Authorize(p, models.RoleSuperAdmin); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxOrganizationNameLen {
		return nil, common.ErrInvalidArgument
	}

	org, err := s.repomanager.Organizations(s.db).Create(ctx, &models.Organization{Name: name})
	if err != nil {
		return nil, internalError(ctx, s.log, "creating organization", err)
	}

	logging.FromContext(ctx, s.log).Info(ctx, "organization created", "organization_id", org.ID)
	return org, nil
}

func (s *OrganizationService) List(ctx context.Context, p *auth.Principal) ([]models.Organization, error) {
	if err := auth.Authorize(p, models.RoleSuperAdmin); err != nil {
		return nil, err
	}

	orgs, err := s.repomanager.Organizations(s.db).List(ctx)
	if err != nil {
		return nil, internalError(ctx, s.log, "listing organizations", err)
	}
	return orgs, nil
}
