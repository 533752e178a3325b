// Package tags provides the PostgreSQL-backed tag repository.
package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	query :=
		`INSERT INTO tags (organization_id, name, created_by)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, tag.OrganizationID, tag.Name, tag.CreatedBy).Scan(&tag.ID, &tag.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tag, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Tag, error) {
	if !dbx.IsUUID(id) {
		return nil, common.ErrorNotFound
	}

	query := `SELECT id, organization_id, name, created_by, created_at FROM tags WHERE id = $1`

	t := &models.Tag{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.OrganizationID, &t.Name, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

func (r *PostgresRepository) ListByOrganization(ctx context.Context, organizationID string) ([]models.Tag, error) {
	query :=
		`SELECT id, organization_id, name, created_by, created_at FROM tags
		 WHERE organization_id = $1
		 ORDER BY name, id
		 `

	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.OrganizationID, &t.Name, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Rename(ctx context.Context, id, name string) error {
	return r.execOne(ctx, `UPDATE tags SET name = $1 WHERE id = $2`, name, id)
}

// Delete also detaches the tag from every item (item_tags cascades).
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM tags WHERE id = $1`, id)
}

func (r *PostgresRepository) CountInOrganization(ctx context.Context, organizationID string, ids []string) (int, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if dbx.IsUUID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}

	query := `SELECT COUNT(DISTINCT id) FROM tags WHERE organization_id = $1 AND id = ANY($2)`

	var n int
	if err := r.db.QueryRowContext(ctx, query, organizationID, valid).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
