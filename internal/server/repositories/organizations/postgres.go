// Package organizations provides the PostgreSQL-backed organization repository.
package organizations

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, org *models.Organization) (*models.Organization, error) {
	query :=
		`INSERT INTO organizations (name)
		 VALUES ($1)
		 RETURNING id, created_at
		 `

	if err := r.db.QueryRowContext(ctx, query, org.Name).Scan(&org.ID, &org.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return org, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Organization, error) {
	query := `SELECT id, name, created_at FROM organizations ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Organization{}
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Exists treats a malformed id (not a UUID) as absent.
func (r *PostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	if !dbx.IsUUID(id) {
		return false, nil
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM organizations WHERE id = $1)`
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}
