// Package photos provides the PostgreSQL-backed item photo repository.
package photos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

// PostgresRepository implements photo storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Photo) (*models.Photo, error) {
	query := `
		INSERT INTO item_photos (id, item_id, storage_key, content_type)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	if err := r.db.QueryRowContext(ctx, query, p.ID, p.ItemID, p.StorageKey, p.ContentType).Scan(&p.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Photo, error) {
	if !dbx.IsUUID(id) {
		return nil, common.ErrorNotFound
	}

	query := `SELECT id, item_id, storage_key, content_type, created_at FROM item_photos WHERE id = $1`

	p := &models.Photo{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.ItemID, &p.StorageKey, &p.ContentType, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListByItems(ctx context.Context, itemIDs []string) (map[string][]models.Photo, error) {
	result := make(map[string][]models.Photo, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, item_id, storage_key, content_type, created_at FROM item_photos
		WHERE item_id::text = ANY($1)
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.ItemID, &p.StorageKey, &p.ContentType, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result[p.ItemID] = append(result[p.ItemID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListStorageKeys(ctx context.Context, itemID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT storage_key FROM item_photos WHERE item_id = $1`, itemID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return keys, nil
}

// Delete removes exactly one photo row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM item_photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
