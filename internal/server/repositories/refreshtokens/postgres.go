package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

// PostgresRepository keeps refresh records in the refresh_tokens table over
// dbx.DBTX (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Find(ctx context.Context, lookupKey string) (*models.RefreshToken, error) {
	query := `
		SELECT user_id, lookup_key, secret_hash, expires_at, created_at
		FROM refresh_tokens
		WHERE lookup_key = $1
	`
	t := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, lookupKey).Scan(&t.UserID, &t.LookupKey, &t.SecretHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Save(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (user_id, lookup_key, secret_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET lookup_key = EXCLUDED.lookup_key,
		    secret_hash = EXCLUDED.secret_hash,
		    expires_at = EXCLUDED.expires_at,
		    created_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, token.UserID, token.LookupKey, token.SecretHash, token.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Rotate is a single conditional UPDATE; row locking in PostgreSQL makes the
// second of two racing updates see the new lookup key and match nothing.
func (r *PostgresRepository) Rotate(ctx context.Context, expectedLookupKey string, next *models.RefreshToken) error {
	query := `
		UPDATE refresh_tokens
		SET lookup_key = $1, secret_hash = $2, expires_at = $3, created_at = now()
		WHERE user_id = $4 AND lookup_key = $5
	`
	res, err := r.db.ExecContext(ctx, query, next.LookupKey, next.SecretHash, next.ExpiresAt, next.UserID, expectedLookupKey)
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
