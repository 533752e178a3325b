// Package items provides the PostgreSQL-backed item repository.
package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const itemColumns = `i.id, i.organization_id, i.created_by, i.name, i.description, i.value, i.created_at, i.updated_at`

func scanItem(row interface{ Scan(...any) error }, extra ...any) (models.Item, error) {
	var it models.Item
	dest := append([]any{&it.ID, &it.OrganizationID, &it.CreatedBy, &it.Name, &it.Description, &it.Value, &it.CreatedAt, &it.UpdatedAt}, extra...)
	err := row.Scan(dest...)
	return it, err
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	query :=
		`INSERT INTO items (organization_id, created_by, name, description, value)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		item.OrganizationID, item.CreatedBy, item.Name, item.Description, item.Value).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Item, error) {
	if !dbx.IsUUID(id) {
		return nil, common.ErrorNotFound
	}

	it, err := scanItem(r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items i WHERE i.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	tags, err := r.tagsOf(ctx, []string{it.ID})
	if err != nil {
		return nil, err
	}
	it.TagIDs = tags[it.ID]
	if it.TagIDs == nil {
		it.TagIDs = []string{}
	}

	return &it, nil
}

var orderBy = map[models.ItemSort]string{
	models.SortNewest: "i.created_at DESC, i.id",
	models.SortOldest: "i.created_at ASC, i.id",
	models.SortAZ:     "lower(i.name) ASC, i.id",
	models.SortZA:     "lower(i.name) DESC, i.id",
}

func (r *PostgresRepository) List(ctx context.Context, f models.ItemFilter) (*models.ItemPage, error) {
	args := []any{f.OrganizationID}
	where := []string{"i.organization_id = $1"}

	if f.CreatedBy != "" {
		args = append(args, f.CreatedBy)
		where = append(where, fmt.Sprintf("i.created_by = $%d", len(args)))
	}
	if f.SearchTerm != "" {
		args = append(args, "%"+escapeLike(f.SearchTerm)+"%")
		where = append(where, fmt.Sprintf("(i.name ILIKE $%[1]d OR i.description ILIKE $%[1]d)", len(args)))
	}
	if len(f.TagIDs) > 0 {
		args = append(args, f.TagIDs)
		where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM item_tags it WHERE it.item_id = i.id AND it.tag_id::text = ANY($%d))", len(args)))
	}

	order, ok := orderBy[f.Sort]
	if !ok {
		order = orderBy[models.SortNewest]
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	query := fmt.Sprintf(
		`SELECT %s, COUNT(*) OVER () FROM items i WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		itemColumns, strings.Join(where, " AND "), order, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	page := &models.ItemPage{Items: []models.Item{}, Page: f.Page, Limit: f.Limit}
	var ids []string
	for rows.Next() {
		var total int
		it, err := scanItem(rows, &total)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		page.Total = total
		page.Items = append(page.Items, it)
		ids = append(ids, it.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if len(ids) == 0 {
		return page, nil
	}

	tags, err := r.tagsOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range page.Items {
		page.Items[i].TagIDs = tags[page.Items[i].ID]
		if page.Items[i].TagIDs == nil {
			page.Items[i].TagIDs = []string{}
		}
	}

	return page, nil
}

func (r *PostgresRepository) tagsOf(ctx context.Context, itemIDs []string) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT item_id, tag_id FROM item_tags WHERE item_id::text = ANY($1) ORDER BY item_id, tag_id`, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]string, len(itemIDs))
	for rows.Next() {
		var itemID, tagID string
		if err := rows.Scan(&itemID, &tagID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result[itemID] = append(result[itemID], tagID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, upd models.ItemUpdate) error {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Value != nil {
		add("value", *upd.Value)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE items SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	return r.execOne(ctx, query, args...)
}

func (r *PostgresRepository) ReplaceTags(ctx context.Context, itemID string, tagIDs []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM item_tags WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO item_tags (item_id, tag_id)
		 SELECT $1, t::uuid FROM unnest($2::text[]) AS t
		 ON CONFLICT DO NOTHING`, itemID, tagIDs)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// Delete removes the item; tag links and photo rows cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM items WHERE id = $1`, id)
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

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
