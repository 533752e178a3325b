package items

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	itemID  = "0b6f7c1e-3d2a-4b8c-9e1f-5a4d3c2b1a00"
	itemID2 = "1c7a8d2f-4e3b-4c9d-8f20-6b5e4d3c2b11"
)

type passthrough struct{}

func (passthrough) ConvertValue(v any) (driver.Value, error) { return v, nil }

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
		sqlmock.ValueConverterOption(passthrough{}),
	)
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

var itemRowColumns = []string{"id", "organization_id", "created_by", "name", "description", "value", "created_at", "updated_at"}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+items\s*\(organization_id,\s*created_by,\s*name,\s*description,\s*value\)`).
		WithArgs("o1", "u1", "Lamp", "", 0.0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(itemID, now, now))

	got, err := repo.Create(context.Background(), &models.Item{OrganizationID: "o1", CreatedBy: "u1", Name: "Lamp"})
	require.NoError(t, err)
	assert.Equal(t, itemID, got.ID)
}

func TestFindByID_WithTags(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM\s+items\s+i\s+WHERE\s+i\.id\s*=\s*\$1`).
		WithArgs(itemID).
		WillReturnRows(sqlmock.NewRows(itemRowColumns).AddRow(itemID, "o1", "u1", "Lamp", "desk", 12.5, now, now))
	mock.ExpectQuery(`FROM\s+item_tags\s+WHERE\s+item_id::text\s*=\s*ANY\(\$1\)`).
		WithArgs([]string{itemID}).
		WillReturnRows(sqlmock.NewRows([]string{"item_id", "tag_id"}).AddRow(itemID, "t1").AddRow(itemID, "t2"))

	got, err := repo.FindByID(context.Background(), itemID)
	require.NoError(t, err)
	assert.Equal(t, 12.5, got.Value)
	assert.Equal(t, []string{"t1", "t2"}, got.TagIDs)
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+items`).
		WithArgs(itemID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), itemID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList_BuildsFilters(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	cols := append(append([]string{}, itemRowColumns...), "count")

	mock.ExpectQuery(`(?s)WHERE\s+i\.organization_id\s*=\s*\$1\s+AND\s+i\.created_by\s*=\s*\$2\s+AND\s+\(i\.name\s+ILIKE\s+\$3\s+OR\s+i\.description\s+ILIKE\s+\$3\)\s+AND\s+EXISTS\s*\(.*ANY\(\$4\)\)\s+ORDER\s+BY\s+lower\(i\.name\)\s+ASC,\s*i\.id\s+LIMIT\s+\$5\s+OFFSET\s+\$6$`).
		WithArgs("o1", "u1", `%50\%%`, []string{"t1"}, 10, 10).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(itemID, "o1", "u1", "A", "", 0.0, now, now, 12).
			AddRow(itemID2, "o1", "u1", "B", "", 1.0, now, now, 12))
	mock.ExpectQuery(`FROM\s+item_tags`).
		WithArgs([]string{itemID, itemID2}).
		WillReturnRows(sqlmock.NewRows([]string{"item_id", "tag_id"}).AddRow(itemID, "t1"))

	page, err := repo.List(context.Background(), models.ItemFilter{
		OrganizationID: "o1",
		CreatedBy:      "u1",
		SearchTerm:     "50%",
		TagIDs:         []string{"t1"},
		Sort:           models.SortAZ,
		Page:           2,
		Limit:          10,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, []string{"t1"}, page.Items[0].TagIDs)
	assert.Equal(t, []string{}, page.Items[1].TagIDs)
}

func TestList_EmptyDefaultsToNewest(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cols := append(append([]string{}, itemRowColumns...), "count")
	mock.ExpectQuery(`ORDER\s+BY\s+i\.created_at\s+DESC`).
		WithArgs("o1", 10, 0).
		WillReturnRows(sqlmock.NewRows(cols))

	page, err := repo.List(context.Background(), models.ItemFilter{OrganizationID: "o1", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_PresentFieldsOnly(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	zero := 0.0
	empty := ""
	mock.ExpectExec(`^UPDATE\s+items\s+SET\s+description\s*=\s*\$1,\s*value\s*=\s*\$2,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$3$`).
		WithArgs("", 0.0, itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), itemID, models.ItemUpdate{Description: &empty, Value: &zero}))
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+items`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	name := "x"
	assert.ErrorIs(t, repo.Update(context.Background(), itemID, models.ItemUpdate{Name: &name}), common.ErrorNotFound)
}

func TestReplaceTags(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+item_tags\s+WHERE\s+item_id\s*=\s*\$1`).
		WithArgs(itemID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+item_tags.*unnest\(\$2::text\[\]\)`).
		WithArgs(itemID, []string{"t1", "t2"}).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.ReplaceTags(context.Background(), itemID, []string{"t1", "t2"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTags_ClearOnly(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+item_tags`).
		WithArgs(itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ReplaceTags(context.Background(), itemID, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+items\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(itemID).
		WillReturnError(errors.New("db down"))

	assert.ErrorContains(t, repo.Delete(context.Background(), itemID), "db down")
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
}
