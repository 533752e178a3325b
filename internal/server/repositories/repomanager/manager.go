package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/items"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/organizations"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/photos"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/tags"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// several repositories inside one dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Organizations(db dbx.DBTX) organizations.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Tags(db dbx.DBTX) tags.Repository
	Items(db dbx.DBTX) items.Repository
	Photos(db dbx.DBTX) photos.Repository
}
