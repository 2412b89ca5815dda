package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/identitystore/internal/dbx"
	"github.com/dmitrijs2005/identitystore/internal/server/repositories/groups"
	"github.com/dmitrijs2005/identitystore/internal/server/repositories/roles"
	"github.com/dmitrijs2005/identitystore/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/identitystore/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a handle, so a service can
// run several of them inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Roles(db dbx.DBTX) roles.Repository
	Tokens(db dbx.DBTX) tokens.Repository
	Groups(db dbx.DBTX) groups.Repository
}
