// Package repomanager hands out repositories bound to a connection or a
// transaction and runs schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/policysignoff/internal/dbx"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/policies"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/signoffs"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Policies(db dbx.DBTX) policies.Repository
	Signoffs(db dbx.DBTX) signoffs.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
