package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/policysignoff/internal/dbx"
	"github.com/dmitrijs2005/policysignoff/internal/server/migrations"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/policies"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/signoffs"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Policies(db dbx.DBTX) policies.Repository {
	return policies.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Signoffs(db dbx.DBTX) signoffs.Repository {
	return signoffs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
