package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/policysignoff/internal/server/migrations"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/policies"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/signoffs"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)
	m := NewPostgresRepositoryManager()

	if _, ok := m.Users(db).(*users.PostgresRepository); !ok {
		t.Fatal("Users() wrong type")
	}
	if _, ok := m.Policies(db).(*policies.PostgresRepository); !ok {
		t.Fatal("Policies() wrong type")
	}
	if _, ok := m.Signoffs(db).(*signoffs.PostgresRepository); !ok {
		t.Fatal("Signoffs() wrong type")
	}
	if _, ok := m.RefreshTokens(db).(*refreshtokens.PostgresRepository); !ok {
		t.Fatal("RefreshTokens() wrong type")
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	if err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	if err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestMigrations_Embedded(t *testing.T) {
	for _, name := range []string{
		"00001_create_users.sql",
		"00002_create_policies.sql",
		"00003_create_signoffs.sql",
		"00004_create_refresh_tokens.sql",
	} {
		if _, err := migrations.Migrations.Open(name); err != nil {
			t.Fatalf("missing migration %s: %v", name, err)
		}
	}
}
