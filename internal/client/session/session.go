// Package session persists the policyctl login between invocations in a
// local SQLite file.
package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/policysignoff/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/policysignoff/internal/client/session/migrations"
	"github.com/dmitrijs2005/policysignoff/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const (
	keyServer       = "server"
	keyEmail        = "email"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// Session is what a successful login leaves behind.
type Session struct {
	Server       string
	Email        string
	AccessToken  string
	RefreshToken string
}

// LoggedIn reports whether s carries a refresh token.
func (s Session) LoggedIn() bool {
	return s.RefreshToken != ""
}

type Store struct {
	db *sql.DB
}

// RunMigrations applies the embedded schema to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the session database at dsn.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (s *Store) Load(ctx context.Context) (Session, error) {
	m, err := s.repo(s.db).List(ctx)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Server:       string(m[keyServer]),
		Email:        string(m[keyEmail]),
		AccessToken:  string(m[keyAccessToken]),
		RefreshToken: string(m[keyRefreshToken]),
	}, nil
}

// Save replaces the stored session atomically.
func (s *Store) Save(ctx context.Context, sess Session) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := s.repo(tx)
		if err := r.Clear(ctx); err != nil {
			return err
		}
		for k, v := range map[string]string{
			keyServer:       sess.Server,
			keyEmail:        sess.Email,
			keyAccessToken:  sess.AccessToken,
			keyRefreshToken: sess.RefreshToken,
		} {
			if err := r.Set(ctx, k, []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.repo(s.db).Clear(ctx)
}

// Tokens returns the stored access and refresh tokens.
func (s *Store) Tokens(ctx context.Context) (string, string, error) {
	sess, err := s.Load(ctx)
	if err != nil {
		return "", "", err
	}
	return sess.AccessToken, sess.RefreshToken, nil
}

// SaveTokens stores a rotated token pair, keeping the rest of the session.
func (s *Store) SaveTokens(ctx context.Context, access, refresh string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := s.repo(tx)
		if err := r.Set(ctx, keyAccessToken, []byte(access)); err != nil {
			return err
		}
		return r.Set(ctx, keyRefreshToken, []byte(refresh))
	})
}
