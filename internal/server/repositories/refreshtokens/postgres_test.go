package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/policysignoff/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const createQ = `(?s)^INSERT\s+INTO\s+refresh_tokens\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(createQ).
		WithArgs(int64(1), "tok123", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), 1, "tok123", exp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(createQ).
		WithArgs(int64(1), "tok123", sqlmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), 1, "tok123", time.Now())
	if err == nil || !regexp.MustCompile(`error performing sql request: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

const takeQ = `(?s)^\s*DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s+RETURNING\s+id,\s*user_id,\s*token,\s*expires_at\s*$`

func TestTake_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Now().Add(time.Hour)
	mock.ExpectQuery(takeQ).WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at"}).AddRow(int64(9), int64(2), "tok", exp))

	rt, err := repo.Take(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Take error: %v", err)
	}
	if rt.UserID != 2 || rt.Token != "tok" || !rt.Expires.Equal(exp) {
		t.Fatalf("unexpected token: %+v", rt)
	}
}

func TestTake_SecondRedeemGetsNothing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cols := []string{"id", "user_id", "token", "expires_at"}
	exp := time.Now().Add(time.Hour)
	mock.ExpectQuery(takeQ).WithArgs("tok").WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(9), int64(2), "tok", exp))
	mock.ExpectQuery(takeQ).WithArgs("tok").WillReturnRows(sqlmock.NewRows(cols))

	if _, err := repo.Take(context.Background(), "tok"); err != nil {
		t.Fatalf("first Take error: %v", err)
	}
	if _, err := repo.Take(context.Background(), "tok"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound on the second redeem, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTake_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(takeQ).WithArgs("tok").WillReturnError(errors.New("broken"))

	_, err := repo.Take(context.Background(), "tok")
	if err == nil || !regexp.MustCompile(`db error: .*broken`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDelete_ScopedToUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`
	mock.ExpectExec(q).WithArgs("tok", int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q).WithArgs("tok", int64(7)).WillReturnError(errors.New("x"))

	if err := repo.Delete(context.Background(), 7, "tok"); err != nil {
		t.Fatalf("Delete of absent token must succeed, got %v", err)
	}
	if err := repo.Delete(context.Background(), 7, "tok"); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(`^DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+expires_at\s*<\s*\$1$`).
		WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("DeleteExpired error: %v", err)
	}
	if n != 4 {
		t.Fatalf("want 4, got %d", n)
	}
}
