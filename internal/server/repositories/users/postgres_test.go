package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dkravetz/sixtyfix/internal/common"
	"github.com/dkravetz/sixtyfix/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userColumns() []string {
	return []string{"id", "username", "email", "password_hash", "is_verified", "created_at"}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*email,\s*password_hash,\s*is_verified\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at\s*$`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u-1", now)
	mock.ExpectQuery(q).
		WithArgs("alice", "alice@example.com", "hash", false).
		WillReturnRows(rows)

	u := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "u-1" || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreate_DuplicateUsername(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("alice", "alice@example.com", "hash", false).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := repo.Create(context.Background(), &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("expected ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("alice", "alice@example.com", "hash", false).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByLogin_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*username,\s*email,\s*password_hash,\s*is_verified,\s*created_at\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s+OR\s+email\s*=\s*\$1\s*$`

	rows := sqlmock.NewRows(userColumns()).
		AddRow("u-1", "alice", "alice@example.com", "hash", true, time.Now())
	mock.ExpectQuery(q).WithArgs("alice").WillReturnRows(rows)

	got, err := repo.GetByLogin(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByLogin error: %v", err)
	}
	if got.ID != "u-1" || got.Email != "alice@example.com" || !got.IsVerified {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByLogin_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByLogin(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*username,\s*email,\s*password_hash,\s*is_verified,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`

	rows := sqlmock.NewRows(userColumns()).
		AddRow("u-1", "alice", "alice@example.com", "hash", false, time.Now())
	mock.ExpectQuery(q).WithArgs("u-1").WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,`).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestSetVerified_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+is_verified\s*=\s*true\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetVerified(context.Background(), "u-1"); err != nil {
		t.Fatalf("SetVerified error: %v", err)
	}
}

func TestSetVerified_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+users\s+SET\s+is_verified`).
		WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetVerified(context.Background(), "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestUpdatePassword_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).WithArgs("u-1", "newhash").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdatePassword(context.Background(), "u-1", "newhash"); err != nil {
		t.Fatalf("UpdatePassword error: %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "u-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+users`).
		WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}
