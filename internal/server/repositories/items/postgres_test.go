package items

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
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func itemColumns() []string {
	return []string{"id", "user_id", "title", "data", "created_at", "updated_at"}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+items\s*\(id,\s*user_id,\s*title,\s*data\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+created_at,\s*updated_at\s*$`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now)
	mock.ExpectQuery(q).
		WithArgs(sqlmock.AnyArg(), "u-1", "Monday plan", `{"content":"text"}`).
		WillReturnRows(rows)

	item := &models.Item{UserID: "u-1", Title: "Monday plan", Data: `{"content":"text"}`}
	got, err := repo.Create(context.Background(), item)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !got.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected item: %+v", got)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+items`).
		WithArgs(sqlmock.AnyArg(), "u-1", "t", "{}").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Item{UserID: "u-1", Title: "t", Data: "{}"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+items\s+SET\s+title\s*=\s*\$3,\s*data\s*=\s*\$4,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+RETURNING\s+created_at,\s*updated_at\s*$`

	created := time.Now().Add(-time.Hour)
	updated := time.Now()
	rows := sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, updated)
	mock.ExpectQuery(q).
		WithArgs("i-1", "u-1", "new title", `{"content":"x"}`).
		WillReturnRows(rows)

	item := &models.Item{ID: "i-1", UserID: "u-1", Title: "new title", Data: `{"content":"x"}`}
	if err := repo.Update(context.Background(), item); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !item.CreatedAt.Equal(created) || !item.UpdatedAt.Equal(updated) {
		t.Fatalf("timestamps not read back: %+v", item)
	}
}

func TestUpdate_WrongOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+items\s+SET`).
		WithArgs("i-1", "u-2", "t", "{}").
		WillReturnError(sql.ErrNoRows)

	item := &models.Item{ID: "i-1", UserID: "u-2", Title: "t", Data: "{}"}
	if err := repo.Update(context.Background(), item); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestGetByIDAndOwner_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*user_id,\s*title,\s*data,\s*created_at,\s*updated_at\s+FROM\s+items\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`

	now := time.Now()
	rows := sqlmock.NewRows(itemColumns()).
		AddRow("i-1", "u-1", "plan", `{"content":"x"}`, now, now)
	mock.ExpectQuery(q).WithArgs("i-1", "u-1").WillReturnRows(rows)

	got, err := repo.GetByIDAndOwner(context.Background(), "i-1", "u-1")
	if err != nil {
		t.Fatalf("GetByIDAndOwner error: %v", err)
	}
	if got.Title != "plan" || got.UserID != "u-1" {
		t.Fatalf("unexpected item: %+v", got)
	}
}

func TestGetByIDAndOwner_WrongOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,`).WithArgs("i-1", "u-2").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByIDAndOwner(context.Background(), "i-1", "u-2")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestListByOwner_OrdersByUpdatedAt(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*user_id,\s*title,\s*data,\s*created_at,\s*updated_at\s+FROM\s+items\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+updated_at\s+DESC\s*$`

	now := time.Now()
	rows := sqlmock.NewRows(itemColumns()).
		AddRow("i-2", "u-1", "newer", "{}", now, now).
		AddRow("i-1", "u-1", "older", "{}", now.Add(-time.Hour), now.Add(-time.Hour))
	mock.ExpectQuery(q).WithArgs("u-1").WillReturnRows(rows)

	got, err := repo.ListByOwner(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "i-2" || got[1].ID != "i-1" {
		t.Fatalf("unexpected items: %+v", got)
	}
}

func TestListByOwner_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,`).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(itemColumns()))

	got, err := repo.ListByOwner(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no items, got %d", len(got))
	}
}

func TestDeleteByIDAndOwner_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+items\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`

	mock.ExpectExec(q).WithArgs("i-1", "u-1").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteByIDAndOwner(context.Background(), "i-1", "u-1"); err != nil {
		t.Fatalf("DeleteByIDAndOwner error: %v", err)
	}
}

func TestDeleteByIDAndOwner_WrongOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+items`).
		WithArgs("i-1", "u-2").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.DeleteByIDAndOwner(context.Background(), "i-1", "u-2"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}
