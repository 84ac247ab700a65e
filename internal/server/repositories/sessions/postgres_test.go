package sessions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/anypart/marketplace/internal/common"
	"github.com/anypart/marketplace/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+sessions\s*\(token,\s*kind,\s*principal_id,\s*expires_at\)\s+VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*$`

	exp := time.Now().Add(7 * 24 * time.Hour)
	mock.ExpectExec(q).
		WithArgs("tok-1", models.PrincipalBuyer, "b-1", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Session{
		Token: "tok-1", Kind: models.PrincipalBuyer, PrincipalID: "b-1", ExpiresAt: exp,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestFindActive_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+token,\s*kind,\s*principal_id,\s*expires_at,\s*created_at\s+FROM\s+sessions\s+WHERE\s+token\s*=\s*\$1\s+AND\s+expires_at\s*>\s*\$2\s*$`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"token", "kind", "principal_id", "expires_at", "created_at"}).
		AddRow("tok-1", models.PrincipalBuyer, "b-1", now.Add(time.Hour), now.Add(-time.Hour))
	mock.ExpectQuery(q).
		WithArgs("tok-1", now).
		WillReturnRows(rows)

	session, err := repo.FindActive(context.Background(), "tok-1", now)
	if err != nil {
		t.Fatalf("FindActive error: %v", err)
	}
	if session.PrincipalID != "b-1" || session.Kind != models.PrincipalBuyer {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestFindActive_ExpiredOrAbsent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	// An expired row is filtered by the WHERE clause, so it surfaces the
	// same way an absent one does.
	mock.ExpectQuery(`SELECT`).
		WithArgs("tok-gone", sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActive(context.Background(), "tok-gone", time.Now())
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)DELETE\s+FROM\s+sessions\s+WHERE\s+token\s*=\s*\$1`).
		WithArgs("tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "tok-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(`(?s)DELETE\s+FROM\s+sessions\s+WHERE\s+expires_at\s*<=\s*\$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("DeleteExpired error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 deleted, got %d", n)
	}
}
