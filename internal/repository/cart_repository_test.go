package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martialcamp/enrollment-api/internal/models"
)

func newCartRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func cartRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "student_email", "class_id", "class_name", "picture", "price", "created_at"})
}

func TestCartRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCartRepoMock(t)
	defer cleanup()
	repo := NewCartRepository(db)

	mock.ExpectExec("INSERT INTO cart_items").
		WithArgs(sqlmock.AnyArg(), "a@example.com", "c1", "Karate", "", 100.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	item := &models.CartItem{StudentEmail: "a@example.com", ClassID: "c1", ClassName: "Karate", Price: 100}
	require.NoError(t, repo.Create(context.Background(), item))
	assert.NotEmpty(t, item.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newCartRepoMock(t)
	defer cleanup()
	repo := NewCartRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_email, class_id, class_name, picture, price, created_at FROM cart_items WHERE student_email = $1 ORDER BY created_at ASC")).
		WithArgs("a@example.com").
		WillReturnRows(cartRows().
			AddRow("s1", "a@example.com", "c1", "Karate", "", 100.0, time.Now()))

	items, err := repo.ListByStudent(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "c1", items[0].ClassID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newCartRepoMock(t)
	defer cleanup()
	repo := NewCartRepository(db)

	mock.ExpectQuery("SELECT id, student_email").
		WithArgs("missing").
		WillReturnRows(cartRows())

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCartRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newCartRepoMock(t)
	defer cleanup()
	repo := NewCartRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart_items WHERE id = $1")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Delete(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
