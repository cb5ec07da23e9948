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

	"github.com/mie-portal/portal-api/internal/models"
)

func newAccountRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "account_id", "email", "password_hash", "firstname", "lastname", "photo", "user_type", "department", "status", "last_login", "created_at", "updated_at"})
}

func TestAccountRepositoryListWithRoleFilter(t *testing.T) {
	db, mock, cleanup := newAccountRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	rows := accountRows().
		AddRow("a1", "2021-00001", "jdc@example.com", "hash", "Juan", "Dela Cruz", "", "Student", "CCS", "Active", nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE 1=1 AND user_type = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("Student").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM accounts WHERE 1=1 AND user_type = $1")).
		WithArgs("Student").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	role := models.RoleStudent
	list, total, err := repo.List(context.Background(), models.AccountFilter{Role: &role})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.RoleStudent, list[0].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newAccountRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	rows := accountRows().
		AddRow("a1", "2021-00001", "jdc@example.com", "hash", "Juan", "Dela Cruz", "", "Student", "CCS", "Active", nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE LOWER(email) = LOWER($1)")).
		WithArgs("JDC@example.com").
		WillReturnRows(rows)

	account, err := repo.FindByEmail(context.Background(), "JDC@example.com")
	require.NoError(t, err)
	assert.Equal(t, "a1", account.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newAccountRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryExistsByEmailOrAccountID(t *testing.T) {
	db, mock, cleanup := newAccountRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM accounts WHERE LOWER(email) = LOWER($1) OR account_id = $2 LIMIT 1")).
		WithArgs("jdc@example.com", "2021-00001").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByEmailOrAccountID(context.Background(), "jdc@example.com", "2021-00001")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM accounts WHERE LOWER(email) = LOWER($1) OR account_id = $2 LIMIT 1")).
		WithArgs("new@example.com", "2021-99999").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = repo.ExistsByEmailOrAccountID(context.Background(), "new@example.com", "2021-99999")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newAccountRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(sqlmock.AnyArg(), "2021-00001", "jdc@example.com", "hash", "Juan", "Dela Cruz", sqlmock.AnyArg(), "Student", "CCS", "Active", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	account := &models.Account{
		AccountID:    "2021-00001",
		Email:        "jdc@example.com",
		PasswordHash: "hash",
		FirstName:    "Juan",
		LastName:     "Dela Cruz",
		Role:         models.RoleStudent,
		Department:   "CCS",
		Status:       models.StatusActive,
	}
	require.NoError(t, repo.Create(context.Background(), account))
	assert.NotEmpty(t, account.ID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM accounts WHERE id = $1")).
		WithArgs(account.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), account.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
