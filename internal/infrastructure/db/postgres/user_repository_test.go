package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickgram/auth-service/internal/core/domain"
)

const (
	insertQuery = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*username,\s*password_hash,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*$`
	selectQuery = `(?s)^SELECT\s+id,\s*email,\s*username,\s*password_hash,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
)

func newRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db), mock
}

func testUser() *domain.User {
	return &domain.User{
		ID:           "8f14e45f-ceea-467f-a0e6-1b1a3c8c9b11",
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "$2a$12$hash",
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestInsert_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	u := testUser()

	mock.ExpectExec(insertQuery).
		WithArgs(u.ID, u.Email, u.Username, u.PasswordHash, u.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	u := testUser()

	mock.ExpectExec(insertQuery).
		WithArgs(u.ID, u.Email, u.Username, u.PasswordHash, u.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Insert(context.Background(), u)
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestInsert_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	u := testUser()

	mock.ExpectExec(insertQuery).
		WithArgs(u.ID, u.Email, u.Username, u.PasswordHash, u.CreatedAt).
		WillReturnError(errors.New("db down"))

	err := repo.Insert(context.Background(), u)
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
	assert.NotErrorIs(t, err, domain.ErrUserExists)
}

func TestFindByEmail_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	u := testUser()

	rows := sqlmock.NewRows([]string{"id", "email", "username", "password_hash", "created_at"}).
		AddRow(u.ID, u.Email, u.Username, u.PasswordHash, u.CreatedAt)
	mock.ExpectQuery(selectQuery).WithArgs(u.Email).WillReturnRows(rows)

	got, err := repo.FindByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Username, got.Username)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectQuery).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestFindByEmail_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectQuery).WithArgs("alice@example.com").WillReturnError(errors.New("db err"))

	_, err := repo.FindByEmail(context.Background(), "alice@example.com")
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db err`, err.Error())
}

func TestMigrate_UsesEmbeddedMigrations(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, Migrate(context.Background(), db))
	assert.Equal(t, "migrations", gotDir)

	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}
