package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/akarpov/shortly/internal/database"
)

var userColumns = []string{"id", "username", "password_hash", "token", "created_at"}

func setupUserRepository(t testing.TB) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}

	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewUserRepository(db)

	t.Cleanup(func() {
		mockDB.Close()
		db.Close()
	})

	return repo, mock
}

func TestUserRepository_Create(t *testing.T) {
	t.Run("username exists", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("alice", "hash1", "token1").
			WillReturnError(&pgconn.PgError{Code: uniqueViolationErrCode})

		user, err := repo.Create(context.TODO(), "alice", "hash1", "token1")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrUsernameExists)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("alice", "hash1", "token1").
			WillReturnError(errUnknown)

		user, err := repo.Create(context.TODO(), "alice", "hash1", "token1")

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		rows := sqlmock.NewRows(userColumns).
			AddRow(1, "alice", "hash1", "token1", time.Time{})

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("alice", "hash1", "token1").
			WillReturnRows(rows)

		user, err := repo.Create(context.TODO(), "alice", "hash1", "token1")

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "token1", user.Token)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByUsername(t *testing.T) {
	t.Run("user not found", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		mock.ExpectQuery(`SELECT \* FROM users`).
			WithArgs("bob").
			WillReturnRows(sqlmock.NewRows(userColumns))

		user, err := repo.GetByUsername(context.TODO(), "bob")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrUserNotFound)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		rows := sqlmock.NewRows(userColumns).
			AddRow(1, "alice", "hash1", "token1", time.Time{})

		mock.ExpectQuery(`SELECT \* FROM users`).
			WithArgs("alice").
			WillReturnRows(rows)

		user, err := repo.GetByUsername(context.TODO(), "alice")

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "hash1", user.PasswordHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByToken(t *testing.T) {
	t.Run("token not found", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		mock.ExpectQuery(`SELECT \* FROM users`).
			WithArgs("bad-token").
			WillReturnRows(sqlmock.NewRows(userColumns))

		user, err := repo.GetByToken(context.TODO(), "bad-token")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrTokenNotFound)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		rows := sqlmock.NewRows(userColumns).
			AddRow(1, "alice", "hash1", "token1", time.Time{})

		mock.ExpectQuery(`SELECT \* FROM users`).
			WithArgs("token1").
			WillReturnRows(rows)

		user, err := repo.GetByToken(context.TODO(), "token1")

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, int64(1), user.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
