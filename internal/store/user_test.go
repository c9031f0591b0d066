package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/rentalhub/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(1, "Alice", "a@x.com", "$2a$10$hash", now, now))

	repo := NewUserRepository(db)
	user, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE email = \$1`).
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	repo := NewUserRepository(db)
	_, err = repo.GetByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "users_email_key"})

	repo := NewUserRepository(db)
	_, err = repo.Create(context.Background(), types.User{
		Name:         "Alice",
		Email:        "a@x.com",
		PasswordHash: "$2a$10$hash",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepository_CreateAssignsIDAndTimestamps(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	repo := NewUserRepository(db)
	user, err := repo.Create(context.Background(), types.User{
		Name:         "Alice",
		Email:        "a@x.com",
		PasswordHash: "$2a$10$hash",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}
