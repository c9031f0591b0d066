package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rentalhub/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rentalColumns = []string{
	"id", "name", "surface", "price", "picture", "description",
	"owner_id", "created_at", "updated_at",
}

func TestRentalRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM rentals\s+ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(rentalColumns).
			AddRow(1, "Loft", 42, 980.0, "http://cdn/a.jpg", "Bright loft", 7, now, now).
			AddRow(2, "Studio", 18, 450.0, "", "Small studio", 7, now, now))

	repo := NewRentalRepository(db)
	rentals, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rentals, 2)
	assert.Equal(t, "Loft", rentals[0].Name)
	assert.Equal(t, 980.0, rentals[0].Price)
	assert.Empty(t, rentals[1].Picture)
}

func TestRentalRepository_ListEmpty(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM rentals`).
		WillReturnRows(sqlmock.NewRows(rentalColumns))

	repo := NewRentalRepository(db)
	rentals, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rentals)
	assert.Empty(t, rentals)
}

func TestRentalRepository_GetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM rentals\s+WHERE id = \$1`).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(rentalColumns))

	repo := NewRentalRepository(db)
	_, err = repo.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRentalRepository_UpdateMissing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE rentals`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewRentalRepository(db)
	_, err = repo.Update(context.Background(), types.Rental{ID: 99, Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}
