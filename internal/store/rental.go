package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rentalhub/apiserver/types"
)

// RentalRepository handles persistence for rental listings.
type RentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) *RentalRepository {
	return &RentalRepository{db: db}
}

func (r *RentalRepository) List(ctx context.Context) ([]types.Rental, error) {
	const query = `
		SELECT id, name, surface, price, picture, description, owner_id, created_at, updated_at
		FROM rentals
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rentals := make([]types.Rental, 0)
	for rows.Next() {
		var rental types.Rental
		if err := rows.Scan(
			&rental.ID,
			&rental.Name,
			&rental.Surface,
			&rental.Price,
			&rental.Picture,
			&rental.Description,
			&rental.OwnerID,
			&rental.CreatedAt,
			&rental.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rentals = append(rentals, rental)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rentals, nil
}

func (r *RentalRepository) Get(ctx context.Context, id int) (types.Rental, error) {
	const query = `
		SELECT id, name, surface, price, picture, description, owner_id, created_at, updated_at
		FROM rentals
		WHERE id = $1`
	var rental types.Rental
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rental.ID,
		&rental.Name,
		&rental.Surface,
		&rental.Price,
		&rental.Picture,
		&rental.Description,
		&rental.OwnerID,
		&rental.CreatedAt,
		&rental.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Rental{}, ErrNotFound
		}
		return types.Rental{}, err
	}
	return rental, nil
}

func (r *RentalRepository) Create(ctx context.Context, rental types.Rental) (types.Rental, error) {
	now := time.Now()
	rental.CreatedAt = now
	rental.UpdatedAt = now

	const query = `
		INSERT INTO rentals (name, surface, price, picture, description, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		rental.Name,
		rental.Surface,
		rental.Price,
		rental.Picture,
		rental.Description,
		rental.OwnerID,
		rental.CreatedAt,
		rental.UpdatedAt,
	).Scan(&rental.ID); err != nil {
		return types.Rental{}, err
	}
	return rental, nil
}

func (r *RentalRepository) Update(ctx context.Context, rental types.Rental) (types.Rental, error) {
	rental.UpdatedAt = time.Now()

	const query = `
		UPDATE rentals
		SET name = $1,
			surface = $2,
			price = $3,
			description = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		rental.Name,
		rental.Surface,
		rental.Price,
		rental.Description,
		rental.UpdatedAt,
		rental.ID,
	)
	if err != nil {
		return types.Rental{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Rental{}, err
	}
	if affected == 0 {
		return types.Rental{}, ErrNotFound
	}
	return rental, nil
}
