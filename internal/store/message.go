package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rentalhub/apiserver/types"
)

// MessageRepository handles persistence for rental messages.
type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message types.Message) (types.Message, error) {
	now := time.Now()
	message.CreatedAt = now
	message.UpdatedAt = now

	const query = `
		INSERT INTO messages (message, user_id, rental_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		message.Message,
		message.UserID,
		message.RentalID,
		message.CreatedAt,
		message.UpdatedAt,
	).Scan(&message.ID); err != nil {
		return types.Message{}, err
	}
	return message, nil
}

func (r *MessageRepository) ListByRental(ctx context.Context, rentalID int) ([]types.Message, error) {
	const query = `
		SELECT id, message, user_id, rental_id, created_at, updated_at
		FROM messages
		WHERE rental_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]types.Message, 0)
	for rows.Next() {
		var message types.Message
		if err := rows.Scan(
			&message.ID,
			&message.Message,
			&message.UserID,
			&message.RentalID,
			&message.CreatedAt,
			&message.UpdatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}
