package types

import "time"

// Message is a note sent by a user to the owner of a rental listing.
type Message struct {
	ID int `json:"id" db:"id"`

	Message string `json:"message" db:"message"`

	// UserID is the sender, always the authenticated user.
	UserID int `json:"user_id" db:"user_id"`

	// RentalID is the listing the message is about.
	RentalID int `json:"rental_id" db:"rental_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
