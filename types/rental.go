package types

import "time"

// Rental represents a rental listing.
type Rental struct {
	ID int `json:"id" db:"id"`

	// Name is the listing title.
	Name string `json:"name" db:"name"`

	// Surface is the floor area in square meters.
	Surface int `json:"surface" db:"surface"`

	// Price is the rent per month.
	Price float64 `json:"price" db:"price"`

	// Picture is the public URL of the listing picture, empty when none
	// was uploaded.
	Picture string `json:"picture" db:"picture"`

	Description string `json:"description" db:"description"`

	// OwnerID references the user who created the listing.
	OwnerID int `json:"owner_id" db:"owner_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
