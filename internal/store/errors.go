package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

const pqUniqueViolation = "23505"

// mapInsertError translates a Postgres unique-constraint violation into
// ErrDuplicate. Relying on the constraint rather than a prior read keeps
// concurrent inserts race-free.
func mapInsertError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrDuplicate
	}
	return err
}
