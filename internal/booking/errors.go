// Package booking implements the seat-inventory reservation engine: the
// one place allowed to move available_seats, and the checkout and
// confirmation flows layered on top of it.
package booking

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the engine.  Handlers translate these into
// HTTP statuses; anything else is an infrastructure failure and surfaces
// as a generic 500.
var (
	// ErrEntityNotFound means the entity reference resolved to nothing.
	ErrEntityNotFound = errors.New("bookable entity not found")

	// ErrBookingNotFound means the ledger entry does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInsufficientCapacity means the conditional seat decrement found
	// fewer seats than requested.  No state was changed.
	ErrInsufficientCapacity = errors.New("not enough seats available")

	// ErrMissingContact means checkout was attempted without a complete
	// name/email/phone triple.
	ErrMissingContact = errors.New("name, email and phone are required")

	// ErrInvalidQuantity means the requested quantity was below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrNotPending means a lifecycle transition was attempted on a
	// booking that already reached a terminal state.
	ErrNotPending = errors.New("booking is not pending")
)

// LimitExceededError reports that a reservation would push the user past
// the entity's per-person limit.  The counts are exposed so the API can
// tell the user exactly where they stand.
type LimitExceededError struct {
	AlreadyBooked int
	Limit         int
	Attempted     int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("booking limit reached: already booked %d, attempted %d, maximum per person is %d",
		e.AlreadyBooked, e.Attempted, e.Limit)
}
