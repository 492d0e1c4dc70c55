package booking

import (
	"context"

	"github.com/rihlago/tourism-booking/internal/model"
)

// Store is the persistence surface the engine runs on.  Implementations
// must make WithTx failure-atomic: if fn returns an error, every mutation
// performed through the StoreTx is rolled back.  The MySQL implementation
// lives in internal/repository; tests supply an in-memory double with the
// same commit/rollback semantics.
type Store interface {
	// WithTx runs fn inside one transaction and commits only when fn
	// returns nil.
	WithTx(ctx context.Context, fn func(tx StoreTx) error) error

	BookingByID(ctx context.Context, id uint64) (*model.Booking, error)
	ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, error)
	EntityByRef(ctx context.Context, ref model.EntityRef) (*model.BookableEntity, error)
}

// StoreTx is the transactional view used inside WithTx.  AvailableSeats
// must never be written except through DecrementSeats and RestoreSeats.
type StoreTx interface {
	// EntityByRef loads the entity and must lock it for the rest of the
	// transaction, so concurrent reservations against the same entity
	// serialize before SumQuantityForUser runs.
	EntityByRef(ctx context.Context, ref model.EntityRef) (*model.BookableEntity, error)

	// ResolveFeatured maps a featured-item id to the dining item it
	// promotes.  Returns ErrEntityNotFound when the id is unknown.
	ResolveFeatured(ctx context.Context, featuredID uint64) (uint64, error)

	// SumQuantityForUser totals the user's non-failed booked quantity
	// against one entity.
	SumQuantityForUser(ctx context.Context, ref model.EntityRef, userID uint64) (int, error)

	// DecrementSeats subtracts qty from available_seats only if at least
	// qty seats remain at the moment of the write.  It reports whether
	// the decrement happened.
	DecrementSeats(ctx context.Context, ref model.EntityRef, qty int) (bool, error)

	// RestoreSeats returns qty seats to the pool, capped at total_seats.
	RestoreSeats(ctx context.Context, ref model.EntityRef, qty int) error

	// InsertBooking persists a new ledger entry and fills in its ID and
	// timestamps.
	InsertBooking(ctx context.Context, b *model.Booking) error

	// BookingForUpdate loads a ledger entry with a write lock.
	BookingForUpdate(ctx context.Context, id uint64) (*model.Booking, error)

	UpdateBookingStatus(ctx context.Context, id uint64, status model.PaymentStatus) error
}

// PaymentProvider creates an external payment session for a committed
// reservation and returns the URL the customer is redirected to.
type PaymentProvider interface {
	CreateSession(ctx context.Context, in PaymentSessionInput) (string, error)
}

// PaymentSessionInput keys a payment session to one booking and its total.
type PaymentSessionInput struct {
	BookingID     uint64
	PaymentRef    string
	ProductName   string
	Tier          model.Tier
	TotalCents    int64
	CustomerEmail string
}

// EventPublisher receives lifecycle notifications after the corresponding
// transaction has committed.  Implementations must not fail the request
// path; delivery problems are theirs to log.
type EventPublisher interface {
	BookingCreated(ctx context.Context, b model.Booking)
	BookingPaid(ctx context.Context, b model.Booking)
}
