// Package repository is the MySQL implementation of the booking store.
// Table layout:
//
//	events / tours / dining_items: one table per bookable kind, all with
//	    the same capacity columns (total_seats, available_seats,
//	    per_person_limit, base_price_cents).
//	bookings: the ledger, one row per reservation attempt.
package repository

import (
	"context"
	"database/sql"

	"github.com/rihlago/tourism-booking/internal/booking"
	"github.com/rihlago/tourism-booking/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the same statement
// helpers serve transactional and plain reads.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store provides booking.Store over MySQL.
type Store struct {
	db *sql.DB
}

// NewStore binds a Store to the given database handle.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// WithTx runs fn inside one transaction and commits only when fn returns
// nil.  Any error from fn or from commit leaves the database untouched.
func (s *Store) WithTx(ctx context.Context, fn func(tx booking.StoreTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&storeTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// BookingByID loads one ledger entry outside any transaction.
func (s *Store) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return scanBooking(s.db.QueryRowContext(ctx, selectBooking+` WHERE id = ?`, id))
}

// ListBookings returns ledger entries matching the filter, newest first.
func (s *Store) ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	return listBookings(ctx, s.db, f)
}

// EntityByRef loads one bookable entity outside any transaction.
func (s *Store) EntityByRef(ctx context.Context, ref model.EntityRef) (*model.BookableEntity, error) {
	return entityByRef(ctx, s.db, ref)
}

// ListEntities returns every entity of one kind, ordered by id.  Callers
// derive booked_seats from the capacity columns for display.
func (s *Store) ListEntities(ctx context.Context, kind model.EntityKind) ([]model.BookableEntity, error) {
	return listEntities(ctx, s.db, kind)
}

// storeTx adapts *sql.Tx to booking.StoreTx.
type storeTx struct {
	tx *sql.Tx
}

// EntityByRef takes the entity's row lock for the rest of the
// transaction.  Reservations against the same entity therefore run one
// at a time, which keeps the per-user quantity sum accurate.
func (t *storeTx) EntityByRef(ctx context.Context, ref model.EntityRef) (*model.BookableEntity, error) {
	return entityByRefForUpdate(ctx, t.tx, ref)
}

func (t *storeTx) ResolveFeatured(ctx context.Context, featuredID uint64) (uint64, error) {
	var id uint64
	err := t.tx.QueryRowContext(ctx, `SELECT id FROM dining_items WHERE id = ?`, featuredID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, booking.ErrEntityNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (t *storeTx) SumQuantityForUser(ctx context.Context, ref model.EntityRef, userID uint64) (int, error) {
	const q = `SELECT COALESCE(SUM(qty), 0)
	           FROM bookings
	           WHERE user_id = ? AND entity_kind = ? AND entity_id = ? AND payment_status <> 'failed'`
	var total int
	if err := t.tx.QueryRowContext(ctx, q, userID, ref.Kind, ref.ID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// DecrementSeats is the conditional write that keeps concurrent
// reservations from overselling: the guard lives in the same UPDATE as
// the subtraction, so only one of two racing requests for the last seats
// can see rows affected.
func (t *storeTx) DecrementSeats(ctx context.Context, ref model.EntityRef, qty int) (bool, error) {
	table, err := entityTable(ref.Kind)
	if err != nil {
		return false, err
	}
	res, err := t.tx.ExecContext(ctx,
		`UPDATE `+table+` SET available_seats = available_seats - ?, updated_at = NOW() WHERE id = ? AND available_seats >= ?`,
		qty, ref.ID, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (t *storeTx) RestoreSeats(ctx context.Context, ref model.EntityRef, qty int) error {
	table, err := entityTable(ref.Kind)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx,
		`UPDATE `+table+` SET available_seats = LEAST(total_seats, available_seats + ?), updated_at = NOW() WHERE id = ?`,
		qty, ref.ID)
	return err
}

func (t *storeTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
	    (entity_kind, entity_id, featured_id, user_id, user_name, user_email, user_phone,
	     tier, qty, subtotal_cents, service_fee_cents, tax_cents, total_cents,
	     payment_status, payment_ref)
	    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q,
		b.Entity.Kind, b.Entity.ID, b.FeaturedID, b.UserID, b.UserName, b.UserEmail, b.UserPhone,
		b.Tier, b.Qty, b.SubtotalCents, b.ServiceFeeCents, b.TaxCents, b.TotalCents,
		b.PaymentStatus, b.PaymentRef)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Read the row back so DB-side timestamp defaults land on the struct.
	saved, err := scanBooking(t.tx.QueryRowContext(ctx, selectBooking+` WHERE id = ?`, b.ID))
	if err != nil {
		return err
	}
	*b = *saved
	return nil
}

func (t *storeTx) BookingForUpdate(ctx context.Context, id uint64) (*model.Booking, error) {
	return scanBooking(t.tx.QueryRowContext(ctx, selectBooking+` WHERE id = ? FOR UPDATE`, id))
}

func (t *storeTx) UpdateBookingStatus(ctx context.Context, id uint64, status model.PaymentStatus) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE bookings SET payment_status = ?, updated_at = NOW() WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}
