package repository

import (
	"context"
	"database/sql"

	"github.com/rihlago/tourism-booking/internal/booking"
	"github.com/rihlago/tourism-booking/internal/model"
)

const selectBooking = `SELECT id, entity_kind, entity_id, featured_id, user_id,
	user_name, user_email, user_phone, tier, qty,
	subtotal_cents, service_fee_cents, tax_cents, total_cents,
	payment_status, payment_ref, created_at, updated_at
	FROM bookings`

func scanBooking(row rowScanner) (*model.Booking, error) {
	var b model.Booking
	var featured sql.NullInt64
	err := row.Scan(
		&b.ID, &b.Entity.Kind, &b.Entity.ID, &featured, &b.UserID,
		&b.UserName, &b.UserEmail, &b.UserPhone, &b.Tier, &b.Qty,
		&b.SubtotalCents, &b.ServiceFeeCents, &b.TaxCents, &b.TotalCents,
		&b.PaymentStatus, &b.PaymentRef, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, booking.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if featured.Valid {
		fid := uint64(featured.Int64)
		b.FeaturedID = &fid
	}
	return &b, nil
}

func listBookings(ctx context.Context, q querier, f model.BookingFilter) ([]model.Booking, error) {
	query := selectBooking + ` WHERE 1=1`
	args := make([]any, 0, 3)
	if f.UserID != 0 {
		query += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	if f.Entity != nil {
		query += ` AND entity_kind = ? AND entity_id = ?`
		args = append(args, f.Entity.Kind, f.Entity.ID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
