package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rihlago/tourism-booking/internal/booking"
	"github.com/rihlago/tourism-booking/internal/model"
)

// entityTable maps a kind to its table.  Table names come from this fixed
// map only; they are never interpolated from request input.
func entityTable(kind model.EntityKind) (string, error) {
	switch kind {
	case model.KindEvent:
		return "events", nil
	case model.KindTour:
		return "tours", nil
	case model.KindDining:
		return "dining_items", nil
	}
	return "", fmt.Errorf("unknown entity kind %q", kind)
}

const entityColumns = `id, title, base_price_cents, total_seats, available_seats, per_person_limit, created_at, updated_at`

func entityByRef(ctx context.Context, q querier, ref model.EntityRef) (*model.BookableEntity, error) {
	return selectEntity(ctx, q, ref, ``)
}

// entityByRefForUpdate locks the entity row for the rest of the
// transaction.  Reservations take this lock before summing the user's
// booked quantity, so two concurrent reserves against the same entity
// cannot both read the pre-commit sum and slip past the per-person
// limit.  MySQL's default isolation gives the sum a snapshot read; the
// row lock is what serializes it.
func entityByRefForUpdate(ctx context.Context, q querier, ref model.EntityRef) (*model.BookableEntity, error) {
	return selectEntity(ctx, q, ref, ` FOR UPDATE`)
}

func selectEntity(ctx context.Context, q querier, ref model.EntityRef, locking string) (*model.BookableEntity, error) {
	table, err := entityTable(ref.Kind)
	if err != nil {
		return nil, err
	}
	row := q.QueryRowContext(ctx, `SELECT `+entityColumns+` FROM `+table+` WHERE id = ?`+locking, ref.ID)
	e, err := scanEntity(row, ref.Kind)
	if err == sql.ErrNoRows {
		return nil, booking.ErrEntityNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func listEntities(ctx context.Context, q querier, kind model.EntityKind) ([]model.BookableEntity, error) {
	table, err := entityTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, `SELECT `+entityColumns+` FROM `+table+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.BookableEntity, 0)
	for rows.Next() {
		e, err := scanEntity(rows, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner, kind model.EntityKind) (*model.BookableEntity, error) {
	var e model.BookableEntity
	e.Ref.Kind = kind
	if err := row.Scan(
		&e.Ref.ID, &e.Title, &e.BasePriceCents,
		&e.TotalSeats, &e.AvailableSeats, &e.PerPersonLimit,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateCapacity applies an admin seat change.  When the total changes,
// available seats are recomputed so already-booked seats remain booked:
// available = max(0, newTotal - booked).  The row is locked so the
// recompute cannot race a concurrent reservation.
func (s *Store) UpdateCapacity(ctx context.Context, ref model.EntityRef, upd model.CapacityUpdate) (*model.BookableEntity, error) {
	table, err := entityTable(ref.Kind)
	if err != nil {
		return nil, err
	}

	var out *model.BookableEntity
	err = s.WithTx(ctx, func(btx booking.StoreTx) error {
		tx := btx.(*storeTx).tx

		cur, err := entityByRefForUpdate(ctx, tx, ref)
		if err != nil {
			return err
		}

		total := cur.TotalSeats
		available := cur.AvailableSeats
		if upd.TotalSeats != nil {
			booked := cur.BookedSeats()
			total = *upd.TotalSeats
			available = total - booked
			if available < 0 {
				available = 0
			}
		}
		limit := cur.PerPersonLimit
		if upd.PerPersonLimit != nil {
			limit = *upd.PerPersonLimit
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE `+table+` SET total_seats = ?, available_seats = ?, per_person_limit = ?, updated_at = NOW() WHERE id = ?`,
			total, available, limit, ref.ID); err != nil {
			return err
		}

		out, err = entityByRef(ctx, tx, ref)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
