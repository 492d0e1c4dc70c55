package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rihlago/tourism-booking/internal/model"
)

// Engine owns the write path to seat inventory.  Every reservation runs
// as one transaction spanning the capacity decrement and the ledger
// insert, so a failure at any point leaves both untouched.
type Engine struct {
	store    Store
	payments PaymentProvider
	events   EventPublisher
	log      zerolog.Logger
}

// NewEngine wires the engine to its collaborators.  payments and events
// may be nil for flows that never reach them (and in tests).
func NewEngine(store Store, payments PaymentProvider, events EventPublisher, log zerolog.Logger) *Engine {
	if store == nil {
		panic("nil store passed to NewEngine")
	}
	return &Engine{store: store, payments: payments, events: events, log: log}
}

// Contact is the customer detail recorded on every ledger entry.
type Contact struct {
	Name  string
	Email string
	Phone string
}

func (c Contact) complete() bool { return c.Name != "" && c.Email != "" && c.Phone != "" }

// ReserveInput describes one reservation attempt.  Exactly one of Ref and
// FeaturedID must be set; a featured id is resolved to its dining item
// inside the transaction.
type ReserveInput struct {
	Ref        model.EntityRef
	FeaturedID uint64
	UserID     uint64
	Qty        int
	Tier       model.Tier
	Contact    Contact
}

// Reservation is the result of a successful reserve: the pending ledger
// entry and the entity as it looked after the decrement.
type Reservation struct {
	Booking model.Booking        `json:"booking"`
	Entity  model.BookableEntity `json:"entity"`
}

// Reserve validates the per-person allowance, conditionally decrements
// available seats and appends a pending ledger entry, all in one
// transaction.  Two
// concurrent calls can never jointly overdraw an entity: the decrement
// only succeeds while enough seats remain at the moment of the write.
func (e *Engine) Reserve(ctx context.Context, in ReserveInput) (*Reservation, error) {
	if in.Qty < 1 {
		return nil, ErrInvalidQuantity
	}

	var out Reservation
	err := e.store.WithTx(ctx, func(tx StoreTx) error {
		ref := in.Ref
		var featuredID *uint64
		if in.FeaturedID != 0 && ref.IsZero() {
			diningID, err := tx.ResolveFeatured(ctx, in.FeaturedID)
			if err != nil {
				return err
			}
			ref = model.EntityRef{Kind: model.KindDining, ID: diningID}
			fid := in.FeaturedID
			featuredID = &fid
		}

		entity, err := tx.EntityByRef(ctx, ref)
		if err != nil {
			return err
		}

		already, err := tx.SumQuantityForUser(ctx, ref, in.UserID)
		if err != nil {
			return fmt.Errorf("sum booked quantity: %w", err)
		}
		if entity.PerPersonLimit > 0 && already+in.Qty > entity.PerPersonLimit {
			return &LimitExceededError{AlreadyBooked: already, Limit: entity.PerPersonLimit, Attempted: in.Qty}
		}

		ok, err := tx.DecrementSeats(ctx, ref, in.Qty)
		if err != nil {
			return fmt.Errorf("decrement seats: %w", err)
		}
		if !ok {
			return ErrInsufficientCapacity
		}

		price := Quote(entity.BasePriceCents, in.Tier, in.Qty)
		b := model.Booking{
			Entity:          ref,
			FeaturedID:      featuredID,
			UserID:          in.UserID,
			UserName:        in.Contact.Name,
			UserEmail:       in.Contact.Email,
			UserPhone:       in.Contact.Phone,
			Tier:            in.Tier,
			Qty:             in.Qty,
			SubtotalCents:   price.SubtotalCents,
			ServiceFeeCents: price.ServiceFeeCents,
			TaxCents:        price.TaxCents,
			TotalCents:      price.TotalCents,
			PaymentStatus:   model.PaymentPending,
			PaymentRef:      uuid.NewString(),
		}
		if err := tx.InsertBooking(ctx, &b); err != nil {
			// Returning the error rolls the decrement back with us.
			return fmt.Errorf("insert booking: %w", err)
		}

		updated, err := tx.EntityByRef(ctx, ref)
		if err != nil {
			return err
		}
		out = Reservation{Booking: b, Entity: *updated}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Uint64("booking_id", out.Booking.ID).
		Uint64("user_id", in.UserID).
		Str("entity", out.Booking.Entity.String()).
		Int("qty", in.Qty).
		Int("available_seats", out.Entity.AvailableSeats).
		Msg("reservation committed")

	if e.events != nil {
		e.events.BookingCreated(ctx, out.Booking)
	}
	return &out, nil
}

// CheckoutInput is ReserveInput plus nothing: checkout reuses the same
// shape but enforces complete contact details before touching inventory.
type CheckoutInput = ReserveInput

// CheckoutResult carries the payment redirect for a committed reservation.
type CheckoutResult struct {
	RedirectURL string               `json:"url"`
	Booking     model.Booking        `json:"booking"`
	Entity      model.BookableEntity `json:"entity"`
}

// Checkout reserves seats through Reserve (reservation errors propagate
// unchanged), then opens a payment session keyed to the booking's total.
// The booking stays pending until Confirm; if the payment provider fails
// here the seats remain committed, matching the indefinite soft-hold the
// pending state implies.
func (e *Engine) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if !in.Contact.complete() {
		return nil, ErrMissingContact
	}
	if e.payments == nil {
		return nil, errors.New("payment provider not configured")
	}

	res, err := e.Reserve(ctx, in)
	if err != nil {
		return nil, err
	}

	url, err := e.payments.CreateSession(ctx, PaymentSessionInput{
		BookingID:     res.Booking.ID,
		PaymentRef:    res.Booking.PaymentRef,
		ProductName:   res.Entity.Title,
		Tier:          res.Booking.Tier,
		TotalCents:    res.Booking.TotalCents,
		CustomerEmail: res.Booking.UserEmail,
	})
	if err != nil {
		e.log.Error().Err(err).Uint64("booking_id", res.Booking.ID).Msg("payment session failed, booking left pending")
		return nil, fmt.Errorf("create payment session: %w", err)
	}

	return &CheckoutResult{RedirectURL: url, Booking: res.Booking, Entity: res.Entity}, nil
}

// Confirm marks a pending booking paid once the customer returns from the
// payment redirect.  Seats were committed at reservation time, so nothing
// moves here.  Confirming an already-paid booking is a no-op success.
func (e *Engine) Confirm(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	var out *model.Booking
	transitioned := false
	err := e.store.WithTx(ctx, func(tx StoreTx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.PaymentStatus == model.PaymentPaid {
			out = b
			return nil
		}
		if b.PaymentStatus != model.PaymentPending {
			return ErrNotPending
		}
		if err := tx.UpdateBookingStatus(ctx, bookingID, model.PaymentPaid); err != nil {
			return err
		}
		b.PaymentStatus = model.PaymentPaid
		out = b
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Re-confirming an already-paid booking must not emit another event,
	// or downstream consumers would record the payment twice.
	if transitioned && e.events != nil {
		e.events.BookingPaid(ctx, *out)
	}
	return out, nil
}

// Fail releases a pending booking: the entry moves to failed and its
// quantity returns to the entity's pool, both in one transaction.  This is
// the manual valve for abandoned checkouts; nothing expires holds
// automatically.
func (e *Engine) Fail(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	var out *model.Booking
	err := e.store.WithTx(ctx, func(tx StoreTx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.PaymentStatus != model.PaymentPending {
			return ErrNotPending
		}
		if err := tx.UpdateBookingStatus(ctx, bookingID, model.PaymentFailed); err != nil {
			return err
		}
		if err := tx.RestoreSeats(ctx, b.Entity, b.Qty); err != nil {
			return fmt.Errorf("restore seats: %w", err)
		}
		b.PaymentStatus = model.PaymentFailed
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().Uint64("booking_id", bookingID).Int("qty", out.Qty).Str("entity", out.Entity.String()).
		Msg("pending booking released")
	return out, nil
}
