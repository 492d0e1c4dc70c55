package model

import (
	"fmt"
	"time"
)

// EntityKind discriminates the three bookable catalog variants.  Every
// booking references exactly one kind, so the pair (kind, id) identifies
// a capacity-bearing row unambiguously.
type EntityKind string

const (
	KindEvent  EntityKind = "event"
	KindTour   EntityKind = "tour"
	KindDining EntityKind = "dining"
)

// ParseEntityKind validates a kind received over the wire.
func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case KindEvent, KindTour, KindDining:
		return EntityKind(s), nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// EntityRef is a tagged reference to one bookable entity.  The zero value
// is "no reference".
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   uint64     `json:"id"`
}

// IsZero reports whether the reference points at nothing.
func (r EntityRef) IsZero() bool { return r.Kind == "" && r.ID == 0 }

func (r EntityRef) String() string { return fmt.Sprintf("%s/%d", r.Kind, r.ID) }

// BookableEntity is the shared capacity shape of events, tours and dining
// items.  AvailableSeats is mutated only through the reservation engine's
// conditional decrement and restore; everything else reads it.
//
// Invariant: 0 <= AvailableSeats <= TotalSeats.
type BookableEntity struct {
	Ref            EntityRef `json:"ref"`
	Title          string    `json:"title"`
	BasePriceCents int64     `json:"base_price_cents"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	PerPersonLimit int       `json:"per_person_limit"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BookedSeats derives how many seats have been committed to bookings.
func (e *BookableEntity) BookedSeats() int { return e.TotalSeats - e.AvailableSeats }

// CapacityUpdate carries an admin change to an entity's seat counts.  A nil
// field leaves the current value untouched.  When TotalSeats changes, the
// store recomputes available seats so already-booked seats stay booked:
// available = max(0, newTotal - booked).
type CapacityUpdate struct {
	TotalSeats     *int
	PerPersonLimit *int
}
