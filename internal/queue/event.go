// Package queue defines the booking lifecycle messages exchanged over the
// broker and the publisher/consumer around them.
package queue

// Queue names.  Both are durable; the consumer only drains booking.paid.
const (
	BookingCreatedQueue = "booking.created"
	BookingPaidQueue    = "booking.paid"
)

// BookingCreatedEvent is published after a reservation transaction
// commits.  Seats are already deducted when consumers see it.
type BookingCreatedEvent struct {
	BookingID  uint64 `json:"booking_id"`
	UserID     uint64 `json:"user_id"`
	EntityKind string `json:"entity_kind"`
	EntityID   uint64 `json:"entity_id"`
	Tier       string `json:"tier"`
	Qty        int    `json:"qty"`
	TotalCents int64  `json:"total_cents"`
	PaymentRef string `json:"payment_ref"`
	CreatedAt  string `json:"created_at"`
}

// BookingPaidEvent is published when a pending booking is confirmed paid.
// It carries enough for downstream consumers to log or notify without
// querying the primary database.
type BookingPaidEvent struct {
	BookingID  uint64 `json:"booking_id"`
	UserID     uint64 `json:"user_id"`
	EntityKind string `json:"entity_kind"`
	EntityID   uint64 `json:"entity_id"`
	Qty        int    `json:"qty"`
	TotalCents int64  `json:"total_cents"`
	PaidAt     string `json:"paid_at"`
}
