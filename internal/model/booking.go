package model

import (
	"fmt"
	"time"
)

// Tier is the pricing class applied to a booking.
type Tier string

const (
	TierStandard Tier = "standard"
	TierVIP      Tier = "vip"
	TierVVIP     Tier = "vvip"
)

// ParseTier validates a tier received over the wire.  An empty string
// defaults to standard, matching the catalog's booking form.
func ParseTier(s string) (Tier, error) {
	if s == "" {
		return TierStandard, nil
	}
	switch Tier(s) {
	case TierStandard, TierVIP, TierVVIP:
		return Tier(s), nil
	}
	return "", fmt.Errorf("unknown tier %q", s)
}

// PaymentStatus is the lifecycle state of a booking's payment.
// Transitions: pending -> paid (confirmation) or pending -> failed
// (administrative release).  paid and failed are terminal.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Booking is one ledger entry: a user's reserved quantity against a single
// bookable entity, with its price breakdown and payment lifecycle.  Seats
// are deducted from the entity when the row is created, not when it is
// paid, so a pending booking already holds capacity.
type Booking struct {
	ID         uint64    `json:"id"`
	Entity     EntityRef `json:"entity"`
	FeaturedID *uint64   `json:"featured_id,omitempty"`
	UserID     uint64    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserEmail  string    `json:"user_email"`
	UserPhone  string    `json:"user_phone"`
	Tier       Tier      `json:"tier"`
	Qty        int       `json:"qty"`

	SubtotalCents   int64 `json:"subtotal_cents"`
	ServiceFeeCents int64 `json:"service_fee_cents"`
	TaxCents        int64 `json:"tax_cents"`
	TotalCents      int64 `json:"total_cents"`

	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentRef    string        `json:"payment_ref"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// BookingFilter narrows ledger listings.  UserID zero means any user;
// a nil Entity means any entity.
type BookingFilter struct {
	UserID uint64
	Entity *EntityRef
}
