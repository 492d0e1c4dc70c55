// Package payment implements the external payment collaborator.  The
// engine only sees the PaymentProvider interface; this package binds it
// to Stripe Checkout.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"

	"github.com/rihlago/tourism-booking/internal/booking"
)

// Amounts are charged in Saudi riyal, matching the catalog prices.
const currency = "sar"

// StripeProvider creates Stripe Checkout sessions for committed
// reservations.  The customer pays the booking total as a single line
// item and is sent back to successURL with the booking id appended.
type StripeProvider struct {
	successURL string
	cancelURL  string
	log        zerolog.Logger
}

// NewStripeProvider configures the global Stripe client.  The API key is
// required; success and cancel URLs point back at the storefront.
func NewStripeProvider(apiKey, successURL, cancelURL string, log zerolog.Logger) (*StripeProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("stripe api key is required")
	}
	stripe.Key = apiKey
	return &StripeProvider{successURL: successURL, cancelURL: cancelURL, log: log}, nil
}

// CreateSession implements booking.PaymentProvider.
func (p *StripeProvider) CreateSession(ctx context.Context, in booking.PaymentSessionInput) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail:     stripe.String(in.CustomerEmail),
		ClientReferenceID: stripe.String(in.PaymentRef),
		SuccessURL:        stripe.String(fmt.Sprintf("%s?bookingId=%d", p.successURL, in.BookingID)),
		CancelURL:         stripe.String(p.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("%s (%s)", in.ProductName, in.Tier)),
				},
				UnitAmount: stripe.Int64(in.TotalCents),
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe checkout session: %w", err)
	}
	p.log.Debug().Uint64("booking_id", in.BookingID).Str("session_id", sess.ID).Msg("stripe session created")
	return sess.URL, nil
}
