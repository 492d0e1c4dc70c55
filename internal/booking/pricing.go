package booking

import "github.com/rihlago/tourism-booking/internal/model"

// Pricing constants.  Multipliers are expressed in tenths so the whole
// breakdown stays in integer cents: standard x1.0, vip x1.6, vvip x2.2.
// The service fee is 6% of the subtotal and tax is 15% of subtotal+fee.
const (
	serviceFeePercent = 6
	taxPercent        = 15
)

func tierMultiplierTenths(t model.Tier) int64 {
	switch t {
	case model.TierVIP:
		return 16
	case model.TierVVIP:
		return 22
	default:
		return 10
	}
}

// PriceBreakdown is the amount charged for a booking, in cents.
type PriceBreakdown struct {
	SubtotalCents   int64 `json:"subtotal_cents"`
	ServiceFeeCents int64 `json:"service_fee_cents"`
	TaxCents        int64 `json:"tax_cents"`
	TotalCents      int64 `json:"total_cents"`
}

// Quote computes the price for qty seats of the given tier.  All divisions
// round half up, so a quote is deterministic and re-derivable from the
// stored base price.
func Quote(basePriceCents int64, tier model.Tier, qty int) PriceBreakdown {
	subtotal := roundDiv(basePriceCents*int64(qty)*tierMultiplierTenths(tier), 10)
	fee := roundDiv(subtotal*serviceFeePercent, 100)
	tax := roundDiv((subtotal+fee)*taxPercent, 100)
	return PriceBreakdown{
		SubtotalCents:   subtotal,
		ServiceFeeCents: fee,
		TaxCents:        tax,
		TotalCents:      subtotal + fee + tax,
	}
}

// roundDiv divides non-negative n by d, rounding half up.
func roundDiv(n, d int64) int64 { return (n + d/2) / d }
