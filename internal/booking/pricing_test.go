package booking

import (
	"testing"

	"github.com/rihlago/tourism-booking/internal/model"
)

func TestQuote(t *testing.T) {
	cases := []struct {
		name string
		base int64
		tier model.Tier
		qty  int
		want PriceBreakdown
	}{
		{
			// SAR 100 base, vip, two seats: 320.00 + 19.20 fee + 50.88 tax.
			name: "vip pair",
			base: 10000, tier: model.TierVIP, qty: 2,
			want: PriceBreakdown{SubtotalCents: 32000, ServiceFeeCents: 1920, TaxCents: 5088, TotalCents: 39008},
		},
		{
			name: "standard single",
			base: 10000, tier: model.TierStandard, qty: 1,
			want: PriceBreakdown{SubtotalCents: 10000, ServiceFeeCents: 600, TaxCents: 1590, TotalCents: 12190},
		},
		{
			name: "vvip multiplier",
			base: 5000, tier: model.TierVVIP, qty: 1,
			want: PriceBreakdown{SubtotalCents: 11000, ServiceFeeCents: 660, TaxCents: 1749, TotalCents: 13409},
		},
		{
			// 99 * 1.6 = 158.4, rounds half up to 158.
			name: "vip rounding on subtotal",
			base: 99, tier: model.TierVIP, qty: 1,
			want: PriceBreakdown{SubtotalCents: 158, ServiceFeeCents: 9, TaxCents: 25, TotalCents: 192},
		},
		{
			name: "unknown tier falls back to standard",
			base: 1000, tier: model.Tier("backstage"), qty: 3,
			want: PriceBreakdown{SubtotalCents: 3000, ServiceFeeCents: 180, TaxCents: 477, TotalCents: 3657},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Quote(tc.base, tc.tier, tc.qty)
			if got != tc.want {
				t.Fatalf("Quote(%d, %s, %d) = %+v, want %+v", tc.base, tc.tier, tc.qty, got, tc.want)
			}
		})
	}
}

func TestQuoteTotalIsSumOfParts(t *testing.T) {
	for _, tier := range []model.Tier{model.TierStandard, model.TierVIP, model.TierVVIP} {
		for qty := 1; qty <= 5; qty++ {
			q := Quote(12345, tier, qty)
			if q.TotalCents != q.SubtotalCents+q.ServiceFeeCents+q.TaxCents {
				t.Fatalf("tier %s qty %d: total %d does not sum", tier, qty, q.TotalCents)
			}
		}
	}
}

func TestRoundDiv(t *testing.T) {
	cases := []struct{ n, d, want int64 }{
		{10, 10, 1},
		{14, 10, 1},
		{15, 10, 2},
		{1584, 10, 158},
		{1585, 10, 159},
		{0, 100, 0},
	}
	for _, tc := range cases {
		if got := roundDiv(tc.n, tc.d); got != tc.want {
			t.Fatalf("roundDiv(%d, %d) = %d, want %d", tc.n, tc.d, got, tc.want)
		}
	}
}
