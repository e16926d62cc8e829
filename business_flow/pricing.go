package businessflow

import (
	"math"
	"sort"

	"github.com/mmutvidal/escapadas-go/models"
	"github.com/mmutvidal/escapadas-go/utils"
)

// Percentile computes the q-th percentile (q in [0,1]) of the sample using
// linear interpolation over the sorted values: position = (n-1)*q,
// interpolated between the floor and ceil ranks. A single-element sample
// returns that element.
func Percentile(values []float64, q float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySample
	}

	vals := make([]float64, len(values))
	copy(vals, values)
	sort.Float64s(vals)

	n := len(vals)
	if n == 1 {
		return vals[0], nil
	}

	pos := float64(n-1) * q
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return vals[lo], nil
	}

	frac := pos - float64(lo)
	return vals[lo] + (vals[hi]-vals[lo])*frac, nil
}

// AnnotateRoutePriceStats computes a typical price per (origin, destination)
// route and annotates every offer in place with RouteTypicalPrice and
// DiscountPct (positive = cheaper than typical).
//
// The baseline is deliberately generous: max(percentile(prices, q), mean),
// so a route without a single outlier cannot produce inflated discounts.
// Offers with a missing or non-positive price get nil annotations and are
// excluded later during filtering, not here. minSamples is retained for
// compatibility with older policies and is currently unused.
func AnnotateRoutePriceStats(offers []*models.Offer, usePercentile float64, minSamples int) {
	_ = minSamples

	pricesByRoute := make(map[string][]float64)
	for _, o := range offers {
		if o.Price > 0 {
			pricesByRoute[o.RouteKey()] = append(pricesByRoute[o.RouteKey()], o.Price)
		}
	}

	typicalByRoute := make(map[string]float64, len(pricesByRoute))
	for key, prices := range pricesByRoute {
		pct, err := Percentile(prices, usePercentile)
		if err != nil {
			continue
		}
		typicalByRoute[key] = math.Max(pct, mean(prices))
	}

	for _, o := range offers {
		typical, ok := typicalByRoute[o.RouteKey()]
		if !ok || typical <= 0 || o.Price <= 0 {
			o.RouteTypicalPrice = nil
			o.DiscountPct = nil
			continue
		}

		o.RouteTypicalPrice = utils.ToPtr(utils.RoundTo(typical, 2))
		discount := (typical - o.Price) / typical * 100.0
		o.DiscountPct = utils.ToPtr(utils.RoundTo(discount, 1))
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
