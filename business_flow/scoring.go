package businessflow

import (
	"math"

	"github.com/mmutvidal/escapadas-go/config"
	"github.com/mmutvidal/escapadas-go/models"
)

// InvalidScore marks an offer that must never be selected (missing or
// non-positive price / price-per-km).
const InvalidScore = -999999

// Scorer converts an offer into a single comparable scalar. Higher is better.
type Scorer struct {
	weights config.ScoringWeights
}

// NewScorer creates a scorer with the given weights. Zero-value weights fall
// back to the hand-tuned defaults (0.45 price, 0.25 €/km, 0.30 discount,
// cap 90). These encode product intent, do not rebalance them casually.
func NewScorer(weights config.ScoringWeights) *Scorer {
	if weights.Price == 0 && weights.PricePerKm == 0 && weights.Discount == 0 {
		weights = config.ScoringWeights{Price: 0.45, PricePerKm: 0.25, Discount: 0.30, DiscountCap: 90.0}
	}
	if weights.DiscountCap <= 0 {
		weights.DiscountCap = 90.0
	}
	return &Scorer{weights: weights}
}

// Score combines absolute price, price per km and route discount:
//
//	score = wP * 1/max(price,1) + wK * 1/max(ppkm,0.001) + wD * (1 + discountNorm)
//
// discountNorm clamps the discount to [0, cap] and normalizes to [0,1]; the
// (1 + discountNorm) term keeps every valid offer contributing something
// even at zero discount. Offers without a positive price and price-per-km
// get the InvalidScore sentinel.
func (s *Scorer) Score(o *models.Offer) float64 {
	if o == nil || o.Price <= 0 || o.PricePerKm == nil || *o.PricePerKm <= 0 {
		return InvalidScore
	}

	priceComponent := 1 / math.Max(o.Price, 1)
	ppkmComponent := 1 / math.Max(*o.PricePerKm, 0.001)

	discountPct := 0.0
	if o.DiscountPct != nil {
		discountPct = math.Max(*o.DiscountPct, 0)
	}
	discountNorm := math.Min(discountPct, s.weights.DiscountCap) / s.weights.DiscountCap

	return s.weights.Price*priceComponent +
		s.weights.PricePerKm*ppkmComponent +
		s.weights.Discount*(1+discountNorm)
}
