package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmutvidal/escapadas-go/config"
	"github.com/mmutvidal/escapadas-go/models"
	"github.com/mmutvidal/escapadas-go/utils"
)

func TestScoreInvalidOffers(t *testing.T) {
	s := NewScorer(config.ScoringWeights{})

	tests := []struct {
		name  string
		offer *models.Offer
	}{
		{"nil offer", nil},
		{"zero price", &models.Offer{Price: 0, PricePerKm: utils.ToPtr(0.05)}},
		{"negative price", &models.Offer{Price: -10, PricePerKm: utils.ToPtr(0.05)}},
		{"missing price per km", &models.Offer{Price: 50}},
		{"zero price per km", &models.Offer{Price: 50, PricePerKm: utils.ToPtr(0.0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, float64(InvalidScore), s.Score(tt.offer))
		})
	}
}

func TestScoreFormula(t *testing.T) {
	s := NewScorer(config.ScoringWeights{Price: 0.45, PricePerKm: 0.25, Discount: 0.30, DiscountCap: 90})

	offer := &models.Offer{
		Price:       100,
		PricePerKm:  utils.ToPtr(0.05),
		DiscountPct: utils.ToPtr(45.0),
	}

	// 0.45*(1/100) + 0.25*(1/0.05) + 0.30*(1 + 45/90)
	expected := 0.45*0.01 + 0.25*20 + 0.30*1.5
	assert.InDelta(t, expected, s.Score(offer), 1e-9)
}

func TestScoreDiscountClamping(t *testing.T) {
	s := NewScorer(config.ScoringWeights{})

	base := models.Offer{Price: 100, PricePerKm: utils.ToPtr(0.05)}

	capped := base
	capped.DiscountPct = utils.ToPtr(90.0)
	over := base
	over.DiscountPct = utils.ToPtr(250.0)
	assert.InDelta(t, s.Score(&capped), s.Score(&over), 1e-9)

	negative := base
	negative.DiscountPct = utils.ToPtr(-30.0)
	zero := base
	zero.DiscountPct = utils.ToPtr(0.0)
	assert.InDelta(t, s.Score(&zero), s.Score(&negative), 1e-9)

	// Missing discount scores like zero discount, not like an invalid offer.
	missing := base
	assert.InDelta(t, s.Score(&zero), s.Score(&missing), 1e-9)
}

func TestScoreOrderingPrefersCheaper(t *testing.T) {
	s := NewScorer(config.ScoringWeights{})

	cheap := &models.Offer{Price: 30, PricePerKm: utils.ToPtr(0.03), DiscountPct: utils.ToPtr(50.0)}
	pricey := &models.Offer{Price: 300, PricePerKm: utils.ToPtr(0.3), DiscountPct: utils.ToPtr(50.0)}

	assert.Greater(t, s.Score(cheap), s.Score(pricey))
}

func TestScoreSubPricePerKmFloor(t *testing.T) {
	s := NewScorer(config.ScoringWeights{})

	// Price-per-km below the floor is clamped to 0.001, bounding the term.
	tiny := &models.Offer{Price: 10, PricePerKm: utils.ToPtr(0.0001)}
	floor := &models.Offer{Price: 10, PricePerKm: utils.ToPtr(0.001)}
	assert.InDelta(t, s.Score(floor), s.Score(tiny), 1e-9)
}
