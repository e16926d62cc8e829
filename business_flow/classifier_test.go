package businessflow

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmutvidal/escapadas-go/models"
)

func newTestClassifier(seed int64) *Classifier {
	return NewClassifier(nil, nil, rand.New(rand.NewSource(seed)))
}

func TestClassifyFindePerfecto(t *testing.T) {
	c := newTestClassifier(1)

	// Friday 18:00 → Sunday 20:00, two days: the perfect weekend shape.
	offer := &models.Offer{
		Origin:      "PMI",
		Destination: "CPH", // tagged destination, must still yield finde first
		StartDate:   "2026-03-06T18:00:00",
		EndDate:     "2026-03-08T20:00:00",
	}

	cat := c.Classify(offer)
	assert.Equal(t, models.CategoryFindePerfecto, cat.Code)
	assert.Equal(t, models.LabelFindePerfecto, cat.Label)
}

func TestClassifyFindePerfectoHourBounds(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantFinde bool
	}{
		{"departure at 16 passes", "2026-03-06T16:00:00", "2026-03-08T20:00:00", true},
		{"departure at 22 passes", "2026-03-06T22:00:00", "2026-03-08T20:00:00", true},
		{"departure at 15 fails", "2026-03-06T15:59:00", "2026-03-08T20:00:00", false},
		{"departure at 23 fails", "2026-03-06T23:00:00", "2026-03-08T20:00:00", false},
		{"return at 15 passes", "2026-03-06T18:00:00", "2026-03-08T15:00:00", true},
		{"return at 14 fails", "2026-03-06T18:00:00", "2026-03-08T14:59:00", false},
		{"return on monday fails", "2026-03-06T18:00:00", "2026-03-09T17:00:00", false},
		{"thursday departure fails", "2026-03-05T18:00:00", "2026-03-08T17:00:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClassifier(1)
			offer := &models.Offer{
				Origin:      "PMI",
				Destination: "XXX", // untagged so the fallthrough is ultra_chollo
				StartDate:   tt.start,
				EndDate:     tt.end,
			}
			cat := c.Classify(offer)
			if tt.wantFinde {
				assert.Equal(t, models.CategoryFindePerfecto, cat.Code)
			} else {
				assert.Equal(t, models.CategoryUltraChollo, cat.Code)
			}
		})
	}
}

func TestClassifySingleTagDestinationIsDeterministic(t *testing.T) {
	// ALC carries exactly one tag, so the random pick has one outcome.
	for seed := int64(0); seed < 5; seed++ {
		c := newTestClassifier(seed)
		offer := &models.Offer{
			Origin:      "PMI",
			Destination: "ALC",
			StartDate:   "2026-03-10T09:00:00",
			EndDate:     "2026-03-12T21:00:00",
		}
		cat := c.Classify(offer)
		assert.Equal(t, models.CategoryGastronomica, cat.Code)
		assert.Equal(t, models.DestinationCategoryLabels[models.CategoryGastronomica], cat.Label)
	}
}

func TestClassifyLondonAirportsAreCulturalOnly(t *testing.T) {
	// The London low-cost airports carry the single cultural tag; no seed
	// may ever classify them as gastronómica.
	for _, dest := range []string{"LTN", "STN", "LGW"} {
		for seed := int64(0); seed < 10; seed++ {
			c := newTestClassifier(seed)
			offer := &models.Offer{
				Origin:      "PMI",
				Destination: dest,
				StartDate:   "2026-03-10T09:00:00",
				EndDate:     "2026-03-12T21:00:00",
			}
			cat := c.Classify(offer)
			assert.Equal(t, models.CategoryCultural, cat.Code, "dest %s seed %d", dest, seed)
		}
	}
}

func TestClassifyTaggedDestinationPicksFromTagSet(t *testing.T) {
	c := newTestClassifier(7)
	offer := &models.Offer{
		Origin:      "MAD",
		Destination: "cph", // lookup is case-insensitive
		StartDate:   "2026-03-10T09:00:00",
		EndDate:     "2026-03-12T21:00:00",
	}

	cat := c.Classify(offer)
	assert.Contains(t, DefaultDestinationTags["CPH"], cat.Code)
	assert.NotEmpty(t, cat.Label)
}

func TestClassifySeededRNGIsReproducible(t *testing.T) {
	offer := func() *models.Offer {
		return &models.Offer{
			Origin:      "MAD",
			Destination: "VIE",
			StartDate:   "2026-03-10T09:00:00",
			EndDate:     "2026-03-12T21:00:00",
		}
	}

	first := newTestClassifier(99).Classify(offer())
	second := newTestClassifier(99).Classify(offer())
	assert.Equal(t, first, second)
}

func TestClassifyUnknownDestinationFallsBack(t *testing.T) {
	c := newTestClassifier(1)
	offer := &models.Offer{
		Origin:      "PMI",
		Destination: "JFK",
		StartDate:   "2026-03-10T09:00:00",
		EndDate:     "2026-03-12T21:00:00",
	}

	cat := c.Classify(offer)
	assert.Equal(t, models.CategoryUltraChollo, cat.Code)
	assert.Equal(t, models.LabelUltraChollo, cat.Label)
}

func TestClassifyUnparseableTimestampsNeverPanic(t *testing.T) {
	c := newTestClassifier(1)
	offer := &models.Offer{
		Origin:      "PMI",
		Destination: "XXX",
		StartDate:   "not-a-date",
		EndDate:     "",
	}

	var cat models.Category
	require.NotPanics(t, func() { cat = c.Classify(offer) })
	assert.Equal(t, models.CategoryUltraChollo, cat.Code)
}
