package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmutvidal/escapadas-go/models"
)

func variantOffer() *models.Offer {
	return &models.Offer{
		Origin:      "PMI",
		Destination: "BGY",
		StartDate:   "2026-03-06T18:00:00",
		EndDate:     "2026-03-08T20:00:00",
	}
}

func TestChooseVariantDeterministic(t *testing.T) {
	o := variantOffer()

	first := ChooseVariantDeterministic(o, 0.5, "salt-v1", KeyModeRouteDates)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ChooseVariantDeterministic(o, 0.5, "salt-v1", KeyModeRouteDates))
	}
}

func TestChooseVariantRatioExtremes(t *testing.T) {
	o := variantOffer()

	assert.Equal(t, VariantNew, ChooseVariantDeterministic(o, 1.01, "s", KeyModeRouteDates))
	assert.Equal(t, VariantOld, ChooseVariantDeterministic(o, 0, "s", KeyModeRouteDates))
}

func TestChooseVariantRouteOnlyIgnoresDates(t *testing.T) {
	a := variantOffer()
	b := variantOffer()
	b.StartDate = "2026-04-10T09:00:00"
	b.EndDate = "2026-04-12T21:00:00"

	assert.Equal(t,
		ChooseVariantDeterministic(a, 0.5, "s", KeyModeRouteOnly),
		ChooseVariantDeterministic(b, 0.5, "s", KeyModeRouteOnly))
}

func TestChooseVariantDatesChangeBucketKey(t *testing.T) {
	// Different trips on the same route may land on different arms; at
	// minimum the keys differ, which a salt sweep can surface.
	a := variantOffer()
	b := variantOffer()
	b.StartDate = "2026-04-10T09:00:00"
	b.EndDate = "2026-04-12T21:00:00"

	differed := false
	for _, salt := range []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"} {
		if ChooseVariantDeterministic(a, 0.5, salt, KeyModeRouteDates) !=
			ChooseVariantDeterministic(b, 0.5, salt, KeyModeRouteDates) {
			differed = true
			break
		}
	}
	assert.True(t, differed)
}

func TestChooseOriginPillIndependentSalt(t *testing.T) {
	o := variantOffer()

	first := ChooseOriginPill(o, 0.5, "salt-v1")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ChooseOriginPill(o, 0.5, "salt-v1"))
	}

	assert.True(t, ChooseOriginPill(o, 1.01, "s"))
	assert.False(t, ChooseOriginPill(o, 0, "s"))
}

func TestVariantLabel(t *testing.T) {
	assert.Equal(t, "new/origin_pill_on", VariantLabel(VariantNew, true))
	assert.Equal(t, "old/origin_pill_off", VariantLabel(VariantOld, false))
}
