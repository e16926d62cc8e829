package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmutvidal/escapadas-go/models"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		q        float64
		expected float64
		wantErr  bool
	}{
		{
			name:    "empty sample returns error",
			values:  nil,
			q:       0.5,
			wantErr: true,
		},
		{
			name:     "single element returns that element",
			values:   []float64{42},
			q:        0.7,
			expected: 42,
		},
		{
			name:     "median of even sample interpolates",
			values:   []float64{10, 20},
			q:        0.5,
			expected: 15,
		},
		{
			name:     "p70 of three values interpolates between ranks",
			values:   []float64{50, 80, 120},
			q:        0.7,
			expected: 96, // pos = 1.4 → 80 + 0.4*(120-80)
		},
		{
			name:     "q=0 returns minimum",
			values:   []float64{5, 1, 3},
			q:        0,
			expected: 1,
		},
		{
			name:     "q=1 returns maximum",
			values:   []float64{5, 1, 3},
			q:        1,
			expected: 5,
		},
		{
			name:     "unsorted input is sorted first",
			values:   []float64{120, 50, 80},
			q:        0.7,
			expected: 96,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Percentile(tt.values, tt.q)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrEmptySample)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestAnnotateRoutePriceStats(t *testing.T) {
	offers := []*models.Offer{
		{Origin: "PMI", Destination: "BGY", Price: 50},
		{Origin: "PMI", Destination: "BGY", Price: 80},
		{Origin: "PMI", Destination: "BGY", Price: 120},
	}

	AnnotateRoutePriceStats(offers, 0.70, 5)

	// typical = max(p70=96, mean=83.33) = 96
	for _, o := range offers {
		require.NotNil(t, o.RouteTypicalPrice)
		assert.InDelta(t, 96.0, *o.RouteTypicalPrice, 1e-9)
	}

	require.NotNil(t, offers[0].DiscountPct)
	assert.InDelta(t, 47.9, *offers[0].DiscountPct, 1e-9) // (96-50)/96, rounded to 1 decimal

	require.NotNil(t, offers[2].DiscountPct)
	assert.InDelta(t, -25.0, *offers[2].DiscountPct, 1e-9) // pricier than typical
}

func TestAnnotateRoutePriceStatsTypicalUsesMeanWhenHigher(t *testing.T) {
	// One expensive outlier drags the mean above the percentile.
	offers := []*models.Offer{
		{Origin: "MAD", Destination: "VIE", Price: 40},
		{Origin: "MAD", Destination: "VIE", Price: 45},
		{Origin: "MAD", Destination: "VIE", Price: 50},
		{Origin: "MAD", Destination: "VIE", Price: 400},
	}

	AnnotateRoutePriceStats(offers, 0.70, 5)

	// p70 over {40,45,50,400}: pos=2.1 → 50 + 0.1*350 = 85; mean = 133.75
	require.NotNil(t, offers[0].RouteTypicalPrice)
	assert.InDelta(t, 133.75, *offers[0].RouteTypicalPrice, 1e-9)
}

func TestAnnotateRoutePriceStatsSkipsInvalidPrices(t *testing.T) {
	offers := []*models.Offer{
		{Origin: "BCN", Destination: "LIS", Price: 0},
		{Origin: "BCN", Destination: "LIS", Price: 60},
	}

	AnnotateRoutePriceStats(offers, 0.70, 5)

	assert.Nil(t, offers[0].RouteTypicalPrice)
	assert.Nil(t, offers[0].DiscountPct)
	require.NotNil(t, offers[1].RouteTypicalPrice)
}

func TestAnnotateRoutePriceStatsGroupsByRoute(t *testing.T) {
	offers := []*models.Offer{
		{Origin: "PMI", Destination: "BGY", Price: 100},
		{Origin: "PMI", Destination: "VIE", Price: 20},
	}

	AnnotateRoutePriceStats(offers, 0.70, 5)

	// Each route has a single sample: typical == own price, discount 0.
	require.NotNil(t, offers[0].RouteTypicalPrice)
	assert.InDelta(t, 100.0, *offers[0].RouteTypicalPrice, 1e-9)
	require.NotNil(t, offers[0].DiscountPct)
	assert.InDelta(t, 0.0, *offers[0].DiscountPct, 1e-9)

	require.NotNil(t, offers[1].RouteTypicalPrice)
	assert.InDelta(t, 20.0, *offers[1].RouteTypicalPrice, 1e-9)
}
