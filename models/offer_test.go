package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicationKeyTruncatesToDay(t *testing.T) {
	offer := &Offer{
		Origin:      "pmi",
		Destination: "bgy",
		StartDate:   "2026-03-06T18:30:00",
		EndDate:     "2026-03-08T20:15:00",
	}

	assert.Equal(t, "PMI-BGY-2026-03-06-2026-03-08", offer.PublicationKey())

	bare := &Offer{Origin: "PMI", Destination: "BGY", StartDate: "2026-03-06", EndDate: "2026-03-08"}
	assert.Equal(t, offer.PublicationKey(), bare.PublicationKey())
}

func TestRouteKey(t *testing.T) {
	offer := &Offer{Origin: "pmi", Destination: "Vie"}
	assert.Equal(t, "PMI-VIE", offer.RouteKey())
}

func TestParseFlexibleTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *time.Time
	}{
		{
			name:     "full timestamp",
			input:    "2026-03-06T18:30:00",
			expected: ptrTime(time.Date(2026, 3, 6, 18, 30, 0, 0, time.UTC)),
		},
		{
			name:     "trailing Z stripped",
			input:    "2026-03-06T18:30:00Z",
			expected: ptrTime(time.Date(2026, 3, 6, 18, 30, 0, 0, time.UTC)),
		},
		{
			name:     "fractional seconds",
			input:    "2026-03-06T18:30:00.123456",
			expected: ptrTime(time.Date(2026, 3, 6, 18, 30, 0, 123456000, time.UTC)),
		},
		{
			name:     "minutes precision",
			input:    "2026-03-06T18:30",
			expected: ptrTime(time.Date(2026, 3, 6, 18, 30, 0, 0, time.UTC)),
		},
		{
			name:     "space separated",
			input:    "2026-03-06 18:30:00",
			expected: ptrTime(time.Date(2026, 3, 6, 18, 30, 0, 0, time.UTC)),
		},
		{
			name:     "bare date",
			input:    "2026-03-06",
			expected: ptrTime(time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:  "surrounding whitespace",
			input: "  2026-03-06  ",
			expected: ptrTime(time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)),
		},
		{name: "empty", input: "", expected: nil},
		{name: "garbage", input: "next friday", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFlexibleTimestamp(tt.input)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.expected.Equal(*got))
		})
	}
}

func TestHasValidPrice(t *testing.T) {
	assert.True(t, (&Offer{Price: 0.01}).HasValidPrice())
	assert.False(t, (&Offer{Price: 0}).HasValidPrice())
	assert.False(t, (&Offer{Price: -5}).HasValidPrice())
}

func TestCategoryCodeValid(t *testing.T) {
	assert.True(t, CategoryFindePerfecto.Valid())
	assert.True(t, CategoryChollo.Valid())
	assert.False(t, CategoryCode("playa").Valid())
}

func ptrTime(t time.Time) *time.Time { return &t }
