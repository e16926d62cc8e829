package businessflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateWeekendDatePairsOneWeek(t *testing.T) {
	// 2026-03-05 is a Thursday, 2026-03-06 a Friday.
	start := day(2026, time.March, 2) // Monday
	end := day(2026, time.March, 9)   // the following Monday

	pairs := GenerateWeekendDatePairs(start, end)

	expected := []DatePair{
		{Depart: day(2026, time.March, 5), Return: day(2026, time.March, 8)}, // Thu→Sun
		{Depart: day(2026, time.March, 5), Return: day(2026, time.March, 9)}, // Thu→Mon
		{Depart: day(2026, time.March, 6), Return: day(2026, time.March, 8)}, // Fri→Sun
		{Depart: day(2026, time.March, 6), Return: day(2026, time.March, 9)}, // Fri→Mon
	}
	assert.Equal(t, expected, pairs)
}

func TestGenerateWeekendDatePairsReturnBeyondEndExcluded(t *testing.T) {
	start := day(2026, time.March, 2)
	end := day(2026, time.March, 8) // Sunday: the Monday returns fall outside

	pairs := GenerateWeekendDatePairs(start, end)

	require.Len(t, pairs, 2)
	for _, p := range pairs {
		assert.Equal(t, time.Sunday, p.Return.Weekday())
		assert.False(t, p.Return.After(end))
	}
}

func TestGenerateWeekendDatePairsEmptyRange(t *testing.T) {
	// Tuesday to Wednesday: no Thursday or Friday in range.
	pairs := GenerateWeekendDatePairs(day(2026, time.March, 3), day(2026, time.March, 4))
	assert.Empty(t, pairs)

	// Inverted range.
	pairs = GenerateWeekendDatePairs(day(2026, time.March, 9), day(2026, time.March, 2))
	assert.Empty(t, pairs)
}

func TestGenerateWeekendDatePairsShapeInvariants(t *testing.T) {
	pairs := GenerateWeekendDatePairs(day(2026, time.March, 1), day(2026, time.May, 1))
	require.NotEmpty(t, pairs)

	for _, p := range pairs {
		assert.Contains(t, []time.Weekday{time.Thursday, time.Friday}, p.Depart.Weekday())
		assert.Contains(t, []time.Weekday{time.Sunday, time.Monday}, p.Return.Weekday())
		nights := p.Return.Sub(p.Depart).Hours() / 24
		assert.GreaterOrEqual(t, nights, 2.0)
		assert.LessOrEqual(t, nights, 4.0)
	}
}
