package businessflow

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmutvidal/escapadas-go/models"
	"github.com/mmutvidal/escapadas-go/utils"
)

func readFeed(t *testing.T, dir, slug string) []FlightOfTheDay {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(dir, slug, "flights_of_the_day.json"))
	require.NoError(t, err)
	var entries []FlightOfTheDay
	require.NoError(t, json.Unmarshal(raw, &entries))
	return entries
}

func TestWebExporterAppendNewestFirst(t *testing.T) {
	dir := t.TempDir()
	e := NewWebExporter(dir, 5)

	require.NoError(t, e.Append("mallorca", FlightOfTheDay{Destination: "BGY", Price: 30}))
	require.NoError(t, e.Append("mallorca", FlightOfTheDay{Destination: "VIE", Price: 45}))

	entries := readFeed(t, dir, "mallorca")
	require.Len(t, entries, 2)
	assert.Equal(t, "VIE", entries[0].Destination)
	assert.Equal(t, "BGY", entries[1].Destination)
}

func TestWebExporterCapsEntries(t *testing.T) {
	dir := t.TempDir()
	e := NewWebExporter(dir, 3)

	for _, dest := range []string{"A", "B", "C", "D", "E"} {
		require.NoError(t, e.Append("mallorca", FlightOfTheDay{Destination: dest}))
	}

	entries := readFeed(t, dir, "mallorca")
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"E", "D", "C"}, []string{
		entries[0].Destination, entries[1].Destination, entries[2].Destination,
	})
}

func TestWebExporterKeepsMarketsSeparate(t *testing.T) {
	dir := t.TempDir()
	e := NewWebExporter(dir, 2)

	require.NoError(t, e.Append("mallorca", FlightOfTheDay{Destination: "BGY"}))
	require.NoError(t, e.Append("madrid", FlightOfTheDay{Destination: "VIE"}))
	require.NoError(t, e.Append("madrid", FlightOfTheDay{Destination: "CPH"}))
	require.NoError(t, e.Append("madrid", FlightOfTheDay{Destination: "LIS"}))

	// Madrid's cap churn must not evict Mallorca's single entry.
	mallorca := readFeed(t, dir, "mallorca")
	require.Len(t, mallorca, 1)
	assert.Equal(t, "BGY", mallorca[0].Destination)

	madrid := readFeed(t, dir, "madrid")
	require.Len(t, madrid, 2)
	assert.Equal(t, "LIS", madrid[0].Destination)
	assert.Equal(t, "CPH", madrid[1].Destination)
}

func TestWebExporterReplacesCorruptFeed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "mallorca"), 0o755))
	path := filepath.Join(dir, "mallorca", "flights_of_the_day.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	e := NewWebExporter(dir, 5)
	require.NoError(t, e.Append("mallorca", FlightOfTheDay{Destination: "BGY"}))

	entries := readFeed(t, dir, "mallorca")
	require.Len(t, entries, 1)
}

func TestEntryFromOffer(t *testing.T) {
	offer := &models.Offer{
		Origin:        "PMI",
		Destination:   "BGY",
		Price:         29.99,
		StartDate:     "2026-03-06T18:00:00",
		EndDate:       "2026-03-08T20:00:00",
		Airline:       "Ryanair",
		Link:          "https://example.test/booking",
		DiscountPct:   utils.ToPtr(47.9),
		CategoryCode:  "finde_perfecto",
		CategoryLabel: "🎉 Finde Perfecto",
	}

	entry := EntryFromOffer(offer, "https://instagram.com/p/abc")

	assert.Equal(t, "PMI", entry.Origin)
	assert.Equal(t, "BGY", entry.Destination)
	assert.Equal(t, 29.99, entry.Price)
	assert.Equal(t, "finde_perfecto", entry.Category)
	assert.Equal(t, "https://instagram.com/p/abc", entry.Permalink)
	require.NotNil(t, entry.DiscountPct)
	assert.Equal(t, 47.9, *entry.DiscountPct)
	assert.Equal(t, utils.TodayUTC().Format("2006-01-02"), entry.Date)
}
