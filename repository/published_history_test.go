package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmutvidal/escapadas-go/models"
)

func historyAt(t *testing.T, now time.Time) *PublishedHistoryFileRepository {
	t.Helper()
	repo := NewPublishedHistoryRepository(filepath.Join(t.TempDir(), "published_history.json"))
	repo.now = func() time.Time { return now }
	return repo
}

func tripOffer(origin, dest, start, end string) *models.Offer {
	return &models.Offer{Origin: origin, Destination: dest, StartDate: start, EndDate: end}
}

func TestHistoryMissingFileIsEmpty(t *testing.T) {
	repo := historyAt(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	recent, err := repo.IsRecentlyPublished(context.Background(),
		tripOffer("PMI", "BGY", "2026-03-20", "2026-03-22"), 14, 5)
	require.NoError(t, err)
	assert.False(t, recent)
}

func TestHistorySaveLeavesNoTempFile(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := historyAt(t, now)
	offer := tripOffer("PMI", "BGY", "2026-03-20T18:00:00", "2026-03-22T20:00:00")

	require.NoError(t, repo.RegisterPublication(context.Background(), offer, "finde_perfecto"))

	// The write goes through a temp file that must be renamed away.
	_, err := os.Stat(repo.path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	raw, err := os.ReadFile(repo.path)
	require.NoError(t, err)
	var doc models.PublicationHistory
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Len(t, doc.Entries, 1)
}

func TestHistoryExactKeyCooldown(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := historyAt(t, now)
	offer := tripOffer("PMI", "BGY", "2026-03-20T18:00:00", "2026-03-22T20:00:00")

	require.NoError(t, repo.RegisterPublication(context.Background(), offer, "finde_perfecto"))

	recent, err := repo.IsRecentlyPublished(context.Background(), offer, 14, 0)
	require.NoError(t, err)
	assert.True(t, recent)

	// 13 days later: still inside the 14-day window.
	repo.now = func() time.Time { return now.AddDate(0, 0, 13) }
	recent, err = repo.IsRecentlyPublished(context.Background(), offer, 14, 0)
	require.NoError(t, err)
	assert.True(t, recent)

	// Day 14: the window has elapsed.
	repo.now = func() time.Time { return now.AddDate(0, 0, 14) }
	recent, err = repo.IsRecentlyPublished(context.Background(), offer, 14, 0)
	require.NoError(t, err)
	assert.False(t, recent)
}

func TestHistoryRouteCooldownCatchesOtherDates(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := historyAt(t, now)

	published := tripOffer("PMI", "BGY", "2026-03-20T18:00:00", "2026-03-22T20:00:00")
	require.NoError(t, repo.RegisterPublication(context.Background(), published, "finde_perfecto"))

	// Same route, different weekend: exact key misses, route window hits.
	sameRoute := tripOffer("PMI", "BGY", "2026-04-03T18:00:00", "2026-04-05T20:00:00")
	recent, err := repo.IsRecentlyPublished(context.Background(), sameRoute, 14, 5)
	require.NoError(t, err)
	assert.True(t, recent)

	// Day 5: route window elapsed, exact key still live but keys differ.
	repo.now = func() time.Time { return now.AddDate(0, 0, 5) }
	recent, err = repo.IsRecentlyPublished(context.Background(), sameRoute, 14, 5)
	require.NoError(t, err)
	assert.False(t, recent)

	// A different route is never suppressed.
	otherRoute := tripOffer("PMI", "VIE", "2026-03-20T18:00:00", "2026-03-22T20:00:00")
	repo.now = func() time.Time { return now }
	recent, err = repo.IsRecentlyPublished(context.Background(), otherRoute, 14, 5)
	require.NoError(t, err)
	assert.False(t, recent)
}

func TestHistoryRegisterOverwritesSameKey(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := historyAt(t, now)
	offer := tripOffer("PMI", "BGY", "2026-03-20T18:00:00", "2026-03-22T20:00:00")

	require.NoError(t, repo.RegisterPublication(context.Background(), offer, "ultra_chollo"))
	require.NoError(t, repo.RegisterPublication(context.Background(), offer, "finde_perfecto"))

	history, err := repo.load()
	require.NoError(t, err)
	require.Len(t, history.Entries, 1)

	rec := history.Entries[offer.PublicationKey()]
	assert.Equal(t, "finde_perfecto", rec.Category)
	assert.Equal(t, "2026-03-10", rec.PublishedAt)
}

func TestHistoryKeyTruncatesTimestamps(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := historyAt(t, now)

	withTime := tripOffer("PMI", "BGY", "2026-03-20T18:00:00", "2026-03-22T20:00:00")
	require.NoError(t, repo.RegisterPublication(context.Background(), withTime, "finde_perfecto"))

	// Same trip carried with bare dates must hit the same key.
	bareDates := tripOffer("PMI", "BGY", "2026-03-20", "2026-03-22")
	recent, err := repo.IsRecentlyPublished(context.Background(), bareDates, 14, 0)
	require.NoError(t, err)
	assert.True(t, recent)
}

func TestHistoryLoadsLegacyBareMap(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "published_history.json")

	legacy := map[string]models.PublicationRecord{
		"PMI-BGY-2026-03-20-2026-03-22": {PublishedAt: "2026-03-08", Category: "chollo"},
	}
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	repo := NewPublishedHistoryRepository(path)
	repo.now = func() time.Time { return now }

	offer := tripOffer("PMI", "BGY", "2026-03-20", "2026-03-22")
	recent, err := repo.IsRecentlyPublished(context.Background(), offer, 14, 5)
	require.NoError(t, err)
	assert.True(t, recent)

	// Writing back migrates the document to the versioned envelope.
	require.NoError(t, repo.RegisterPublication(context.Background(),
		tripOffer("PMI", "VIE", "2026-04-03", "2026-04-05"), "cultural"))

	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	var envelope models.PublicationHistory
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.Len(t, envelope.Entries, 2)
}

func TestHistoryUnparseableDateNeverSuppresses(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "published_history.json")

	legacy := map[string]models.PublicationRecord{
		"PMI-BGY-2026-03-20-2026-03-22": {PublishedAt: "yesterday-ish", Category: "chollo"},
	}
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	repo := NewPublishedHistoryRepository(path)
	repo.now = func() time.Time { return now }

	recent, err := repo.IsRecentlyPublished(context.Background(),
		tripOffer("PMI", "BGY", "2026-03-20", "2026-03-22"), 14, 5)
	require.NoError(t, err)
	assert.False(t, recent)
}
