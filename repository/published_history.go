package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmutvidal/escapadas-go/models"
	"github.com/mmutvidal/escapadas-go/utils"
)

// PublishedHistoryFileRepository is the flat-file implementation of
// PublishedHistoryRepository. The whole document is re-read and rewritten
// wholesale on every update; writes happen at most once per day per market,
// so there is no concurrent-writer protection beyond the in-process mutex.
type PublishedHistoryFileRepository struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewPublishedHistoryRepository creates a history store backed by the JSON
// document at path. The file is created lazily on first registration.
func NewPublishedHistoryRepository(path string) *PublishedHistoryFileRepository {
	return &PublishedHistoryFileRepository{
		path: path,
		now:  utils.UTCNow,
	}
}

// IsRecentlyPublished reports whether the offer must be suppressed by a
// cooldown window: the exact route+dates key within cooldownDays, or any
// publication on the same route within routeCooldownDays. The exact-key
// window is the stricter, longer one; the route window is a shorter
// additional throttle.
func (r *PublishedHistoryFileRepository) IsRecentlyPublished(ctx context.Context, offer *models.Offer, cooldownDays, routeCooldownDays int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history, err := r.load()
	if err != nil {
		return false, err
	}

	today := r.today()

	if rec, ok := history.Entries[offer.PublicationKey()]; ok {
		if within(rec.PublishedAt, today, cooldownDays) {
			return true, nil
		}
	}

	if routeCooldownDays > 0 {
		routePrefix := offer.RouteKey() + "-"
		for key, rec := range history.Entries {
			if strings.HasPrefix(key, routePrefix) && within(rec.PublishedAt, today, routeCooldownDays) {
				return true, nil
			}
		}
	}

	return false, nil
}

// RegisterPublication records that the offer was published today with the
// given category, overwriting any previous record at the same key.
func (r *PublishedHistoryFileRepository) RegisterPublication(ctx context.Context, offer *models.Offer, categoryCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	history, err := r.load()
	if err != nil {
		return err
	}

	history.Entries[offer.PublicationKey()] = models.PublicationRecord{
		PublishedAt: r.today().Format("2006-01-02"),
		Category:    categoryCode,
	}

	return r.save(history)
}

func (r *PublishedHistoryFileRepository) today() time.Time {
	now := r.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// load reads the whole document. A missing file is an empty history. Legacy
// files (a bare key→record map without the version envelope) still load.
func (r *PublishedHistoryFileRepository) load() (*models.PublicationHistory, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewPublicationHistory(), nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var history models.PublicationHistory
	if err := json.Unmarshal(data, &history); err == nil && history.Entries != nil {
		return &history, nil
	}

	var legacy map[string]models.PublicationRecord
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}

	migrated := models.NewPublicationHistory()
	migrated.Entries = legacy
	return migrated, nil
}

func (r *PublishedHistoryFileRepository) save(history *models.PublicationHistory) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	// Write-then-rename so a crash mid-write can't truncate the history and
	// reopen the cooldown windows.
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// within reports whether publishedAt (YYYY-MM-DD, RFC3339 also accepted)
// falls inside the last `days` days counted from today. Unparseable dates
// never suppress an offer.
func within(publishedAt string, today time.Time, days int) bool {
	if publishedAt == "" {
		return false
	}

	pub, err := time.Parse("2006-01-02", publishedAt)
	if err != nil {
		t, err2 := time.Parse(time.RFC3339, publishedAt)
		if err2 != nil {
			return false
		}
		pub = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}

	return int(today.Sub(pub).Hours()/24) < days
}
