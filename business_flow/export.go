package businessflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmutvidal/escapadas-go/models"
	"github.com/mmutvidal/escapadas-go/utils"
)

// FlightOfTheDay is the public projection of a published deal, consumed by
// the landing page.
type FlightOfTheDay struct {
	Date        string   `json:"date"`
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Price       float64  `json:"price"`
	DiscountPct *float64 `json:"discount_pct,omitempty"`
	Category    string   `json:"category,omitempty"`
	Label       string   `json:"label,omitempty"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Airline     string   `json:"airline,omitempty"`
	Link        string   `json:"link,omitempty"`
	Permalink   string   `json:"permalink,omitempty"`
}

// WebExporter maintains one flights_of_the_day.json feed per market,
// newest first, capped at a configured number of entries. Feeds live in
// per-market-slug subdirectories so the landing pages never share a cap.
type WebExporter struct {
	dir        string
	maxEntries int
}

func NewWebExporter(dir string, maxEntries int) *WebExporter {
	if maxEntries <= 0 {
		maxEntries = 5
	}
	return &WebExporter{dir: dir, maxEntries: maxEntries}
}

// Append prepends the entry to the market's feed file and trims it to the
// cap. The feed is rewritten whole on every publication.
func (e *WebExporter) Append(marketSlug string, entry FlightOfTheDay) error {
	dir := filepath.Join(e.dir, marketSlug)
	path := filepath.Join(dir, "flights_of_the_day.json")

	var entries []FlightOfTheDay
	if raw, err := os.ReadFile(path); err == nil {
		// A corrupt feed is replaced rather than propagated.
		_ = json.Unmarshal(raw, &entries)
	}

	entries = append([]FlightOfTheDay{entry}, entries...)
	if len(entries) > e.maxEntries {
		entries = entries[:e.maxEntries]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode feed: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write feed: %w", err)
	}
	return nil
}

// EntryFromOffer builds the feed projection for a published offer.
func EntryFromOffer(offer *models.Offer, permalink string) FlightOfTheDay {
	return FlightOfTheDay{
		Date:        utils.TodayUTC().Format("2006-01-02"),
		Origin:      offer.Origin,
		Destination: offer.Destination,
		Price:       offer.Price,
		DiscountPct: offer.DiscountPct,
		Category:    offer.CategoryCode,
		Label:       offer.CategoryLabel,
		StartDate:   offer.StartDate,
		EndDate:     offer.EndDate,
		Airline:     offer.Airline,
		Link:        offer.Link,
		Permalink:   permalink,
	}
}
