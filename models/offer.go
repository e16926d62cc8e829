package models

import (
	"fmt"
	"strings"
	"time"
)

// Offer represents a single priced round-trip flight search result.
//
// Identity fields are set once by the provider that fetched the offer.
// The pricing model and the classifier annotate the same value in place
// (RouteTypicalPrice, DiscountPct, CategoryCode, CategoryLabel), so the
// pipeline threads []*Offer throughout: annotate, don't copy.
type Offer struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Price       float64 `json:"price"`
	StartDate   string  `json:"start_date"` // ISO-8601 departure timestamp
	EndDate     string  `json:"end_date"`   // ISO-8601 return timestamp
	Airline     string  `json:"airline"`
	Link        string  `json:"link,omitempty"`

	DistanceKm *float64 `json:"distance_km,omitempty"`
	PricePerKm *float64 `json:"price_per_km,omitempty"`

	// Derived annotations. Each write is idempotent and overwrite-safe.
	RouteTypicalPrice *float64 `json:"route_typical_price,omitempty"`
	DiscountPct       *float64 `json:"discount_pct,omitempty"`
	CategoryCode      string   `json:"category_code,omitempty"`
	CategoryLabel     string   `json:"category_label,omitempty"`
}

// RouteKey returns the origin-destination pair used to group offers for
// route-level price statistics.
func (o *Offer) RouteKey() string {
	return strings.ToUpper(o.Origin) + "-" + strings.ToUpper(o.Destination)
}

// PublicationKey builds the history key for this offer:
// ORIGIN-DEST-YYYY-MM-DD-YYYY-MM-DD (timestamps truncated to day).
func (o *Offer) PublicationKey() string {
	start := truncateToDay(o.StartDate)
	end := truncateToDay(o.EndDate)
	return fmt.Sprintf("%s-%s-%s-%s",
		strings.ToUpper(o.Origin), strings.ToUpper(o.Destination), start, end)
}

// HasValidPrice reports whether the offer carries a usable positive price.
// Offers failing this check are excluded upstream of scoring.
func (o *Offer) HasValidPrice() bool {
	return o.Price > 0
}

// DepartureTime parses the departure timestamp, nil on failure.
func (o *Offer) DepartureTime() *time.Time {
	return ParseFlexibleTimestamp(o.StartDate)
}

// ReturnTime parses the return timestamp, nil on failure.
func (o *Offer) ReturnTime() *time.Time {
	return ParseFlexibleTimestamp(o.EndDate)
}

// ParseFlexibleTimestamp accepts ISO-8601 timestamps with an optional
// trailing Z, optional fractional seconds, or a bare date. Returns nil when
// the string cannot be parsed; callers degrade gracefully instead of failing.
func ParseFlexibleTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "Z")

	layouts := []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func truncateToDay(ts string) string {
	ts = strings.TrimSpace(ts)
	if len(ts) > 10 {
		return ts[:10]
	}
	return ts
}
