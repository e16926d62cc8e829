// Package services provides external service integrations and technical concerns like flight search, review delivery, and tokens
package services

import (
	"context"
	"time"

	"github.com/mmutvidal/escapadas-go/models"
)

// FlightSearchProvider is one upstream flight API. Implementations return
// round-trip offers for a single origin and date pair. A provider may
// return an empty list; transport failures surface as errors and are
// isolated at the aggregation boundary, never aborting sibling providers.
type FlightSearchProvider interface {
	Name() string
	Search(ctx context.Context, origin string, departDate, returnDate time.Time) ([]*models.Offer, error)
}
