package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PipelineRun archives one scheduled invocation of the deal pipeline for a
// market: how many offers were scanned, which category groups produced a
// candidate, and which offer was chosen as the day's main candidate.
type PipelineRun struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	Market    string    `gorm:"size:3;index;not null" json:"market"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`

	OffersScanned  int            `json:"offers_scanned"`
	CandidateCount int            `json:"candidate_count"`
	CategoryGroups pq.StringArray `gorm:"type:text[]" json:"category_groups"`

	// Chosen main candidate, empty when the run produced no eligible deals.
	MainOrigin      string   `gorm:"size:3" json:"main_origin"`
	MainDestination string   `gorm:"size:3" json:"main_destination"`
	MainPrice       *float64 `json:"main_price,omitempty"`
	MainDiscountPct *float64 `json:"main_discount_pct,omitempty"`
	MainCategory    string   `json:"main_category"`
	MainScore       *float64 `json:"main_score,omitempty"`
}

// TableName returns the table name for the PipelineRun model
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}

// PipelineRunFilter represents filters for querying archived runs
type PipelineRunFilter struct {
	Market        *string    `json:"market,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
