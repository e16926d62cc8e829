package dto

import "time"

// CandidateDTO is one scored per-category candidate as exposed by the API.
type CandidateDTO struct {
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Price       float64  `json:"price"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Airline     string   `json:"airline,omitempty"`
	Link        string   `json:"link,omitempty"`
	DiscountPct *float64 `json:"discount_pct,omitempty"`
	Category    string   `json:"category"`
	Label       string   `json:"label"`
	Score       float64  `json:"score"`
	Main        bool     `json:"main"`
}

// SelectionDTO is a full pipeline run result.
type SelectionDTO struct {
	RunID       string         `json:"run_id"`
	Market      string         `json:"market"`
	WindowStart string         `json:"window_start"`
	WindowEnd   string         `json:"window_end"`
	Offers      int            `json:"offers_scanned"`
	Variant     string         `json:"variant"`
	Candidates  []CandidateDTO `json:"candidates"`
	CreatedAt   time.Time      `json:"created_at"`
}

// RunRequest triggers a pipeline run for one market
type RunRequest struct {
	Market string `json:"market" validate:"required,len=3,alpha"`
}

// ReviewRequest opens a review job for the latest selection of a market
type ReviewRequest struct {
	Market   string `json:"market" validate:"required,len=3,alpha"`
	VideoURL string `json:"video_url" validate:"required,url"`
}

// ReviewJobDTO describes the open review job
type ReviewJobDTO struct {
	ID         string         `json:"id"`
	Market     string         `json:"market"`
	Current    int            `json:"current"`
	Candidates []CandidateDTO `json:"candidates"`
	CreatedAt  time.Time      `json:"created_at"`
}

// PublishResponse returns the permalink of the published reel
type PublishResponse struct {
	Permalink string `json:"permalink"`
}

// RunSummaryDTO is one archived pipeline run.
type RunSummaryDTO struct {
	UUID           string    `json:"uuid"`
	Market         string    `json:"market"`
	WindowStart    string    `json:"window_start"`
	WindowEnd      string    `json:"window_end"`
	OffersScanned  int       `json:"offers_scanned"`
	CandidateCount int       `json:"candidate_count"`
	MainRoute      string    `json:"main_route,omitempty"`
	MainPrice      *float64  `json:"main_price,omitempty"`
	MainCategory   string    `json:"main_category,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
