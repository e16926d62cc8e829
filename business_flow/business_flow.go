// Package businessflow contains the deal discovery, selection and
// publication workflows, kept independent of transport concerns.
package businessflow

import (
	"github.com/mmutvidal/escapadas-go/app/dto"
	"github.com/mmutvidal/escapadas-go/models"
)

// ToCandidateDTO converts a scored candidate to its API shape.
func ToCandidateDTO(c *CategoryCandidate, main bool) dto.CandidateDTO {
	return dto.CandidateDTO{
		Origin:      c.Offer.Origin,
		Destination: c.Offer.Destination,
		Price:       c.Offer.Price,
		StartDate:   c.Offer.StartDate,
		EndDate:     c.Offer.EndDate,
		Airline:     c.Offer.Airline,
		Link:        c.Offer.Link,
		DiscountPct: c.Offer.DiscountPct,
		Category:    c.Category.Code.String(),
		Label:       c.Category.Label,
		Score:       c.Score,
		Main:        main,
	}
}

// ToSelectionDTO converts a pipeline run result to its API shape. The main
// candidate is always at index 0.
func ToSelectionDTO(sel *DailySelection) dto.SelectionDTO {
	out := dto.SelectionDTO{
		RunID:       sel.RunID.String(),
		Market:      sel.Market.Origin,
		WindowStart: sel.WindowStart.Format("2006-01-02"),
		WindowEnd:   sel.WindowEnd.Format("2006-01-02"),
		Offers:      sel.Offers,
		Variant:     VariantLabel(sel.Variant, sel.OriginPill),
		CreatedAt:   sel.CreatedAt,
	}
	for i := range sel.Candidates {
		out.Candidates = append(out.Candidates, ToCandidateDTO(&sel.Candidates[i], i == 0))
	}
	return out
}

// ToReviewJobDTO converts an open review job to its API shape.
func ToReviewJobDTO(job *ReviewJob) dto.ReviewJobDTO {
	out := dto.ReviewJobDTO{
		ID:        job.ID.String(),
		Market:    job.Market.Origin,
		Current:   job.Current,
		CreatedAt: job.CreatedAt,
	}
	for i := range job.Candidates {
		out.Candidates = append(out.Candidates, ToCandidateDTO(&job.Candidates[i], i == job.Current))
	}
	return out
}

// ToRunSummaryDTO converts an archived run row to its API shape.
func ToRunSummaryDTO(run *models.PipelineRun) dto.RunSummaryDTO {
	out := dto.RunSummaryDTO{
		UUID:           run.UUID.String(),
		Market:         run.Market,
		WindowStart:    run.WindowStart.Format("2006-01-02"),
		WindowEnd:      run.WindowEnd.Format("2006-01-02"),
		OffersScanned:  run.OffersScanned,
		CandidateCount: run.CandidateCount,
		MainPrice:      run.MainPrice,
		MainCategory:   run.MainCategory,
		CreatedAt:      run.CreatedAt,
	}
	if run.MainOrigin != "" {
		out.MainRoute = run.MainOrigin + "-" + run.MainDestination
	}
	return out
}
