package businessflow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmutvidal/escapadas-go/app/services"
	"github.com/mmutvidal/escapadas-go/config"
	"github.com/mmutvidal/escapadas-go/repository"
	"github.com/mmutvidal/escapadas-go/utils"
)

// ReviewJob is one selection awaiting human approval. The current index
// points at the candidate that will be published when the job is
// confirmed; NextCandidate rotates it through the list.
type ReviewJob struct {
	ID         uuid.UUID           `json:"id"`
	Market     config.Market       `json:"market"`
	Candidates []CategoryCandidate `json:"candidates"`
	Current    int                 `json:"current"`
	VideoURL   string              `json:"video_url"`
	CreatedAt  time.Time           `json:"created_at"`
}

// PublishFlow manages the review-then-publish half of the workflow
type PublishFlow interface {
	SendForReview(ctx context.Context, sel *DailySelection, videoURL string) (*ReviewJob, error)
	CurrentJob() *ReviewJob
	NextCandidate(ctx context.Context, jobID uuid.UUID) (*CategoryCandidate, error)
	Publish(ctx context.Context, jobID uuid.UUID) (string, error)
}

// PublishFlowImpl implements the publish business flow
type PublishFlowImpl struct {
	review    services.ReviewChannel
	publisher services.PublishChannel
	history   repository.PublishedHistoryRepository
	exporter  *WebExporter
	reports   *services.ReportService
	cfg       config.ExportConfig
	logger    *log.Logger

	mu  sync.Mutex
	job *ReviewJob
}

// NewPublishFlow creates a new publish flow instance
func NewPublishFlow(
	review services.ReviewChannel,
	publisher services.PublishChannel,
	history repository.PublishedHistoryRepository,
	exporter *WebExporter,
	reports *services.ReportService,
	cfg config.ExportConfig,
	logger *log.Logger,
) PublishFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &PublishFlowImpl{
		review:    review,
		publisher: publisher,
		history:   history,
		exporter:  exporter,
		reports:   reports,
		cfg:       cfg,
		logger:    logger,
	}
}

// SendForReview opens a review job for a selection and pushes the main
// candidate to the review channel. Only one job is live at a time; a new
// selection replaces the previous unconfirmed job.
func (f *PublishFlowImpl) SendForReview(ctx context.Context, sel *DailySelection, videoURL string) (*ReviewJob, error) {
	if sel == nil || len(sel.Candidates) == 0 {
		return nil, ErrNoCandidates
	}

	job := &ReviewJob{
		ID:         uuid.New(),
		Market:     sel.Market,
		Candidates: sel.Candidates,
		Current:    0,
		VideoURL:   videoURL,
		CreatedAt:  utils.UTCNow(),
	}

	if f.review != nil {
		caption := f.BuildCaption(&job.Candidates[0], sel.Market)
		if err := f.review.SendCandidate(ctx, caption, videoURL); err != nil {
			return nil, NewBusinessError("REVIEW_SEND_FAILED", "Failed to send candidate for review", err)
		}
	}

	f.mu.Lock()
	f.job = job
	f.mu.Unlock()

	return job, nil
}

// CurrentJob returns the live review job, nil when none is open.
func (f *PublishFlowImpl) CurrentJob() *ReviewJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.job
}

// NextCandidate rotates the review job to the next candidate in the list,
// wrapping back to the start, and resends it to the review channel.
func (f *PublishFlowImpl) NextCandidate(ctx context.Context, jobID uuid.UUID) (*CategoryCandidate, error) {
	f.mu.Lock()
	if f.job == nil || f.job.ID != jobID {
		f.mu.Unlock()
		return nil, ErrNoReviewJob
	}
	f.job.Current = (f.job.Current + 1) % len(f.job.Candidates)
	candidate := &f.job.Candidates[f.job.Current]
	market := f.job.Market
	videoURL := f.job.VideoURL
	f.mu.Unlock()

	if f.review != nil {
		caption := f.BuildCaption(candidate, market)
		if err := f.review.SendCandidate(ctx, caption, videoURL); err != nil {
			return nil, NewBusinessError("REVIEW_SEND_FAILED", "Failed to send candidate for review", err)
		}
	}
	return candidate, nil
}

// Publish confirms the current candidate of the review job: publishes the
// reel, records the route in the publication history, refreshes the web
// feed and writes the run report. History registration failure is fatal
// for the call since skipping it would let the cooldown repeat the deal.
func (f *PublishFlowImpl) Publish(ctx context.Context, jobID uuid.UUID) (string, error) {
	f.mu.Lock()
	job := f.job
	f.mu.Unlock()

	if job == nil || job.ID != jobID {
		return "", ErrNoReviewJob
	}
	if f.publisher == nil {
		return "", ErrPublishChannelDisabled
	}

	candidate := &job.Candidates[job.Current]
	caption := f.BuildCaption(candidate, job.Market)

	permalink, err := f.publisher.PublishReel(ctx, job.VideoURL, caption)
	if err != nil {
		return "", NewBusinessError("PUBLISH_FAILED", "Failed to publish reel", err)
	}

	if err := f.history.RegisterPublication(ctx, candidate.Offer, candidate.Category.Code.String()); err != nil {
		return permalink, NewBusinessError("HISTORY_WRITE_FAILED", "Reel published but history update failed", err)
	}

	if f.exporter != nil {
		if err := f.exporter.Append(job.Market.Slug, EntryFromOffer(candidate.Offer, permalink)); err != nil {
			f.logger.Printf("publish %s: web feed update failed: %v", job.Market.Origin, err)
		}
	}

	f.writeReport(job)

	if f.review != nil {
		msg := fmt.Sprintf("✅ Publicado %s → %s (%s): %s",
			candidate.Offer.Origin, candidate.Offer.Destination,
			candidate.Category.Label, permalink)
		if err := f.review.SendMessage(ctx, msg); err != nil {
			f.logger.Printf("publish %s: confirmation message failed: %v", job.Market.Origin, err)
		}
	}

	f.mu.Lock()
	if f.job != nil && f.job.ID == jobID {
		f.job = nil
	}
	f.mu.Unlock()

	return permalink, nil
}

func (f *PublishFlowImpl) writeReport(job *ReviewJob) {
	if f.reports == nil {
		return
	}
	rows := make([]services.CandidateReportRow, 0, len(job.Candidates))
	for i, c := range job.Candidates {
		rows = append(rows, services.CandidateReportRow{
			Rank:          i + 1,
			Main:          i == job.Current,
			Origin:        c.Offer.Origin,
			Destination:   c.Offer.Destination,
			Price:         c.Offer.Price,
			DiscountPct:   c.Offer.DiscountPct,
			CategoryCode:  c.Category.Code.String(),
			CategoryLabel: c.Category.Label,
			Score:         c.Score,
			StartDate:     c.Offer.StartDate,
			EndDate:       c.Offer.EndDate,
			Airline:       c.Offer.Airline,
		})
	}
	if path, err := f.reports.WriteCandidateReport(job.Market.Origin, utils.UTCNow(), rows); err != nil {
		f.logger.Printf("publish %s: report write failed: %v", job.Market.Origin, err)
	} else {
		f.logger.Printf("publish %s: report written to %s", job.Market.Origin, path)
	}
}

// BuildCaption renders the review/publication caption for a candidate. The
// tone stays fixed per category label; copywriting beyond the template is
// out of scope here.
func (f *PublishFlowImpl) BuildCaption(c *CategoryCandidate, market config.Market) string {
	o := c.Offer
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s → %s\n", c.Category.Label, market.OriginCity, o.Destination)
	fmt.Fprintf(&b, "✈️ %.0f€ ida y vuelta", o.Price)
	if o.DiscountPct != nil && *o.DiscountPct > 0 {
		fmt.Fprintf(&b, " (-%.0f%%)", *o.DiscountPct)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "📅 %s → %s\n", o.StartDate, o.EndDate)
	if o.Airline != "" {
		fmt.Fprintf(&b, "🛫 %s\n", o.Airline)
	}
	if f.cfg.BrandHandle != "" {
		fmt.Fprintf(&b, "\nSigue a %s para más escapadas", f.cfg.BrandHandle)
	}
	return b.String()
}
