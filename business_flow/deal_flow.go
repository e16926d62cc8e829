package businessflow

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mmutvidal/escapadas-go/app/services"
	"github.com/mmutvidal/escapadas-go/config"
	"github.com/mmutvidal/escapadas-go/models"
	"github.com/mmutvidal/escapadas-go/repository"
	"github.com/mmutvidal/escapadas-go/utils"
)

var (
	pipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total pipeline invocations partitioned by market and outcome",
		},
		[]string{"market", "outcome"},
	)
	pipelineOffersFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_offers_fetched_total",
			Help: "Offers returned by providers",
		},
		[]string{"market", "provider"},
	)
	pipelineProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_provider_errors_total",
			Help: "Provider search failures skipped at the aggregation boundary",
		},
		[]string{"market", "provider"},
	)
	pipelineCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_candidates_per_run",
			Help:    "Candidates surviving cooldown and discount filters",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 8, 12},
		},
		[]string{"market"},
	)
)

// DailySelection is the outcome of one pipeline run for a market. The
// candidate list is stable and re-orderable; the chosen main candidate is
// always at index 0.
type DailySelection struct {
	RunID       uuid.UUID           `json:"run_id"`
	Market      config.Market       `json:"market"`
	WindowStart time.Time           `json:"window_start"`
	WindowEnd   time.Time           `json:"window_end"`
	Offers      int                 `json:"offers_scanned"`
	Candidates  []CategoryCandidate `json:"candidates"`
	Main        *CategoryCandidate  `json:"main"`
	Variant     ReelVariant         `json:"variant"`
	OriginPill  bool                `json:"origin_pill"`
	CreatedAt   time.Time           `json:"created_at"`
}

// DealSelectionFlow runs the daily deal discovery pipeline
type DealSelectionFlow interface {
	RunDaily(ctx context.Context, market config.Market) (*DailySelection, error)
	LatestSelection(marketOrigin string) *DailySelection
}

// DealSelectionFlowImpl implements the deal selection business flow
type DealSelectionFlowImpl struct {
	providers []services.FlightSearchProvider
	cache     services.SearchCache
	geo       *services.GeoService
	selector  *Selector
	runRepo   repository.PipelineRunRepository
	searchCfg config.SearchConfig
	cfg       config.PipelineConfig
	rng       *rand.Rand
	logger    *log.Logger

	mu     sync.RWMutex
	latest map[string]*DailySelection
}

// NewDealSelectionFlow creates a new deal selection flow instance
func NewDealSelectionFlow(
	providers []services.FlightSearchProvider,
	cache services.SearchCache,
	geo *services.GeoService,
	selector *Selector,
	runRepo repository.PipelineRunRepository,
	searchCfg config.SearchConfig,
	cfg config.PipelineConfig,
	rng *rand.Rand,
	logger *log.Logger,
) DealSelectionFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &DealSelectionFlowImpl{
		providers: providers,
		cache:     cache,
		geo:       geo,
		selector:  selector,
		runRepo:   runRepo,
		searchCfg: searchCfg,
		cfg:       cfg,
		rng:       rng,
		logger:    logger,
		latest:    make(map[string]*DailySelection),
	}
}

// RunDaily executes one full pipeline pass for a market: generate the
// search window, scan providers over every weekend date pair, annotate
// route pricing, select per-category bests and draw the main candidate.
//
// ErrNoOffers and ErrNoCandidates are flow control for an empty market
// day, not failures: the caller aborts this invocation and waits for the
// next schedule.
func (s *DealSelectionFlowImpl) RunDaily(ctx context.Context, market config.Market) (*DailySelection, error) {
	start, end := s.searchWindow()
	s.logger.Printf("pipeline %s: searching %s → %s", market.Origin, start.Format("2006-01-02"), end.Format("2006-01-02"))

	offers := s.collectOffers(ctx, market, start, end)
	if len(offers) == 0 {
		pipelineRunsTotal.WithLabelValues(market.Origin, "no_offers").Inc()
		return nil, ErrNoOffers
	}
	s.logger.Printf("pipeline %s: %d offers collected", market.Origin, len(offers))

	s.geo.EnrichDistances(offers)
	AnnotateRoutePriceStats(offers, s.cfg.PricePercentile, s.cfg.MinSamples)

	candidates, err := s.selector.BestByCategoryScored(ctx, offers)
	if err != nil {
		pipelineRunsTotal.WithLabelValues(market.Origin, "error").Inc()
		return nil, err
	}
	pipelineCandidates.WithLabelValues(market.Origin).Observe(float64(len(candidates)))

	if len(candidates) == 0 {
		pipelineRunsTotal.WithLabelValues(market.Origin, "no_candidates").Inc()
		s.archiveRun(ctx, market, start, end, len(offers), nil, nil)
		return nil, ErrNoCandidates
	}

	main := s.selector.ChooseMainCandidate(candidates)
	moveMainFirst(candidates, main)

	sel := &DailySelection{
		RunID:       uuid.New(),
		Market:      market,
		WindowStart: start,
		WindowEnd:   end,
		Offers:      len(offers),
		Candidates:  candidates,
		Main:        &candidates[0],
		Variant:     ChooseVariantDeterministic(candidates[0].Offer, s.cfg.VariantRatioNew, s.cfg.VariantSalt, KeyModeRouteDates),
		OriginPill:  ChooseOriginPill(candidates[0].Offer, s.cfg.OriginPillRatio, s.cfg.VariantSalt),
		CreatedAt:   utils.UTCNow(),
	}

	s.archiveRun(ctx, market, start, end, len(offers), candidates, sel.Main)
	pipelineRunsTotal.WithLabelValues(market.Origin, "ok").Inc()

	s.mu.Lock()
	s.latest[market.Origin] = sel
	s.mu.Unlock()

	s.logger.Printf("pipeline %s: main candidate %s → %s | %.2f€ | %s (variant %s)",
		market.Origin, sel.Main.Offer.Origin, sel.Main.Offer.Destination,
		sel.Main.Offer.Price, sel.Main.Category.Code, VariantLabel(sel.Variant, sel.OriginPill))

	return sel, nil
}

// LatestSelection returns the most recent selection kept in memory for a
// market, nil when no run has succeeded yet.
func (s *DealSelectionFlowImpl) LatestSelection(marketOrigin string) *DailySelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest[marketOrigin]
}

// searchWindow starts a random min..max months into the future (months
// approximated as 30 days, offset drawn per day) and spans a fixed number
// of days from there. Keeping the window short and ahead of today is what
// makes the daily runs explore different travel dates.
func (s *DealSelectionFlowImpl) searchWindow() (time.Time, time.Time) {
	today := utils.TodayUTC()

	minDays := s.searchCfg.WindowMinMonths * 30
	maxDays := s.searchCfg.WindowMaxMonths * 30
	offset := minDays
	if maxDays > minDays {
		offset += s.rng.Intn(maxDays - minDays + 1)
	}

	span := s.searchCfg.WindowSpanDays
	if span <= 0 {
		span = 15
	}

	start := today.AddDate(0, 0, offset)
	return start, start.AddDate(0, 0, span)
}

// collectOffers scans every weekend date pair against every provider. A
// failing provider is logged and skipped; it never aborts sibling
// providers or the remaining date windows.
func (s *DealSelectionFlowImpl) collectOffers(ctx context.Context, market config.Market, start, end time.Time) []*models.Offer {
	var all []*models.Offer

	for _, pair := range GenerateWeekendDatePairs(start, end) {
		for _, provider := range s.providers {
			key := services.SearchCacheKey(provider.Name(), market.Origin, pair.Depart, pair.Return)
			if cached, ok := s.cache.Get(ctx, key); ok {
				all = append(all, cached...)
				continue
			}

			offers, err := provider.Search(ctx, market.Origin, pair.Depart, pair.Return)
			if err != nil {
				pipelineProviderErrors.WithLabelValues(market.Origin, provider.Name()).Inc()
				s.logger.Printf("pipeline %s: provider %s failed for %s→%s: %v",
					market.Origin, provider.Name(),
					pair.Depart.Format("2006-01-02"), pair.Return.Format("2006-01-02"), err)
				continue
			}

			pipelineOffersFetched.WithLabelValues(market.Origin, provider.Name()).Add(float64(len(offers)))
			s.cache.Set(ctx, key, offers)
			all = append(all, offers...)
		}
	}

	return all
}

// archiveRun persists the run summary. Archive failures are logged, never
// fatal: the selection itself is the product of the run.
func (s *DealSelectionFlowImpl) archiveRun(ctx context.Context, market config.Market, start, end time.Time, offersScanned int, candidates []CategoryCandidate, main *CategoryCandidate) {
	if s.runRepo == nil {
		return
	}

	groups := make(pq.StringArray, 0, len(candidates))
	for _, c := range candidates {
		groups = append(groups, c.Category.Code.String())
	}

	run := &models.PipelineRun{
		UUID:           uuid.New(),
		Market:         market.Origin,
		WindowStart:    start,
		WindowEnd:      end,
		OffersScanned:  offersScanned,
		CandidateCount: len(candidates),
		CategoryGroups: groups,
	}
	if main != nil {
		run.MainOrigin = main.Offer.Origin
		run.MainDestination = main.Offer.Destination
		run.MainPrice = utils.ToPtr(main.Offer.Price)
		run.MainDiscountPct = main.Offer.DiscountPct
		run.MainCategory = main.Category.Code.String()
		run.MainScore = utils.ToPtr(main.Score)
	}

	if err := s.runRepo.Save(ctx, run); err != nil {
		s.logger.Printf("pipeline %s: failed to archive run: %v", market.Origin, err)
	}
}

// moveMainFirst swaps the chosen main candidate into index 0, mirroring the
// review UX contract that position 0 is the featured deal.
func moveMainFirst(candidates []CategoryCandidate, main *CategoryCandidate) {
	if main == nil {
		return
	}
	for i := range candidates {
		if candidates[i].Offer == main.Offer && candidates[i].Category.Code == main.Category.Code {
			candidates[0], candidates[i] = candidates[i], candidates[0]
			return
		}
	}
}
