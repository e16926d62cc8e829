package businessflow

import (
	"context"
	"math/rand"

	"github.com/mmutvidal/escapadas-go/config"
	"github.com/mmutvidal/escapadas-go/models"
	"github.com/mmutvidal/escapadas-go/repository"
)

// CategoryCandidate is the best-scoring eligible offer for one category.
type CategoryCandidate struct {
	Offer    *models.Offer   `json:"offer"`
	Category models.Category `json:"category"`
	Score    float64         `json:"score"`
}

// Selector runs the two-phase candidate selection: per-category best-of
// (phase A) followed by a weighted-random main-candidate draw (phase B).
type Selector struct {
	history    repository.PublishedHistoryRepository
	classifier *Classifier
	scorer     *Scorer
	cfg        config.PipelineConfig
	rng        *rand.Rand
}

// NewSelector creates a selector. rng drives both the classifier tag pick
// and the phase-B group draw; inject a seeded source to make runs
// reproducible in tests.
func NewSelector(
	history repository.PublishedHistoryRepository,
	classifier *Classifier,
	scorer *Scorer,
	cfg config.PipelineConfig,
	rng *rand.Rand,
) *Selector {
	return &Selector{
		history:    history,
		classifier: classifier,
		scorer:     scorer,
		cfg:        cfg,
		rng:        rng,
	}
}

// BestByCategoryScored walks the offers in input order and keeps the single
// best-scoring offer per category code. Per offer, in this fixed order:
//
//  1. skip when recently published (exact route+dates key within
//     CooldownDays, or same route with any dates within RouteCooldownDays)
//  2. skip when DiscountPct is nil or below MinDiscountPct (inclusive bound:
//     exactly MinDiscountPct passes)
//  3. classify and write the category back onto the offer; downstream
//     rendering relies on this mutation
//  4. score and replace the category incumbent only on strictly greater
//     score, so the first-seen offer wins ties
//
// The filter order is deliberate: a below-threshold offer is never
// considered for any category. An empty result means "no eligible deals
// today", not an error.
func (s *Selector) BestByCategoryScored(ctx context.Context, offers []*models.Offer) ([]CategoryCandidate, error) {
	bestPerCat := make(map[models.CategoryCode]int)
	var result []CategoryCandidate

	for _, o := range offers {
		recent, err := s.history.IsRecentlyPublished(ctx, o, s.cfg.CooldownDays, s.cfg.RouteCooldownDays)
		if err != nil {
			return nil, NewBusinessError("HISTORY_LOOKUP_FAILED", "failed to query publication history", err)
		}
		if recent {
			continue
		}

		if o.DiscountPct == nil || *o.DiscountPct < s.cfg.MinDiscountPct {
			continue
		}

		category := s.classifier.Classify(o)
		o.CategoryCode = category.Code.String()
		o.CategoryLabel = category.Label

		score := s.scorer.Score(o)

		if idx, ok := bestPerCat[category.Code]; ok {
			if score > result[idx].Score {
				result[idx] = CategoryCandidate{Offer: o, Category: category, Score: score}
			}
			continue
		}

		bestPerCat[category.Code] = len(result)
		result = append(result, CategoryCandidate{Offer: o, Category: category, Score: score})
	}

	return result, nil
}

// candidate group names for the phase-B draw, in fixed walk order
const (
	groupFinde  = "finde"
	groupChollo = "chollo"
	groupOther  = "other"
)

// ChooseMainCandidate picks the day's featured deal from the phase-A output
// via weighted-random group sampling.
//
// Entries partition into finde (finde_perfecto), chollo (ultra_chollo or the
// legacy chollo code) and other. Empty groups are excluded and the base
// weights renormalized proportionally over the rest; one uniform draw then
// selects a group by inverse CDF. Within the chosen group, all entries tied
// at the maximum score (exact float equality) are collected and one is
// picked uniformly. Returns nil for an empty input.
//
// The two-stage design guarantees content variety across categories even
// when one category dominates on raw score.
func (s *Selector) ChooseMainCandidate(entries []CategoryCandidate) *CategoryCandidate {
	if len(entries) == 0 {
		return nil
	}

	groups := map[string][]CategoryCandidate{}
	for _, e := range entries {
		switch e.Category.Code {
		case models.CategoryFindePerfecto:
			groups[groupFinde] = append(groups[groupFinde], e)
		case models.CategoryUltraChollo, models.CategoryChollo:
			groups[groupChollo] = append(groups[groupChollo], e)
		default:
			groups[groupOther] = append(groups[groupOther], e)
		}
	}

	baseWeights := map[string]float64{
		groupFinde:  s.cfg.Groups.Finde,
		groupChollo: s.cfg.Groups.Chollo,
		groupOther:  s.cfg.Groups.Other,
	}

	order := []string{groupFinde, groupChollo, groupOther}
	var available []string
	total := 0.0
	for _, name := range order {
		if len(groups[name]) > 0 {
			available = append(available, name)
			total += baseWeights[name]
		}
	}
	if len(available) == 0 || total <= 0 {
		return nil
	}

	r := s.rng.Float64()
	cumulative := 0.0
	chosen := available[len(available)-1]
	for _, name := range available {
		cumulative += baseWeights[name] / total
		if r <= cumulative {
			chosen = name
			break
		}
	}

	candidates := groups[chosen]
	bestScore := candidates[0].Score
	for _, c := range candidates[1:] {
		if c.Score > bestScore {
			bestScore = c.Score
		}
	}
	var ties []CategoryCandidate
	for _, c := range candidates {
		if c.Score == bestScore {
			ties = append(ties, c)
		}
	}

	pick := ties[s.rng.Intn(len(ties))]
	return &pick
}
