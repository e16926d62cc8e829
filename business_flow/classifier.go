package businessflow

import (
	"math/rand"
	"strings"
	"time"

	"github.com/mmutvidal/escapadas-go/models"
)

// DefaultDestinationTags maps destination IATA codes to their affinity tags.
// Immutable lookup data: the classifier receives it at construction and
// never mutates it.
var DefaultDestinationTags = map[string][]models.CategoryCode{
	// Norte / Centro Europa
	"CPH": {models.CategoryRomantica, models.CategoryCultural, models.CategoryGastronomica},
	"ARN": {models.CategoryRomantica, models.CategoryCultural, models.CategoryGastronomica},
	"GOT": {models.CategoryCultural, models.CategoryGastronomica},
	"EDI": {models.CategoryRomantica, models.CategoryCultural},
	"ATH": {models.CategoryCultural, models.CategoryGastronomica},
	"DUB": {models.CategoryCultural, models.CategoryGastronomica},
	"HAM": {models.CategoryCultural},
	"BER": {models.CategoryCultural, models.CategoryGastronomica},
	"BUD": {models.CategoryRomantica, models.CategoryCultural},
	"DRS": {models.CategoryCultural},
	"LEJ": {models.CategoryCultural},
	"PRG": {models.CategoryRomantica, models.CategoryCultural, models.CategoryGastronomica},
	"VIE": {models.CategoryRomantica, models.CategoryCultural, models.CategoryGastronomica},
	"AMS": {models.CategoryRomantica, models.CategoryCultural, models.CategoryGastronomica},
	"CGN": {models.CategoryCultural, models.CategoryGastronomica},
	"ZAG": {models.CategoryCultural},
	"NUE": {models.CategoryCultural, models.CategoryGastronomica},
	"BRU": {models.CategoryCultural, models.CategoryGastronomica},
	"FRA": {models.CategoryCultural},
	"WAW": {models.CategoryCultural, models.CategoryGastronomica},
	"MUC": {models.CategoryCultural, models.CategoryGastronomica},
	"ZRH": {models.CategoryRomantica, models.CategoryCultural, models.CategoryGastronomica},
	"BSL": {models.CategoryCultural, models.CategoryGastronomica},

	// Low-cost airports serving big cities
	"LTN": {models.CategoryCultural},
	"STN": {models.CategoryCultural},
	"LGW": {models.CategoryCultural},

	// Marruecos
	"RAK": {models.CategoryRomantica, models.CategoryCultural, models.CategoryGastronomica},

	// Portugal
	"LIS": {models.CategoryCultural, models.CategoryGastronomica},
	"OPO": {models.CategoryCultural, models.CategoryGastronomica},

	// Italia
	"NAP": {models.CategoryCultural, models.CategoryGastronomica},
	"BLQ": {models.CategoryCultural, models.CategoryGastronomica},
	"BGY": {models.CategoryRomantica, models.CategoryCultural, models.CategoryGastronomica},
	"FCO": {models.CategoryCultural, models.CategoryGastronomica},
	"MXP": {models.CategoryRomantica, models.CategoryCultural, models.CategoryGastronomica},
	"PSA": {models.CategoryCultural, models.CategoryGastronomica},
	"TSF": {models.CategoryRomantica, models.CategoryCultural, models.CategoryGastronomica},

	// Francia / Suiza francófona
	"ORY": {models.CategoryRomantica, models.CategoryCultural},
	"GVA": {models.CategoryRomantica, models.CategoryCultural, models.CategoryGastronomica},
	"LYS": {models.CategoryCultural, models.CategoryGastronomica},
	"MRS": {models.CategoryCultural, models.CategoryGastronomica},
	"TLS": {models.CategoryCultural, models.CategoryGastronomica},

	// España (península)
	"SCQ": {models.CategoryCultural, models.CategoryGastronomica},
	"SVQ": {models.CategoryCultural, models.CategoryGastronomica},
	"AGP": {models.CategoryGastronomica, models.CategoryCultural},
	"BIO": {models.CategoryCultural, models.CategoryGastronomica},
	"GRX": {models.CategoryRomantica, models.CategoryCultural, models.CategoryGastronomica},
	"VIT": {models.CategoryCultural, models.CategoryGastronomica},
	"MAD": {models.CategoryCultural, models.CategoryGastronomica},
	"ZAZ": {models.CategoryCultural, models.CategoryGastronomica},
	"ALC": {models.CategoryGastronomica},
	"VLC": {models.CategoryCultural, models.CategoryGastronomica},
	"XRY": {models.CategoryCultural, models.CategoryGastronomica},
	"OVD": {models.CategoryGastronomica},
	"SDR": {models.CategoryGastronomica},

	// Islas / costa con enfoque foodie
	"LPA": {models.CategoryGastronomica},
}

// Classifier assigns exactly one content category to an offer.
//
// The destination tag pick is intentionally randomized across calls so that
// repeated publications about the same city vary in tone; within a single
// pipeline pass each offer is classified once, so the run itself is stable.
type Classifier struct {
	tags   map[string][]models.CategoryCode
	labels map[models.CategoryCode]string
	rng    *rand.Rand
}

// NewClassifier creates a classifier over the given tag table. rng is the
// injected randomness source; pass a seeded rand.New in tests for
// deterministic classification.
func NewClassifier(tags map[string][]models.CategoryCode, labels map[models.CategoryCode]string, rng *rand.Rand) *Classifier {
	if tags == nil {
		tags = DefaultDestinationTags
	}
	if labels == nil {
		labels = models.DestinationCategoryLabels
	}
	return &Classifier{tags: tags, labels: labels, rng: rng}
}

// Classify decides the offer's category by strict priority:
//  1. finde_perfecto: Friday departure, Sunday return, departure hour in
//     [16,22], return hour in [15,22], trip length 1–3 days, all five at once
//  2. destination-affinity tag, picked uniformly at random
//  3. ultra_chollo fallback
//
// Unparseable timestamps simply fail the weekday/hour checks and fall
// through; classification never errors.
func (c *Classifier) Classify(o *models.Offer) models.Category {
	dtOut := o.DepartureTime()
	dtRet := o.ReturnTime()

	if dtOut != nil && dtRet != nil {
		durationDays := int(dtRet.Sub(*dtOut).Hours() / 24)
		if dtOut.Weekday() == time.Friday &&
			dtRet.Weekday() == time.Sunday &&
			dtOut.Hour() >= 16 && dtOut.Hour() <= 22 &&
			dtRet.Hour() >= 15 && dtRet.Hour() <= 22 &&
			durationDays >= 1 && durationDays <= 3 {
			return models.Category{Code: models.CategoryFindePerfecto, Label: models.LabelFindePerfecto}
		}
	}

	if cat, ok := c.pickDestinationCategory(o); ok {
		return cat
	}

	return models.Category{Code: models.CategoryUltraChollo, Label: models.LabelUltraChollo}
}

func (c *Classifier) pickDestinationCategory(o *models.Offer) (models.Category, bool) {
	tags := c.tags[strings.ToUpper(o.Destination)]
	if len(tags) == 0 {
		return models.Category{}, false
	}

	tag := tags[c.rng.Intn(len(tags))]
	label, ok := c.labels[tag]
	if !ok {
		return models.Category{}, false
	}
	return models.Category{Code: tag, Label: label}, true
}
