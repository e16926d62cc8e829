package businessflow

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/mmutvidal/escapadas-go/models"
)

// ReelVariant names one arm of the reel-template A/B test.
type ReelVariant string

const (
	VariantNew ReelVariant = "new"
	VariantOld ReelVariant = "old"
)

// VariantKeyMode controls which offer fields feed the bucketing hash.
type VariantKeyMode string

const (
	// KeyModeRouteDates buckets by origin+destination+dates: stable per
	// concrete trip.
	KeyModeRouteDates VariantKeyMode = "route_dates"
	// KeyModeRouteOnly buckets by origin+destination: stable per route,
	// useful to keep a route on one arm across date changes.
	KeyModeRouteOnly VariantKeyMode = "route_only"
)

// ChooseVariantDeterministic assigns the offer to a reel-template arm via a
// deterministic hash bucket, so the same trip always lands on the same arm.
//
// The bucket is the first 8 hex digits of md5(salt|key) divided by
// 0xFFFFFFFF, giving a value in [0,1]; buckets below ratioNew go to "new".
func ChooseVariantDeterministic(o *models.Offer, ratioNew float64, salt string, keyMode VariantKeyMode) ReelVariant {
	if hashBucket(salt, variantKey(o, keyMode)) < ratioNew {
		return VariantNew
	}
	return VariantOld
}

// ChooseOriginPill runs the independent on/off split for the origin pill
// overlay, salted separately so it does not correlate with the template arm.
func ChooseOriginPill(o *models.Offer, ratioOn float64, salt string) bool {
	return hashBucket(salt+"|origin-pill", variantKey(o, KeyModeRouteDates)) < ratioOn
}

func variantKey(o *models.Offer, keyMode VariantKeyMode) string {
	origin := o.Origin
	dest := o.Destination
	if keyMode == KeyModeRouteOnly {
		return origin + "|" + dest
	}
	return strings.Join([]string{origin, dest, truncate10(o.StartDate), truncate10(o.EndDate)}, "|")
}

func hashBucket(salt, key string) float64 {
	sum := md5.Sum([]byte(salt + "|" + key))
	// first 8 hex digits == first 4 bytes, big endian
	bucket := binary.BigEndian.Uint32(sum[:4])
	return float64(bucket) / float64(0xFFFFFFFF)
}

func truncate10(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// VariantLabel renders the arm pair for logging and run archives.
func VariantLabel(v ReelVariant, originPill bool) string {
	pill := "origin_pill_off"
	if originPill {
		pill = "origin_pill_on"
	}
	return fmt.Sprintf("%s/%s", v, pill)
}
