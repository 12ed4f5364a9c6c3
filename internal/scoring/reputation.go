package scoring

import (
	"math"
	"strings"
	"time"
	"unicode"
)

// ReputationData is the store-side metadata for an extension, supplied
// by the caller (typically scraped from the store detail page) before
// analysis. The core never fetches it.
type ReputationData struct {
	Publisher           string  `json:"publisher"`
	Rating              float64 `json:"rating"` // 0-5
	RatingCount         int     `json:"rating_count"`
	UserCount           string  `json:"user_count"` // raw store text, e.g. "10,000,000+"
	LastUpdated         string  `json:"last_updated"`
	IsFeatured          bool    `json:"is_featured"`
	IsVerifiedPublisher bool    `json:"is_verified_publisher"`
}

const (
	verifiedPublisherPoints = 20
	ratingPointsMax         = 20
	ratingCountPointsMax    = 15
	userCountPointsMax      = 20
	featuredPoints          = 10

	// Log-scale reference points: 100k ratings and 10M users earn full marks.
	ratingCountLogCeiling = 5
	userCountLogCeiling   = 7
)

// lastUpdatedLayouts covers the date forms store pages use plus ISO dates.
var lastUpdatedLayouts = []string{
	"January 2, 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"2006-01-02",
	time.RFC3339,
}

// CalculateReputation folds store metadata into a 0-100 trust score.
// Each term is clamped non-negative before summing; the sum is clamped
// to 100.
func CalculateReputation(rep ReputationData) int {
	sum := 0.0

	if rep.IsVerifiedPublisher {
		sum += verifiedPublisherPoints
	}

	sum += math.Max(0, rep.Rating/5*ratingPointsMax)

	if rep.RatingCount > 0 {
		points := math.Log10(float64(rep.RatingCount)) / ratingCountLogCeiling * ratingCountPointsMax
		sum += math.Min(ratingCountPointsMax, math.Max(0, points))
	}

	if users := parseUserCount(rep.UserCount); users > 0 {
		points := math.Log10(float64(users)) / userCountLogCeiling * userCountPointsMax
		sum += math.Min(userCountPointsMax, math.Max(0, points))
	}

	sum += float64(recencyPoints(rep.LastUpdated, time.Now()))

	if rep.IsFeatured {
		sum += featuredPoints
	}

	return int(math.Round(math.Min(100, sum)))
}

// parseUserCount strips everything but digits out of the store's user
// count text ("10,000,000+" becomes 10000000).
func parseUserCount(s string) int64 {
	var n int64
	seen := false
	for _, r := range s {
		if !unicode.IsDigit(r) {
			continue
		}
		seen = true
		n = n*10 + int64(r-'0')
	}
	if !seen {
		return 0
	}
	return n
}

// recencyPoints rewards recently maintained extensions. An unparseable
// but non-empty date degrades to a flat +5 rather than an error.
func recencyPoints(lastUpdated string, now time.Time) int {
	trimmed := strings.TrimSpace(lastUpdated)
	if trimmed == "" {
		return 0
	}

	for _, layout := range lastUpdatedLayouts {
		updated, err := time.Parse(layout, trimmed)
		if err != nil {
			continue
		}

		months := int(now.Sub(updated).Hours() / (24 * 30))
		switch {
		case months < 6:
			return 15
		case months < 12:
			return 10
		case months < 24:
			return 5
		default:
			return 0
		}
	}
	return 5
}
