package store

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/crxaudit/crxaudit-cli/internal/scoring"
	secerrors "github.com/crxaudit/crxaudit-cli/internal/shared/errors"
)

// Detail-page scraping signatures. Store markup changes frequently, so
// every field is best-effort: a miss leaves the field at its zero value
// and the reputation scorer degrades accordingly.
var (
	ratingPattern      = regexp.MustCompile(`(?i)([0-9](?:\.[0-9])?)\s*out of (?:5|five)`)
	ratingCountPattern = regexp.MustCompile(`(?i)([0-9][0-9,.]*[KM]?)\s*ratings?`)
	userCountPattern   = regexp.MustCompile(`(?i)([0-9][0-9,.]*\+?)\s*users?`)
	lastUpdatedPattern = regexp.MustCompile(`(?i)updated:?\s*(?:</[a-z]+>\s*<[a-z]+[^>]*>)?\s*([A-Za-z]+ [0-9]{1,2}, [0-9]{4})`)
	publisherPattern   = regexp.MustCompile(`(?i)offered by:?\s*(?:<[^>]+>\s*)?([^<\n]{1,80})`)
)

// Badge markers that survive markup changes better than CSS classes do.
var (
	featuredMarkers = []string{"Featured badge", `"featured"`, ">Featured<"}
	verifiedMarkers = []string{"Established publisher", "Verified publisher", `"verified_publisher"`}
)

// FetchReputation scrapes the extension's store detail page into a
// ReputationData record.
func (c *Client) FetchReputation(ctx context.Context, st Store, extensionID string) (*scoring.ReputationData, error) {
	if extensionID == "" {
		return nil, secerrors.ErrEmptyExtensionID
	}

	url, err := c.detailURL(st, extensionID)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	rep := parseReputation(string(body))
	return &rep, nil
}

// parseReputation extracts reputation fields from detail-page HTML.
func parseReputation(html string) scoring.ReputationData {
	rep := scoring.ReputationData{}

	if m := ratingPattern.FindStringSubmatch(html); m != nil {
		if rating, err := strconv.ParseFloat(m[1], 64); err == nil && rating >= 0 && rating <= 5 {
			rep.Rating = rating
		}
	}

	if m := ratingCountPattern.FindStringSubmatch(html); m != nil {
		rep.RatingCount = int(parseCompactCount(m[1]))
	}

	if m := userCountPattern.FindStringSubmatch(html); m != nil {
		rep.UserCount = m[1]
	}

	if m := lastUpdatedPattern.FindStringSubmatch(html); m != nil {
		rep.LastUpdated = m[1]
	}

	if m := publisherPattern.FindStringSubmatch(html); m != nil {
		rep.Publisher = strings.TrimSpace(m[1])
	}

	for _, marker := range featuredMarkers {
		if strings.Contains(html, marker) {
			rep.IsFeatured = true
			break
		}
	}
	for _, marker := range verifiedMarkers {
		if strings.Contains(html, marker) {
			rep.IsVerifiedPublisher = true
			break
		}
	}
	return rep
}

// parseCompactCount reads store count text such as "12,345", "3.4K", or
// "1.2M" into an integer.
func parseCompactCount(s string) int64 {
	s = strings.TrimSpace(s)
	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "K"), strings.HasSuffix(s, "k"):
		multiplier = 1_000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "M"), strings.HasSuffix(s, "m"):
		multiplier = 1_000_000
		s = s[:len(s)-1]
	}

	s = strings.ReplaceAll(s, ",", "")
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f * float64(multiplier))
	}
	return 0
}
