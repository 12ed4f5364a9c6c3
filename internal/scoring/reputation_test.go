package scoring

import (
	"testing"
	"time"
)

func TestReputationPerfectScore(t *testing.T) {
	rep := ReputationData{
		Publisher:           "Example Corp",
		Rating:              5,
		RatingCount:         100000,
		UserCount:           "10,000,000+",
		LastUpdated:         time.Now().Format("January 2, 2006"),
		IsFeatured:          true,
		IsVerifiedPublisher: true,
	}

	if got := CalculateReputation(rep); got != 100 {
		t.Errorf("score = %d, want exactly 100", got)
	}
}

func TestReputationZeroData(t *testing.T) {
	if got := CalculateReputation(ReputationData{}); got != 0 {
		t.Errorf("score = %d, want 0", got)
	}
}

func TestReputationBadgeTerms(t *testing.T) {
	verified := CalculateReputation(ReputationData{IsVerifiedPublisher: true})
	if verified != 20 {
		t.Errorf("verified badge = %d, want 20", verified)
	}

	featured := CalculateReputation(ReputationData{IsFeatured: true})
	if featured != 10 {
		t.Errorf("featured badge = %d, want 10", featured)
	}
}

func TestReputationRatingTerm(t *testing.T) {
	if got := CalculateReputation(ReputationData{Rating: 2.5}); got != 10 {
		t.Errorf("rating 2.5 = %d, want 10", got)
	}
}

func TestReputationRatingCountClamped(t *testing.T) {
	// 10^7 ratings is past the 100k reference point; term must cap at 15.
	if got := CalculateReputation(ReputationData{RatingCount: 10000000}); got != 15 {
		t.Errorf("huge rating count = %d, want 15", got)
	}
}

func TestReputationUserCountClamped(t *testing.T) {
	// A billion users is past the 10M reference point; term must cap at 20.
	if got := CalculateReputation(ReputationData{UserCount: "1,000,000,000+"}); got != 20 {
		t.Errorf("huge user count = %d, want 20", got)
	}
}

func TestParseUserCount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"10,000,000+", 10000000},
		{"2,345 users", 2345},
		{"847", 847},
		{"", 0},
		{"unknown", 0},
	}

	for _, tc := range cases {
		if got := parseUserCount(tc.in); got != tc.want {
			t.Errorf("parseUserCount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestRecencyPoints(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		label string
		date  string
		want  int
	}{
		{"fresh", "July 1, 2026", 15},
		{"under a year", "November 1, 2025", 10},
		{"under two years", "October 1, 2024", 5},
		{"stale", "January 1, 2020", 0},
		{"iso form", "2026-06-15", 15},
		{"unparseable", "a while ago", 5},
		{"empty", "", 0},
	}

	for _, tc := range cases {
		if got := recencyPoints(tc.date, now); got != tc.want {
			t.Errorf("%s: recencyPoints(%q) = %d, want %d", tc.label, tc.date, got, tc.want)
		}
	}
}
