package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	secerrors "github.com/crxaudit/crxaudit-cli/internal/shared/errors"
)

func TestParseStore(t *testing.T) {
	if st, err := ParseStore("chrome"); err != nil || st != Chrome {
		t.Errorf("ParseStore(chrome) = (%v, %v)", st, err)
	}
	if st, err := ParseStore("edge"); err != nil || st != Edge {
		t.Errorf("ParseStore(edge) = (%v, %v)", st, err)
	}
	if _, err := ParseStore("firefox"); !errors.Is(err, secerrors.ErrUnknownStore) {
		t.Errorf("ParseStore(firefox) err = %v, want ErrUnknownStore", err)
	}
}

func TestCRXURLBuilding(t *testing.T) {
	c := NewClient(5*time.Second, 1)

	url, err := c.crxURL(Chrome, "abcdefghijklmnopabcdefghijklmnop")
	if err != nil {
		t.Fatalf("crxURL: %v", err)
	}
	if !strings.Contains(url, "clients2.google.com") {
		t.Errorf("chrome url = %q", url)
	}
	if !strings.Contains(url, "id%3Dabcdefghijklmnopabcdefghijklmnop%26uc") {
		t.Errorf("chrome url missing encoded id parameter: %q", url)
	}

	url, err = c.crxURL(Edge, "someid")
	if err != nil {
		t.Fatalf("crxURL edge: %v", err)
	}
	if !strings.Contains(url, "edge.microsoft.com") {
		t.Errorf("edge url = %q", url)
	}
}

func TestFetchCRX(t *testing.T) {
	payload := []byte("Cr24 fake crx payload")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, 10)
	c.CRXEndpoints = map[Store]string{Chrome: srv.URL + "/crx?id=%s"}

	got, err := c.FetchCRX(context.Background(), Chrome, "someextensionid")
	if err != nil {
		t.Fatalf("FetchCRX: %v", err)
	}
	if string(got) != string(payload) {
		t.Error("fetched bytes do not match served payload")
	}
}

func TestFetchCRXRejectsEmptyID(t *testing.T) {
	c := NewClient(time.Second, 1)
	if _, err := c.FetchCRX(context.Background(), Chrome, ""); !errors.Is(err, secerrors.ErrEmptyExtensionID) {
		t.Errorf("err = %v, want ErrEmptyExtensionID", err)
	}
}

func TestFetchCRXNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, 10)
	c.CRXEndpoints = map[Store]string{Chrome: srv.URL + "/%s"}

	if _, err := c.FetchCRX(context.Background(), Chrome, "x"); !errors.Is(err, secerrors.ErrStoreFetch) {
		t.Errorf("err = %v, want ErrStoreFetch", err)
	}
}

const detailPageFixture = `
<html><body>
<h1>Sample Extension</h1>
<span>Offered by: Example Corp</span>
<div>4.7 out of 5</div>
<a>12,345 ratings</a>
<div>10,000,000+ users</div>
<div>Updated: July 14, 2026</div>
<span class="badge">Featured badge</span>
<span class="badge">Established publisher</span>
</body></html>`

func TestParseReputation(t *testing.T) {
	rep := parseReputation(detailPageFixture)

	if rep.Rating != 4.7 {
		t.Errorf("rating = %f", rep.Rating)
	}
	if rep.RatingCount != 12345 {
		t.Errorf("rating count = %d", rep.RatingCount)
	}
	if rep.UserCount != "10,000,000+" {
		t.Errorf("user count = %q", rep.UserCount)
	}
	if rep.LastUpdated != "July 14, 2026" {
		t.Errorf("last updated = %q", rep.LastUpdated)
	}
	if rep.Publisher != "Example Corp" {
		t.Errorf("publisher = %q", rep.Publisher)
	}
	if !rep.IsFeatured {
		t.Error("featured badge not detected")
	}
	if !rep.IsVerifiedPublisher {
		t.Error("verified publisher badge not detected")
	}
}

func TestParseReputationEmptyPage(t *testing.T) {
	rep := parseReputation("<html><body>nothing useful</body></html>")

	if rep.Rating != 0 || rep.RatingCount != 0 || rep.UserCount != "" ||
		rep.IsFeatured || rep.IsVerifiedPublisher {
		t.Errorf("expected zero-value reputation, got %+v", rep)
	}
}

func TestParseCompactCount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"12,345", 12345},
		{"3.4K", 3400},
		{"1.2M", 1200000},
		{"980", 980},
		{"garbage", 0},
	}

	for _, tc := range cases {
		if got := parseCompactCount(tc.in); got != tc.want {
			t.Errorf("parseCompactCount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFetchReputation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(detailPageFixture))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, 10)
	c.DetailEndpoints = map[Store]string{Chrome: srv.URL + "/detail/%s"}

	rep, err := c.FetchReputation(context.Background(), Chrome, "someextensionid")
	if err != nil {
		t.Fatalf("FetchReputation: %v", err)
	}
	if rep.Rating != 4.7 || !rep.IsFeatured {
		t.Errorf("unexpected reputation: %+v", rep)
	}
}
