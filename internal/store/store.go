// Package store is the network collaborator layer: it downloads packaged
// extensions by ID and scrapes store-side reputation metadata. Nothing
// here is consumed by the analysis core except as pre-fetched inputs.
package store

import (
	"fmt"
	"net/http"
	"time"

	secerrors "github.com/crxaudit/crxaudit-cli/internal/shared/errors"
	"golang.org/x/time/rate"
)

// Store identifies a vendor extension store.
type Store string

const (
	Chrome Store = "chrome"
	Edge   Store = "edge"
)

// ParseStore validates a store name from flags or config.
func ParseStore(name string) (Store, error) {
	switch Store(name) {
	case Chrome, Edge:
		return Store(name), nil
	}
	return "", fmt.Errorf("%w: %q", secerrors.ErrUnknownStore, name)
}

// crxEndpoints are the vendor download services. The %s placeholder is
// the 32-character extension ID.
var crxEndpoints = map[Store]string{
	Chrome: "https://clients2.google.com/service/update2/crx?response=redirect&prodversion=120.0&acceptformat=crx2,crx3&x=id%%3D%s%%26uc",
	Edge:   "https://edge.microsoft.com/extensionwebstorebase/v1/crx?response=redirect&prodversion=120.0&acceptformat=crx3&x=id%%3D%s%%26uc",
}

// detailEndpoints are the public store detail pages reputation metadata
// is scraped from.
var detailEndpoints = map[Store]string{
	Chrome: "https://chromewebstore.google.com/detail/%s",
	Edge:   "https://microsoftedge.microsoft.com/addons/detail/%s",
}

// Client performs rate-limited store requests. Endpoint templates are
// overridable so tests can point at a local server.
type Client struct {
	HTTP            *http.Client
	Limiter         *rate.Limiter
	CRXEndpoints    map[Store]string
	DetailEndpoints map[Store]string
}

// NewClient builds a client with the given per-request timeout and a
// politeness budget of rps requests per second against the stores.
func NewClient(timeout time.Duration, rps int) *Client {
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		HTTP:            &http.Client{Timeout: timeout},
		Limiter:         rate.NewLimiter(rate.Limit(rps), rps),
		CRXEndpoints:    crxEndpoints,
		DetailEndpoints: detailEndpoints,
	}
}

func (c *Client) crxURL(st Store, extensionID string) (string, error) {
	tmpl, ok := c.CRXEndpoints[st]
	if !ok {
		return "", fmt.Errorf("%w: %q", secerrors.ErrUnknownStore, st)
	}
	return fmt.Sprintf(tmpl, extensionID), nil
}

func (c *Client) detailURL(st Store, extensionID string) (string, error) {
	tmpl, ok := c.DetailEndpoints[st]
	if !ok {
		return "", fmt.Errorf("%w: %q", secerrors.ErrUnknownStore, st)
	}
	return fmt.Sprintf(tmpl, extensionID), nil
}
