package store

import (
	"context"
	"fmt"
	"io"
	"net/http"

	secerrors "github.com/crxaudit/crxaudit-cli/internal/shared/errors"
)

// FetchCRX downloads the packaged extension for the given ID and returns
// the raw bytes (CRX-framed; the analyzer unwraps them).
func (c *Client) FetchCRX(ctx context.Context, st Store, extensionID string) ([]byte, error) {
	if extensionID == "" {
		return nil, secerrors.ErrEmptyExtensionID
	}

	url, err := c.crxURL(st, extensionID)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty package for %s", secerrors.ErrStoreFetch, extensionID)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", secerrors.ErrStoreFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", secerrors.ErrStoreFetch, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
