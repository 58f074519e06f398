// Package httpx is the lightweight HTTP client used for plain GETs:
// sitemap strategies, robots.txt, and web-cache lookups. Anything that
// needs JavaScript goes through internal/browser instead.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	hc        *http.Client
	userAgent string
}

func New(userAgent string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		hc:        &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Get fetches url and returns the status code and body. A non-2xx
// status is returned as an error alongside the code so callers can log
// it without inspecting the body.
func (c *Client) Get(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, nil, fmt.Errorf("get %s timed out: %w", url, err)
		}
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, body, fmt.Errorf("http status %d for %s", resp.StatusCode, url)
	}
	return resp.StatusCode, body, nil
}
