package sitemap

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
)

// SpiderOptions configures the crawl-based discovery fallback.
type SpiderOptions struct {
	BaseURL   string
	UserAgent string
	MaxPages  int
	MaxDepth  int
	Timeout   time.Duration
	// AllowAllDomains disables the same-host restriction, for tests
	// against httptest servers.
	AllowAllDomains bool
}

// Spider discovers page URLs by shallow-crawling from BaseURL when no
// sitemap can be resolved at all. Visit order is preserved so the
// resulting worklist is stable for a given site layout.
func Spider(ctx context.Context, opts SpiderOptions) ([]string, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid spider base URL %q", opts.BaseURL)
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 200
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 3
	}

	collectorOpts := []colly.CollectorOption{
		colly.MaxDepth(opts.MaxDepth),
		colly.Async(true),
		colly.UserAgent(opts.UserAgent),
	}
	if !opts.AllowAllDomains {
		collectorOpts = append(collectorOpts, colly.AllowedDomains(base.Host))
	}
	c := colly.NewCollector(collectorOpts...)
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 2})
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}

	var (
		mu      sync.Mutex
		visited []string
		seen    = map[string]struct{}{}
	)

	c.OnResponse(func(resp *colly.Response) {
		mu.Lock()
		defer mu.Unlock()
		u := resp.Request.URL.String()
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		visited = append(visited, u)
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := strings.TrimSpace(e.Attr("href"))
		if link == "" || strings.HasPrefix(link, "#") ||
			strings.HasPrefix(link, "javascript:") || strings.HasPrefix(link, "mailto:") {
			return
		}
		abs := e.Request.AbsoluteURL(link)
		if abs == "" {
			return
		}
		mu.Lock()
		full := len(seen) >= opts.MaxPages
		mu.Unlock()
		if full {
			return
		}
		_ = e.Request.Visit(abs)
	})

	if err := c.Visit(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("spider start: %w", err)
	}

	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
	}

	mu.Lock()
	defer mu.Unlock()
	if len(visited) > opts.MaxPages {
		visited = visited[:opts.MaxPages]
	}
	return visited, nil
}
