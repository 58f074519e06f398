package sitemap

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"docsnap/internal/browser"
	"docsnap/internal/httpx"
)

// ErrNoSitemap is returned when every resolution strategy has been
// exhausted. It is the only fatal outcome of discovery.
var ErrNoSitemap = errors.New("no sitemap resolved")

const webCachePrefix = "https://webcache.googleusercontent.com/search?q=cache:"

// Options tunes the resolver. Browser may be nil, in which case the
// browser-driven strategies are skipped with a logged warning.
type Options struct {
	UserAgent       string
	StrategyTimeout time.Duration
	SpiderFallback  bool
	SpiderMaxPages  int
}

// Resolver produces the authoritative flat URL list for a job. It walks
// an ordered strategy chain; each strategy's failure is swallowed and
// logged, and only full exhaustion surfaces as ErrNoSitemap.
type Resolver struct {
	http    *httpx.Client
	browser browser.Automator
	stealth browser.Automator
	log     *logrus.Entry
	opts    Options
}

func NewResolver(httpClient *httpx.Client, plain, stealth browser.Automator, log *logrus.Entry, opts Options) *Resolver {
	if opts.StrategyTimeout == 0 {
		opts.StrategyTimeout = 30 * time.Second
	}
	return &Resolver{http: httpClient, browser: plain, stealth: stealth, log: log, opts: opts}
}

type strategy struct {
	name string
	run  func(ctx context.Context, sitemapURL string) ([]string, error)
}

// Resolve tries each strategy in order and returns the deduplicated,
// order-preserving record list from the first one that yields URLs.
func (r *Resolver) Resolve(ctx context.Context, sitemapURL string) ([]Record, error) {
	strategies := []strategy{
		{"direct", r.direct},
		{"browser", r.viaBrowser},
		{"stealth", r.viaStealth},
		{"robots", r.viaRobots},
		{"webcache", r.viaWebCache},
	}
	if r.opts.SpiderFallback {
		strategies = append(strategies, strategy{"spider", r.viaSpider})
	}

	for _, s := range strategies {
		sctx, cancel := context.WithTimeout(ctx, r.opts.StrategyTimeout)
		urls, err := s.run(sctx, sitemapURL)
		cancel()
		if err != nil {
			r.log.WithFields(logrus.Fields{"strategy": s.name, "url": sitemapURL}).
				Warnf("sitemap strategy failed: %v", err)
			continue
		}
		if len(urls) == 0 {
			r.log.WithField("strategy", s.name).Warn("sitemap strategy returned no URLs")
			continue
		}
		records := Records(urls)
		r.log.WithFields(logrus.Fields{"strategy": s.name, "urls": len(records)}).
			Info("sitemap resolved")
		return records, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoSitemap, sitemapURL)
}

// direct is strategy 1: plain GET and XML parse, following one level of
// sitemap index nesting.
func (r *Resolver) direct(ctx context.Context, sitemapURL string) ([]string, error) {
	_, body, err := r.http.Get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	return r.expandBody(ctx, body)
}

// expandBody parses a sitemap body, recursing into child sitemaps when
// the body is an index. A child that fails to fetch is skipped.
func (r *Resolver) expandBody(ctx context.Context, body []byte) ([]string, error) {
	if children := parseIndex(body); len(children) > 0 {
		var all []string
		for _, child := range children {
			_, childBody, err := r.http.Get(ctx, child)
			if err != nil {
				r.log.WithField("child", child).Warnf("child sitemap fetch failed: %v", err)
				continue
			}
			all = append(all, parseLocs(childBody)...)
		}
		return all, nil
	}
	return parseLocs(body), nil
}

// viaBrowser is strategy 2: some hosts serve sitemap XML only to
// browser-like clients. The rendered content passes through the
// tolerant loc scanner since Chromium wraps raw XML in a viewer DOM.
func (r *Resolver) viaBrowser(_ context.Context, sitemapURL string) ([]string, error) {
	return r.openAndScan(r.browser, sitemapURL)
}

// viaStealth is strategy 3: same navigation with randomized realistic
// headers and human-like pacing for hosts running bot filters.
func (r *Resolver) viaStealth(_ context.Context, sitemapURL string) ([]string, error) {
	return r.openAndScan(r.stealth, sitemapURL)
}

func (r *Resolver) openAndScan(auto browser.Automator, sitemapURL string) ([]string, error) {
	if auto == nil {
		return nil, errors.New("browser unavailable")
	}
	page, err := auto.Open(sitemapURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	content, err := page.Content()
	if err != nil {
		return nil, err
	}
	return parseLocs([]byte(content)), nil
}

// viaWebCache is strategy 5: last-resort fetch of a public cache mirror
// of the sitemap URL.
func (r *Resolver) viaWebCache(ctx context.Context, sitemapURL string) ([]string, error) {
	_, body, err := r.http.Get(ctx, webCachePrefix+sitemapURL)
	if err != nil {
		return nil, err
	}
	return parseLocs(body), nil
}

// viaSpider is the opt-in extra strategy: crawl the sitemap's host and
// use the visited page set as the worklist.
func (r *Resolver) viaSpider(ctx context.Context, sitemapURL string) ([]string, error) {
	base, err := originOf(sitemapURL)
	if err != nil {
		return nil, err
	}
	return Spider(ctx, SpiderOptions{
		BaseURL:   base,
		UserAgent: r.opts.UserAgent,
		MaxPages:  r.opts.SpiderMaxPages,
		Timeout:   r.opts.StrategyTimeout,
	})
}

func originOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid sitemap URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("sitemap URL has no host: %s", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
