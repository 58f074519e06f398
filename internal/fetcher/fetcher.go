package fetcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"docsnap/internal/browser"
	"docsnap/internal/config"
	"docsnap/internal/markdown"
	"docsnap/internal/sitemap"
)

// Page status values as persisted in the fetch checkpoint.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// PageContent is the capture of one documentation page.
type PageContent struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	ContentHTML string    `json:"contentHtml,omitempty"`
	Markdown    string    `json:"markdown,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Attempts    int       `json:"attempts,omitempty"`
	FetchedAt   time.Time `json:"fetchedAt,omitempty"`
}

// Options tunes the fetch phase.
type Options struct {
	Concurrency      int
	Retries          int
	RatePerSecond    float64
	TestMode         bool
	TitleSelectors   []string
	ContentSelectors []string
	CacheDir         string
}

// Fetcher downloads a worklist of pages through a shared browser,
// bounded in flight and rate, retrying each page independently. One
// page failing never aborts the batch.
type Fetcher struct {
	auto  browser.Automator
	conv  *markdown.Converter
	log   *logrus.Entry
	opts  Options
	cache *cache
}

func New(auto browser.Automator, log *logrus.Entry, opts Options) *Fetcher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = config.DefaultConcurrency
	}
	if len(opts.TitleSelectors) == 0 {
		opts.TitleSelectors = DefaultTitleSelectors
	}
	if len(opts.ContentSelectors) == 0 {
		opts.ContentSelectors = DefaultContentSelectors
	}
	return &Fetcher{
		auto:  auto,
		conv:  markdown.NewConverter(),
		log:   log,
		opts:  opts,
		cache: newCache(opts.CacheDir),
	}
}

// FetchAll captures every record and returns the results keyed by URL.
// Cancellation stops dispatching new pages but the map still holds
// everything captured so far; pages never attempted are marked skipped.
func (f *Fetcher) FetchAll(ctx context.Context, records []sitemap.Record) map[string]*PageContent {
	worklist := records
	if f.opts.TestMode && len(worklist) > config.TestModeLimit {
		f.log.Warnf("test mode: fetching first %d of %d pages", config.TestModeLimit, len(worklist))
		worklist = worklist[:config.TestModeLimit]
	}

	var limiter *rate.Limiter
	if f.opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(f.opts.RatePerSecond), 1)
	}

	var (
		sem     = semaphore.NewWeighted(int64(f.opts.Concurrency))
		mu      sync.Mutex
		results = make(map[string]*PageContent, len(worklist))
		wg      sync.WaitGroup
	)
	record := func(page *PageContent) {
		mu.Lock()
		results[page.URL] = page
		mu.Unlock()
	}

	for _, rec := range worklist {
		if cached, ok := f.cache.get(rec.URL); ok {
			f.log.WithField("url", rec.URL).Debug("cache hit")
			record(cached)
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			record(&PageContent{URL: rec.URL, Status: StatusSkipped, Error: err.Error()})
			continue
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				sem.Release(1)
				record(&PageContent{URL: rec.URL, Status: StatusSkipped, Error: err.Error()})
				continue
			}
		}

		wg.Add(1)
		go func(rec sitemap.Record) {
			defer wg.Done()
			defer sem.Release(1)
			page := f.fetchWithRetry(ctx, rec)
			f.cache.put(page)
			record(page)
		}(rec)
	}
	wg.Wait()

	for _, rec := range records {
		if _, ok := results[rec.URL]; !ok {
			results[rec.URL] = &PageContent{URL: rec.URL, Status: StatusSkipped}
		}
	}
	return results
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, rec sitemap.Record) *PageContent {
	attempts := 0
	page, err := newRetryExecutor(f.opts.Retries).WithContext(ctx).Get(func() (*PageContent, error) {
		attempts++
		return f.fetchOne(rec)
	})
	if err != nil {
		f.log.WithFields(logrus.Fields{"url": rec.URL, "attempts": attempts}).
			Warnf("page failed: %v", err)
		return &PageContent{
			URL:       rec.URL,
			Status:    StatusFailed,
			Error:     err.Error(),
			Attempts:  attempts,
			FetchedAt: time.Now().UTC(),
		}
	}
	page.Attempts = attempts
	f.log.WithFields(logrus.Fields{"url": rec.URL, "title": page.Title}).Debug("page captured")
	return page
}

func (f *Fetcher) fetchOne(rec sitemap.Record) (*PageContent, error) {
	p, err := f.auto.Open(rec.URL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", rec.URL, err)
	}
	defer p.Close()

	browser.DismissOverlays(p)

	html, err := p.Content()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rec.URL, err)
	}
	tabTitle, _ := p.Title()

	ex, err := extractContent(html, tabTitle, f.opts.TitleSelectors, f.opts.ContentSelectors)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", rec.URL, err)
	}
	if ex.Title == "" {
		ex.Title = rec.Slug
	}

	md, err := f.conv.Page(ex.Title, ex.ContentHTML)
	if err != nil {
		return nil, fmt.Errorf("markdown %s: %w", rec.URL, err)
	}

	return &PageContent{
		URL:         rec.URL,
		Title:       ex.Title,
		ContentHTML: ex.ContentHTML,
		Markdown:    md,
		Status:      StatusSuccess,
		FetchedAt:   time.Now().UTC(),
	}, nil
}
