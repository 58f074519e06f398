// Package pipeline runs the three snapshot phases. Each phase reads the
// previous phase's checkpoint and writes its own, so any phase can be
// re-run in isolation.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"docsnap/internal/assemble"
	"docsnap/internal/browser"
	"docsnap/internal/config"
	"docsnap/internal/fetcher"
	"docsnap/internal/httpx"
	"docsnap/internal/logging"
	"docsnap/internal/navtree"
	"docsnap/internal/sitemap"
	"docsnap/internal/state"
)

type Pipeline struct {
	log *logrus.Logger
	// launch is swappable so phases can run against a fake browser.
	launch func(browser.Options) (browser.Automator, error)
}

func New(log *logrus.Logger) *Pipeline {
	return &Pipeline{log: log, launch: browser.Launch}
}

// NewWithLauncher builds a pipeline with a custom browser launcher.
func NewWithLauncher(log *logrus.Logger, launch func(browser.Options) (browser.Automator, error)) *Pipeline {
	return &Pipeline{log: log, launch: launch}
}

// Discover resolves the sitemap, extracts the navigation tree, and
// writes the discovery checkpoint.
func (p *Pipeline) Discover(ctx context.Context, job config.Job) (*state.Discover, error) {
	job = job.Normalized()
	if err := job.Validate(); err != nil {
		return nil, err
	}
	log := logging.Component(p.log, "discover")

	plain, stealth := p.launchPair(job, log)
	defer closeAutomator(plain)
	defer closeAutomator(stealth)

	resolver := sitemap.NewResolver(
		httpx.New(job.UserAgent, job.FetchTimeout()),
		plain, stealth, log,
		sitemap.Options{
			UserAgent:      job.UserAgent,
			SpiderFallback: job.SpiderFallback,
			SpiderMaxPages: job.SpiderMaxPages,
		},
	)
	records, err := resolver.Resolve(ctx, job.SitemapURL)
	if err != nil {
		return nil, err
	}

	nav := p.extractNavigation(ctx, job, records, plain, log)

	ds := state.NewDiscover(job, records, nav)
	if err := ds.Save(job.OutputDir); err != nil {
		return nil, fmt.Errorf("save discovery checkpoint: %w", err)
	}
	log.WithFields(logrus.Fields{"urls": len(records), "navNodes": nav.Count()}).
		Info("discovery complete")
	return ds, nil
}

// extractNavigation builds the tree from the navigation page, degrading
// to flat sitemap order whenever the page cannot be driven at all.
func (p *Pipeline) extractNavigation(ctx context.Context, job config.Job, records []sitemap.Record, auto browser.Automator, log *logrus.Entry) *navtree.Node {
	navURL := job.NavURL
	if navURL == "" && len(records) > 0 {
		navURL = records[0].URL
	}
	if auto == nil || navURL == "" {
		return navtree.Flat(records)
	}

	page, err := auto.Open(navURL)
	if err != nil {
		log.Warnf("navigation page unreachable, using flat sitemap order: %v", err)
		return navtree.Flat(records)
	}
	defer page.Close()

	ext := navtree.NewExtractor(log, navtree.DefaultSelectors())
	nav, err := ext.Extract(ctx, page, navURL, records, job.AggressiveMatch)
	if err != nil && nav == nil {
		log.Warnf("navigation extraction failed, using flat sitemap order: %v", err)
		return navtree.Flat(records)
	}
	return nav
}

// Fetch captures every discovered page and writes the fetch checkpoint.
// The checkpoint is written even when the run was cancelled partway, so
// Build can assemble whatever was captured.
func (p *Pipeline) Fetch(ctx context.Context, ds *state.Discover) (*state.Fetch, error) {
	log := logging.Component(p.log, "fetch")
	job := ds.Config

	auto, err := p.launch(browser.Options{
		Headless:  job.IsHeadless(),
		UserAgent: job.UserAgent,
		Timeout:   job.FetchTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer closeAutomator(auto)

	cacheDir := ""
	if job.UseCache {
		cacheDir = config.CachePath(job.OutputDir)
	}
	f := fetcher.New(auto, log, fetcher.Options{
		Concurrency:   job.Concurrency,
		Retries:       job.Retries,
		RatePerSecond: job.RateLimitPerSecond,
		TestMode:      job.TestMode,
		CacheDir:      cacheDir,
	})

	pages := f.FetchAll(ctx, ds.Records)
	fs := &state.Fetch{Discover: *ds, FetchedAt: time.Now().UTC(), Pages: pages}
	if err := fs.Save(job.OutputDir); err != nil {
		return nil, fmt.Errorf("save fetch checkpoint: %w", err)
	}

	ok, failed := 0, 0
	for _, page := range pages {
		switch page.Status {
		case fetcher.StatusSuccess:
			ok++
		case fetcher.StatusFailed:
			failed++
		}
	}
	log.WithFields(logrus.Fields{"succeeded": ok, "failed": failed, "total": len(pages)}).
		Info("fetch complete")

	if err := ctx.Err(); err != nil {
		return fs, err
	}
	return fs, nil
}

// Build assembles the final artifacts from a fetch checkpoint. It never
// touches the network.
func (p *Pipeline) Build(fs *state.Fetch) (*assemble.Summary, error) {
	log := logging.Component(p.log, "build")
	sum, err := assemble.NewBuilder(log).Build(fs.Config.OutputDir, fs)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"pages": sum.Succeeded, "unlisted": sum.Unlisted}).
		Info("build complete")
	return sum, nil
}

// RunAll chains the three phases for a fresh job.
func (p *Pipeline) RunAll(ctx context.Context, job config.Job) (*assemble.Summary, error) {
	ds, err := p.Discover(ctx, job)
	if err != nil {
		return nil, err
	}
	fs, err := p.Fetch(ctx, ds)
	if err != nil && fs == nil {
		return nil, err
	}
	return p.Build(fs)
}

// launchPair starts the plain and stealth browser sessions used by
// discovery. Launch failure is not fatal there: the HTTP strategies
// still run, the browser ones report unavailable.
func (p *Pipeline) launchPair(job config.Job, log *logrus.Entry) (plain, stealth browser.Automator) {
	var err error
	plain, err = p.launch(browser.Options{
		Headless:  job.IsHeadless(),
		UserAgent: job.UserAgent,
		Timeout:   job.FetchTimeout(),
	})
	if err != nil {
		log.Warnf("browser unavailable, HTTP strategies only: %v", err)
		return nil, nil
	}
	stealth, err = p.launch(browser.Options{
		Headless: job.IsHeadless(),
		Timeout:  job.FetchTimeout(),
		Stealth:  true,
	})
	if err != nil {
		log.Warnf("stealth browser unavailable: %v", err)
	}
	return plain, stealth
}

func closeAutomator(a browser.Automator) {
	if a != nil {
		_ = a.Close()
	}
}
