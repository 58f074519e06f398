package fetcher_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsnap/internal/browser/browsertest"
	"docsnap/internal/config"
	"docsnap/internal/fetcher"
	"docsnap/internal/sitemap"
)

func testLog(t *testing.T) *logrus.Entry {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log.WithField("test", t.Name())
}

func docPage(title string) *browsertest.Page {
	return &browsertest.Page{
		PageTitle: title,
		HTML: fmt.Sprintf(`<html><body><main><h1>%s</h1><p>Content of %s.</p></main></body></html>`,
			title, title),
	}
}

func scriptedSite(n int) (*browsertest.Automator, []sitemap.Record) {
	auto := &browsertest.Automator{Pages: map[string]*browsertest.Page{}}
	urls := make([]string, 0, n)
	for i := 0; i < n; i++ {
		u := fmt.Sprintf("https://d.example.com/page-%d", i)
		auto.Pages[u] = docPage(fmt.Sprintf("Page %d", i))
		urls = append(urls, u)
	}
	return auto, sitemap.Records(urls)
}

func TestFetchAll_AllSucceed(t *testing.T) {
	auto, records := scriptedSite(4)
	f := fetcher.New(auto, testLog(t), fetcher.Options{Concurrency: 2, Retries: 0})

	pages := f.FetchAll(context.Background(), records)
	require.Len(t, pages, 4)
	for _, rec := range records {
		page := pages[rec.URL]
		require.NotNil(t, page)
		assert.Equal(t, fetcher.StatusSuccess, page.Status)
		assert.Contains(t, page.Markdown, "# Page ")
		assert.NotEmpty(t, page.ContentHTML)
	}
}

// One unreachable page must not abort the batch.
func TestFetchAll_PartialFailure(t *testing.T) {
	auto, records := scriptedSite(4)
	records = append(records, sitemap.Record{URL: "https://d.example.com/broken", Slug: "broken"})
	f := fetcher.New(auto, testLog(t), fetcher.Options{Concurrency: 3, Retries: 0})

	pages := f.FetchAll(context.Background(), records)
	require.Len(t, pages, 5)

	ok, failed := 0, 0
	for _, page := range pages {
		switch page.Status {
		case fetcher.StatusSuccess:
			ok++
		case fetcher.StatusFailed:
			failed++
		}
	}
	assert.Equal(t, 4, ok)
	assert.Equal(t, 1, failed)
	assert.NotEmpty(t, pages["https://d.example.com/broken"].Error)
}

func TestFetchAll_RetriesThenFails(t *testing.T) {
	auto := &browsertest.Automator{Pages: map[string]*browsertest.Page{}}
	rec := sitemap.Record{URL: "https://d.example.com/gone", Slug: "gone"}
	f := fetcher.New(auto, testLog(t), fetcher.Options{Concurrency: 1, Retries: 1})

	pages := f.FetchAll(context.Background(), []sitemap.Record{rec})
	page := pages[rec.URL]
	require.NotNil(t, page)
	assert.Equal(t, fetcher.StatusFailed, page.Status)
	assert.Equal(t, 2, page.Attempts)
	// One initial attempt plus one retry.
	assert.Len(t, auto.Opened, 2)
}

func TestFetchAll_TestModeCap(t *testing.T) {
	auto, records := scriptedSite(config.TestModeLimit + 3)
	f := fetcher.New(auto, testLog(t), fetcher.Options{Concurrency: 2, TestMode: true})

	pages := f.FetchAll(context.Background(), records)
	require.Len(t, pages, len(records))

	ok, skipped := 0, 0
	for _, page := range pages {
		switch page.Status {
		case fetcher.StatusSuccess:
			ok++
		case fetcher.StatusSkipped:
			skipped++
		}
	}
	assert.Equal(t, config.TestModeLimit, ok)
	assert.Equal(t, 3, skipped)
}

func TestFetchAll_CancelledContext(t *testing.T) {
	auto, records := scriptedSite(3)
	f := fetcher.New(auto, testLog(t), fetcher.Options{Concurrency: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pages := f.FetchAll(ctx, records)
	// Every record still gets an entry so the checkpoint is complete.
	require.Len(t, pages, 3)
	for _, page := range pages {
		assert.NotEmpty(t, page.Status)
	}
}

func TestFetchAll_CacheReuse(t *testing.T) {
	cacheDir := t.TempDir()
	auto, records := scriptedSite(2)
	opts := fetcher.Options{Concurrency: 1, CacheDir: cacheDir}

	first := fetcher.New(auto, testLog(t), opts).FetchAll(context.Background(), records)
	require.Equal(t, fetcher.StatusSuccess, first[records[0].URL].Status)

	// Second run has no scripted pages at all: every hit must come from
	// the cache.
	empty := &browsertest.Automator{}
	second := fetcher.New(empty, testLog(t), opts).FetchAll(context.Background(), records)
	for _, rec := range records {
		page := second[rec.URL]
		require.NotNil(t, page)
		assert.Equal(t, fetcher.StatusSuccess, page.Status)
	}
	assert.Empty(t, empty.Opened)
}
