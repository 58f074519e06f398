// Package assemble turns a completed fetch checkpoint into the final
// snapshot artifacts. It is pure file assembly: no network, no browser,
// and no timestamps, so rebuilding from the same checkpoint is
// byte-identical.
package assemble

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"docsnap/internal/config"
	"docsnap/internal/fetcher"
	"docsnap/internal/sitemap"
	"docsnap/internal/state"
)

// Summary is the build report written alongside the artifacts.
type Summary struct {
	JobID     string   `json:"jobId"`
	Source    string   `json:"source"`
	Pages     int      `json:"pages"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Unlisted  int      `json:"unlisted"`
	Artifacts []string `json:"artifacts"`
}

type Builder struct {
	log *logrus.Entry
}

func NewBuilder(log *logrus.Entry) *Builder {
	return &Builder{log: log}
}

// Build writes every artifact under dir. Page order is the navigation
// tree's depth-first order; sitemap pages the tree never mentions form
// a trailing unlisted section in sitemap order.
func (b *Builder) Build(dir string, fs *state.Fetch) (*Summary, error) {
	if err := os.MkdirAll(filepath.Join(dir, config.PagesDir), 0o755); err != nil {
		return nil, err
	}

	ordered, unlisted := b.pageOrder(fs)
	sum := &Summary{
		JobID:    fs.JobID,
		Source:   fs.Config.SitemapURL,
		Pages:    len(fs.Records),
		Unlisted: len(unlisted),
	}

	var mdParts, htmlParts []string
	needDivider := false
	emit := func(urls []string) {
		for _, u := range urls {
			page, ok := fs.Pages[u]
			if !ok || page.Status == fetcher.StatusSkipped {
				sum.Skipped++
				b.log.WithField("url", u).Debug("no content captured, omitting")
				continue
			}
			if page.Status == fetcher.StatusFailed {
				sum.Failed++
				b.log.WithField("url", u).Warnf("omitting failed page: %s", page.Error)
				continue
			}
			if needDivider {
				mdParts = append(mdParts, "---\n\n# Unlisted Pages")
				htmlParts = append(htmlParts, "<hr>\n<h1>Unlisted Pages</h1>")
				needDivider = false
			}
			sum.Succeeded++
			mdParts = append(mdParts, strings.TrimRight(page.Markdown, "\n"))
			htmlParts = append(htmlParts, pageSection(page))
			b.writePage(dir, u, fs, page)
		}
	}

	emit(ordered)
	// The divider lands only in front of the first unlisted page that
	// actually produced content.
	needDivider = len(unlisted) > 0
	emit(unlisted)

	files := map[string][]byte{
		config.CombinedMarkdownFile: []byte(strings.Join(mdParts, "\n\n") + "\n"),
		config.CombinedHTMLFile:     combinedHTML(fs, htmlParts),
	}
	for name, data := range navArtifacts(fs) {
		files[name] = data
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		sum.Artifacts = append(sum.Artifacts, name)
	}
	sort.Strings(sum.Artifacts)

	if err := b.writeSummary(dir, sum); err != nil {
		return nil, err
	}
	return sum, nil
}

// pageOrder splits the worklist into navigation order and the
// sitemap-ordered remainder.
func (b *Builder) pageOrder(fs *state.Fetch) (ordered, unlisted []string) {
	inNav := map[string]struct{}{}
	if fs.Navigation != nil {
		ordered = fs.Navigation.URLs()
		for _, u := range ordered {
			inNav[u] = struct{}{}
		}
	}
	for _, rec := range fs.Records {
		if _, ok := inNav[rec.URL]; !ok {
			unlisted = append(unlisted, rec.URL)
		}
	}
	if fs.Navigation == nil {
		return unlisted, nil
	}
	return ordered, unlisted
}

func (b *Builder) writePage(dir, u string, fs *state.Fetch, page *fetcher.PageContent) {
	slug := slugFor(u, fs.Records)
	mdPath := filepath.Join(dir, config.PagesDir, slug+".md")
	htmlPath := filepath.Join(dir, config.PagesDir, slug+".html")
	if err := os.WriteFile(mdPath, []byte(page.Markdown), 0o644); err != nil {
		b.log.Warnf("write %s: %v", mdPath, err)
	}
	if err := os.WriteFile(htmlPath, []byte(pageDocument(page)), 0o644); err != nil {
		b.log.Warnf("write %s: %v", htmlPath, err)
	}
}

func (b *Builder) writeSummary(dir string, sum *Summary) error {
	raw, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, config.SummaryFile), append(raw, '\n'), 0o644)
}

func slugFor(u string, records []sitemap.Record) string {
	for _, rec := range records {
		if rec.URL == u {
			return rec.Slug
		}
	}
	return sitemap.Slugify(u)
}

func pageSection(page *fetcher.PageContent) string {
	return fmt.Sprintf("<section data-source=%q>\n<h1>%s</h1>\n%s\n</section>",
		page.URL, html.EscapeString(page.Title), page.ContentHTML)
}

func pageDocument(page *fetcher.PageContent) string {
	return fmt.Sprintf("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s\n</body>\n</html>\n",
		html.EscapeString(page.Title), pageSection(page))
}

func combinedHTML(fs *state.Fetch, sections []string) []byte {
	title := html.EscapeString(fs.Config.SitemapURL)
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + title + "</title>\n</head>\n<body>\n")
	b.WriteString(strings.Join(sections, "\n"))
	b.WriteString("\n</body>\n</html>\n")
	return []byte(b.String())
}
