package sitemap

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Record pairs a canonical page URL with a stable filesystem-safe slug.
// Identity is the URL string; slugs are unique within a job.
type Record struct {
	URL  string `json:"url"`
	Slug string `json:"slug"`
}

// Records deduplicates urls preserving first occurrence and assigns
// slugs. Collisions get a numeric suffix in first-seen order; the
// suffixed candidate is re-checked against every slug handed out so
// far, since a URL's natural slug can itself look like an earlier
// suffix. The result is identical across re-runs of the same input.
func Records(urls []string) []Record {
	seen := map[string]struct{}{}
	taken := map[string]struct{}{}
	records := make([]Record, 0, len(urls))
	for _, raw := range urls {
		u := strings.TrimSpace(raw)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}

		base := Slugify(u)
		slug := base
		for n := 2; ; n++ {
			if _, ok := taken[slug]; !ok {
				break
			}
			slug = fmt.Sprintf("%s-%d", base, n)
		}
		taken[slug] = struct{}{}
		records = append(records, Record{URL: u, Slug: slug})
	}
	return records
}

var slugCleanRe = regexp.MustCompile(`[^a-z0-9\-]+`)
var slugDashRe = regexp.MustCompile(`-{2,}`)

// Slugify derives an identifier from the URL path: lowercased, path
// separators collapsed to dashes, everything else stripped. An empty
// path becomes "index".
func Slugify(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	path = strings.ToLower(strings.Trim(path, "/"))
	path = strings.NewReplacer("/", "-", "_", "-", ".", "-", " ", "-").Replace(path)
	path = slugCleanRe.ReplaceAllString(path, "")
	path = slugDashRe.ReplaceAllString(path, "-")
	path = strings.Trim(path, "-")
	if path == "" {
		return "index"
	}
	return path
}

// URLs returns just the URL strings, in record order.
func URLs(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.URL
	}
	return out
}
