package sitemap

import (
	"encoding/xml"
	"regexp"
	"strings"
)

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Entries []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc string `xml:"loc"`
}

type indexSet struct {
	XMLName xml.Name     `xml:"sitemapindex"`
	Entries []indexEntry `xml:"sitemap"`
}

type indexEntry struct {
	Loc string `xml:"loc"`
}

var locRe = regexp.MustCompile(`(?s)<loc[^>]*>\s*(.*?)\s*</loc>`)

// parseLocs extracts page URLs from a sitemap body. Strict XML parsing
// is tried first; bodies mangled by a browser's XML viewer or truncated
// by a cache mirror fall back to a tolerant <loc> scan.
func parseLocs(body []byte) []string {
	var set urlSet
	if err := xml.Unmarshal(body, &set); err == nil && len(set.Entries) > 0 {
		urls := make([]string, 0, len(set.Entries))
		for _, e := range set.Entries {
			if loc := strings.TrimSpace(e.Loc); loc != "" {
				urls = append(urls, loc)
			}
		}
		return urls
	}

	matches := locRe.FindAllSubmatch(body, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		loc := strings.TrimSpace(unescapeEntities(string(m[1])))
		if strings.HasPrefix(loc, "http") {
			urls = append(urls, loc)
		}
	}
	return urls
}

// parseIndex extracts child sitemap URLs from a sitemapindex body, or
// nil when the body is not an index.
func parseIndex(body []byte) []string {
	var idx indexSet
	if err := xml.Unmarshal(body, &idx); err != nil || len(idx.Entries) == 0 {
		return nil
	}
	urls := make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		if loc := strings.TrimSpace(e.Loc); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls
}

func unescapeEntities(s string) string {
	return strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	).Replace(s)
}
