package navtree

import (
	"net/url"
	"strings"
)

// matcher correlates navigation link targets with the sitemap's
// canonical URLs. Exact match always wins; aggressive mode additionally
// tolerates scheme, case, and trailing-slash differences and falls back
// to path-suffix matching.
type matcher struct {
	exact      map[string]string
	normalized map[string]string
	byPath     map[string]string
	aggressive bool
}

func newMatcher(sitemapURLs []string, aggressive bool) *matcher {
	m := &matcher{
		exact:      make(map[string]string, len(sitemapURLs)),
		normalized: make(map[string]string, len(sitemapURLs)),
		byPath:     make(map[string]string, len(sitemapURLs)),
		aggressive: aggressive,
	}
	for _, u := range sitemapURLs {
		m.exact[u] = u
		norm := normalizeURL(u)
		if _, ok := m.normalized[norm]; !ok {
			m.normalized[norm] = u
		}
		path := pathOf(u)
		if path != "" {
			if _, ok := m.byPath[path]; !ok {
				m.byPath[path] = u
			}
		}
	}
	return m
}

// Canonical maps a navigation link to its sitemap URL. The second
// return reports whether a match was found; on false the link is kept
// as given.
func (m *matcher) Canonical(link string) (string, bool) {
	if canon, ok := m.exact[link]; ok {
		return canon, true
	}
	if !m.aggressive {
		return link, false
	}
	if canon, ok := m.normalized[normalizeURL(link)]; ok {
		return canon, true
	}
	if path := pathOf(link); path != "" {
		if canon, ok := m.byPath[path]; ok {
			return canon, true
		}
	}
	return link, false
}

func normalizeURL(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	raw = strings.TrimPrefix(raw, "http://")
	raw = strings.TrimPrefix(raw, "https://")
	return strings.TrimSuffix(raw, "/")
}

func pathOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(u.Path, "/"))
}
