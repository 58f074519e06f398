package sitemap

import (
	"context"
	"fmt"

	"github.com/temoto/robotstxt"
)

// viaRobots is strategy 4: read the site's robots.txt, collect declared
// Sitemap directives, and re-run the earlier strategies on each until
// one yields URLs.
func (r *Resolver) viaRobots(ctx context.Context, sitemapURL string) ([]string, error) {
	base, err := originOf(sitemapURL)
	if err != nil {
		return nil, err
	}

	_, body, err := r.http.Get(ctx, base+"/robots.txt")
	if err != nil {
		return nil, err
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	if len(data.Sitemaps) == 0 {
		return nil, fmt.Errorf("robots.txt declares no sitemap")
	}

	for _, declared := range data.Sitemaps {
		if declared == sitemapURL {
			// Already failed through the direct strategies.
			continue
		}
		r.log.WithField("declared", declared).Debug("trying sitemap from robots.txt")
		for _, attempt := range []func(context.Context, string) ([]string, error){
			r.direct, r.viaBrowser, r.viaStealth,
		} {
			urls, err := attempt(ctx, declared)
			if err != nil || len(urls) == 0 {
				continue
			}
			return urls, nil
		}
	}
	return nil, fmt.Errorf("no declared sitemap resolved")
}
