package fetcher

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Default selector ladders for locating the page title and the main
// content region. Site-specific layouts can override both via Options.
var (
	DefaultTitleSelectors = []string{
		"main h1",
		"article h1",
		"h1",
	}
	DefaultContentSelectors = []string{
		"main",
		"article",
		"[role='main']",
		".markdown-body",
		".content",
		"#content",
		"body",
	}
)

// boilerplate is stripped from the extracted region before conversion.
var boilerplate = []string{
	"script", "style", "noscript", "iframe",
	"nav", "header", "footer", "aside",
	"[role='navigation']", ".sidebar", ".breadcrumb", ".edit-page",
}

type extracted struct {
	Title       string
	ContentHTML string
}

// extractContent reduces a rendered page to its title and main content
// region. pageTitle is the browser tab title, used when no heading
// matches.
func extractContent(pageHTML, pageTitle string, titleSels, contentSels []string) (extracted, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return extracted{}, err
	}

	title := ""
	for _, sel := range titleSels {
		if h := doc.Find(sel).First(); h.Length() > 0 {
			title = strings.Join(strings.Fields(h.Text()), " ")
			break
		}
	}
	if title == "" {
		title = strings.TrimSpace(pageTitle)
	}

	region := doc.Selection
	for _, sel := range contentSels {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			region = found
			break
		}
	}
	for _, sel := range boilerplate {
		region.Find(sel).Remove()
	}

	html, err := goquery.OuterHtml(region)
	if err != nil {
		return extracted{}, err
	}
	return extracted{Title: title, ContentHTML: html}, nil
}
