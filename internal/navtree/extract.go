package navtree

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"docsnap/internal/browser"
	"docsnap/internal/sitemap"
)

// ErrExtractionIncomplete marks a tree that hit the pass cap before the
// DOM stabilized. The partial tree is still returned and usable.
var ErrExtractionIncomplete = errors.New("navigation extraction incomplete")

// Selectors are the ordered candidates for locating the tree widget.
// They are site-specific heuristics, so they stay configurable rather
// than buried in the loop.
type Selectors struct {
	Container []string
	Row       string
	Collapsed string
}

func DefaultSelectors() Selectors {
	return Selectors{
		Container: []string{
			"nav[role='navigation']",
			"[role='tree']",
			"aside nav",
			".sidebar nav",
			"nav",
		},
		Row:       "li, [role='treeitem']",
		Collapsed: "[aria-expanded='false']",
	}
}

const defaultMaxPasses = 50

// Extractor turns a virtually-rendered, collapsed navigation widget
// into a Node tree. It is strictly sequential: one page, one tree.
type Extractor struct {
	log       *logrus.Entry
	sel       Selectors
	maxPasses int
}

func NewExtractor(log *logrus.Entry, sel Selectors) *Extractor {
	if len(sel.Container) == 0 {
		sel = DefaultSelectors()
	}
	return &Extractor{log: log, sel: sel, maxPasses: defaultMaxPasses}
}

// Extract expands the navigation widget on page to a fixed point, then
// walks the settled DOM once to build the tree, correlating link
// targets against the sitemap records. When the container cannot be
// located at all it degrades to the flat sitemap-order tree; the job
// never hard-fails here. Cancelling ctx stops the expansion loop and
// returns the tree built from whatever is mounted so far.
func (e *Extractor) Extract(ctx context.Context, page browser.Page, navURL string, records []sitemap.Record, aggressive bool) (*Node, error) {
	browser.DismissOverlays(page)

	_, containerSel, err := browser.FindFirst(page, e.sel.Container)
	if err != nil {
		e.log.WithField("url", navURL).Warn("navigation container not found, using flat sitemap order")
		return Flat(records), nil
	}

	stable := e.expandAll(ctx, page, containerSel)

	container, err := page.Find(containerSel)
	if err != nil {
		return Flat(records), nil
	}
	html, err := container.InnerHTML()
	if err != nil {
		return nil, err
	}

	root, err := e.buildTree(html, navURL, records, aggressive)
	if err != nil {
		return nil, err
	}
	if !stable {
		if err := ctx.Err(); err != nil {
			e.log.Warn("navigation expansion cancelled, tree may be partial")
			return root, err
		}
		e.log.WithField("passes", e.maxPasses).Warn("navigation DOM never stabilized, tree may be partial")
		return root, ErrExtractionIncomplete
	}
	return root, nil
}

// expandAll drives the scroll/expand/re-scan loop until one full pass
// mounts no new rows and clicks nothing, or the pass cap is hit. The
// cap keeps a pathological widget from hanging the job; cancellation
// is checked between passes so a dead job stops driving the page.
func (e *Extractor) expandAll(ctx context.Context, page browser.Page, containerSel string) bool {
	prevRows := -1
	for pass := 0; pass < e.maxPasses; pass++ {
		if ctx.Err() != nil {
			return false
		}
		if err := page.ScrollToBottom(containerSel); err != nil {
			e.log.Debugf("scroll failed on pass %d: %v", pass, err)
		}

		clicked := 0
		expanders, err := page.FindAll(containerSel + " " + e.sel.Collapsed)
		if err != nil {
			e.log.Debugf("expander scan failed on pass %d: %v", pass, err)
		}
		for _, el := range expanders {
			if el.Click() == nil {
				clicked++
			}
		}

		rows, _ := page.FindAll(containerSel + " " + e.sel.Row)
		if clicked == 0 && len(rows) == prevRows {
			e.log.WithFields(logrus.Fields{"rows": len(rows), "passes": pass + 1}).
				Debug("navigation DOM stable")
			return true
		}
		prevRows = len(rows)
	}
	return false
}

// buildTree parses the settled container HTML. Nested lists are the
// primary shape; ARIA tree rows with aria-level are the fallback for
// widgets that render a flat row window; bare anchors are last resort.
func (e *Extractor) buildTree(html, navURL string, records []sitemap.Record, aggressive bool) (*Node, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(navURL)
	m := newMatcher(sitemap.URLs(records), aggressive)
	root := NewRoot()

	if list := doc.Find("ul, ol").First(); list.Length() > 0 {
		e.appendListItems(root, list, base, m)
		return root, nil
	}
	if rows := doc.Find("[role='treeitem']"); rows.Length() > 0 {
		e.appendAriaRows(root, rows, base, m)
		return root, nil
	}
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		if node := e.nodeFromAnchor(a, base, m); node != nil {
			root.Append(node)
		}
	})
	return root, nil
}

func (e *Extractor) appendListItems(parent *Node, list *goquery.Selection, base *url.URL, m *matcher) {
	list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		node := e.nodeFromItem(li, base, m)
		if node.Title == "" && node.URL == "" && len(node.Children) == 0 {
			return
		}
		parent.Append(node)
	})
}

func (e *Extractor) nodeFromItem(li *goquery.Selection, base *url.URL, m *matcher) *Node {
	node := &Node{}

	link := li.ChildrenFiltered("a").First()
	if link.Length() == 0 {
		link = li.Children().Not("ul, ol").Find("a").First()
	}
	if link.Length() > 0 {
		node.Title = collapseSpace(link.Text())
		if href, ok := link.Attr("href"); ok {
			node.URL = e.resolveTarget(href, base, m)
		}
	} else {
		own := li.Clone()
		own.Find("ul, ol").Remove()
		node.Title = collapseSpace(own.Text())
	}

	if childList := li.ChildrenFiltered("ul, ol").First(); childList.Length() > 0 {
		e.appendListItems(node, childList, base, m)
	} else if nested := li.Find("ul, ol").First(); nested.Length() > 0 {
		e.appendListItems(node, nested, base, m)
	}
	return node
}

// appendAriaRows rebuilds hierarchy from a flat row sequence using
// aria-level, the shape virtualized tree widgets typically render.
func (e *Extractor) appendAriaRows(root *Node, rows *goquery.Selection, base *url.URL, m *matcher) {
	stack := []*Node{root}
	levels := []int{0}
	rows.Each(func(_ int, row *goquery.Selection) {
		level := ariaLevel(row)
		node := &Node{}
		if a := row.Find("a").First(); a.Length() > 0 {
			node.Title = collapseSpace(a.Text())
			if href, ok := a.Attr("href"); ok {
				node.URL = e.resolveTarget(href, base, m)
			}
		} else {
			node.Title = collapseSpace(row.Text())
		}
		if node.Title == "" && node.URL == "" {
			return
		}

		for len(levels) > 1 && levels[len(levels)-1] >= level {
			stack = stack[:len(stack)-1]
			levels = levels[:len(levels)-1]
		}
		stack[len(stack)-1].Append(node)
		stack = append(stack, node)
		levels = append(levels, level)
	})
}

func (e *Extractor) nodeFromAnchor(a *goquery.Selection, base *url.URL, m *matcher) *Node {
	title := collapseSpace(a.Text())
	href, _ := a.Attr("href")
	if title == "" && href == "" {
		return nil
	}
	return &Node{Title: title, URL: e.resolveTarget(href, base, m)}
}

// resolveTarget absolutizes href against the nav page and maps it to
// its canonical sitemap URL when one matches. Unmatched links keep
// their resolved form; fragment-only links carry no page.
func (e *Extractor) resolveTarget(href string, base *url.URL, m *matcher) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	abs := href
	if base != nil {
		if resolved, err := base.Parse(href); err == nil {
			resolved.Fragment = ""
			abs = resolved.String()
		}
	}
	canon, _ := m.Canonical(abs)
	return canon
}

func ariaLevel(row *goquery.Selection) int {
	raw := row.AttrOr("aria-level", "1")
	level := 0
	for _, ch := range raw {
		if ch < '0' || ch > '9' {
			return 1
		}
		level = level*10 + int(ch-'0')
	}
	if level < 1 {
		return 1
	}
	return level
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
