// Package browsertest provides in-memory fakes for the browser
// interfaces so component tests run without a real driver.
package browsertest

import (
	"errors"
	"sync"
	"time"

	"docsnap/internal/browser"
)

// Automator serves scripted pages by URL.
type Automator struct {
	mu      sync.Mutex
	Pages   map[string]*Page
	OpenErr error
	Opened  []string
	Closed  bool
}

// Page is a scripted browser page. Elements are keyed by selector;
// FindAll consults Lists first, then falls back to a single Elements
// entry.
type Page struct {
	mu sync.Mutex

	HTML      string
	PageTitle string
	Elements  map[string]*Element
	Lists     map[string][]*Element

	// OnPass lets a test mutate the page between extractor passes to
	// simulate virtualized rows mounting after scroll/expand.
	OnPass func(p *Page, pass int)

	ScrollCalls int
	IdleCalls   int
	IsClosed    bool
	FindErr     error
	ContentErr  error
}

// Element is a scripted DOM node.
type Element struct {
	TextValue  string
	HTMLValue  string
	ClickErr   error
	ClickCount int
}

func (a *Automator) Open(url string) (browser.Page, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Opened = append(a.Opened, url)
	if a.OpenErr != nil {
		return nil, a.OpenErr
	}
	if p, ok := a.Pages[url]; ok {
		return p, nil
	}
	return nil, errors.New("no scripted page for " + url)
}

func (a *Automator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Closed = true
	return nil
}

func (p *Page) Find(selector string) (browser.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FindErr != nil {
		return nil, p.FindErr
	}
	if el, ok := p.Elements[selector]; ok {
		return el, nil
	}
	if list, ok := p.Lists[selector]; ok && len(list) > 0 {
		return list[0], nil
	}
	return nil, browser.ErrNotFound
}

func (p *Page) FindAll(selector string) ([]browser.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FindErr != nil {
		return nil, p.FindErr
	}
	if list, ok := p.Lists[selector]; ok {
		out := make([]browser.Element, len(list))
		for i, el := range list {
			out[i] = el
		}
		return out, nil
	}
	if el, ok := p.Elements[selector]; ok {
		return []browser.Element{el}, nil
	}
	return nil, nil
}

func (p *Page) ScrollToBottom(string) error {
	p.mu.Lock()
	p.ScrollCalls++
	pass := p.ScrollCalls
	hook := p.OnPass
	p.mu.Unlock()
	if hook != nil {
		hook(p, pass)
	}
	return nil
}

func (p *Page) WaitForNetworkIdle(time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.IdleCalls++
	return nil
}

func (p *Page) Content() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.HTML, p.ContentErr
}

func (p *Page) Title() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.PageTitle, nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.IsClosed = true
	return nil
}

func (e *Element) Click() error {
	e.ClickCount++
	return e.ClickErr
}

func (e *Element) Text() (string, error) {
	return e.TextValue, nil
}

func (e *Element) InnerHTML() (string, error) {
	return e.HTMLValue, nil
}
