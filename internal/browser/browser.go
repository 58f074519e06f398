package browser

import (
	"errors"
	"time"
)

// ErrNotFound is returned by Page.Find when no candidate selector
// matches anything in the current DOM.
var ErrNotFound = errors.New("element not found")

// Options configures a browser session.
type Options struct {
	Headless  bool
	UserAgent string
	Timeout   time.Duration
	// Stealth navigates with randomized realistic headers and
	// human-like pacing, for sites that filter obvious automation.
	Stealth  bool
	ProxyURL string
}

// Automator drives a headless browser instance. Each Open returns an
// independent page, so concurrent fetch tasks never share navigation
// state. The pipeline treats it as an opaque capability; the production
// implementation lives in playwright.go.
type Automator interface {
	// Open navigates a fresh page to url and waits for network idle.
	Open(url string) (Page, error)
	Close() error
}

// Page is one browser tab.
type Page interface {
	// Find returns the first element matching selector, or ErrNotFound.
	Find(selector string) (Element, error)
	// FindAll returns every element currently mounted for selector.
	FindAll(selector string) ([]Element, error)
	// ScrollToBottom scrolls the element matching selector to its
	// current bottom, forcing virtualized rows to mount.
	ScrollToBottom(selector string) error
	WaitForNetworkIdle(timeout time.Duration) error
	Content() (string, error)
	Title() (string, error)
	Close() error
}

// Element is a handle to one mounted DOM node.
type Element interface {
	Click() error
	Text() (string, error)
	InnerHTML() (string, error)
}

// FindFirst tries an ordered list of candidate selectors and returns the
// first hit along with the selector that matched.
func FindFirst(p Page, selectors []string) (Element, string, error) {
	for _, sel := range selectors {
		el, err := p.Find(sel)
		if err == nil {
			return el, sel, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, "", err
		}
	}
	return nil, "", ErrNotFound
}

// Consent overlays seen on documentation hosts. Dismissal is best-effort
// and non-fatal; a site without an overlay just misses every selector.
var consentSelectors = []string{
	"button#onetrust-accept-btn-handler",
	"button[aria-label='Accept all']",
	"button[aria-label='Accept cookies']",
	".cookie-consent button.accept",
	"#cookie-banner button",
	"button[data-testid='cookie-accept']",
}

// DismissOverlays clicks through any consent or cookie overlay found on
// the page. Click errors are swallowed: an overlay that vanished between
// query and click is a success, not a failure.
func DismissOverlays(p Page) {
	for _, sel := range consentSelectors {
		el, err := p.Find(sel)
		if err != nil {
			continue
		}
		_ = el.Click()
	}
}
