package browser_test

import (
	"errors"
	"testing"

	"docsnap/internal/browser"
	"docsnap/internal/browser/browsertest"
)

func TestFindFirst_OrderedCandidates(t *testing.T) {
	page := &browsertest.Page{
		Elements: map[string]*browsertest.Element{
			"aside nav": {HTMLValue: "<ul></ul>"},
			"nav":       {HTMLValue: "<div></div>"},
		},
	}

	_, sel, err := browser.FindFirst(page, []string{"nav[role='navigation']", "aside nav", "nav"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel != "aside nav" {
		t.Fatalf("matched %q, want first hit in candidate order", sel)
	}
}

func TestFindFirst_NoMatch(t *testing.T) {
	page := &browsertest.Page{}
	_, _, err := browser.FindFirst(page, []string{"nav", "aside"})
	if !errors.Is(err, browser.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDismissOverlays(t *testing.T) {
	accept := &browsertest.Element{}
	page := &browsertest.Page{
		Elements: map[string]*browsertest.Element{
			"button#onetrust-accept-btn-handler": accept,
		},
	}

	browser.DismissOverlays(page)
	if accept.ClickCount != 1 {
		t.Fatalf("consent button clicked %d times, want 1", accept.ClickCount)
	}
}

func TestDismissOverlays_ClickErrorIgnored(t *testing.T) {
	page := &browsertest.Page{
		Elements: map[string]*browsertest.Element{
			"#cookie-banner button": {ClickErr: errors.New("detached")},
		},
	}
	// Must not panic or propagate.
	browser.DismissOverlays(page)
}
