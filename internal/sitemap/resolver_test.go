package sitemap_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"docsnap/internal/browser/browsertest"
	"docsnap/internal/httpx"
	"docsnap/internal/sitemap"
)

func testLog(t *testing.T) *logrus.Entry {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log.WithField("test", t.Name())
}

func urlsetBody(urls ...string) string {
	body := `<?xml version="1.0"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`
	for _, u := range urls {
		body += "<url><loc>" + u + "</loc></url>"
	}
	return body + "</urlset>"
}

func TestResolve_Direct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, urlsetBody("https://docs.example.com/a", "https://docs.example.com/b"))
	}))
	defer srv.Close()

	r := sitemap.NewResolver(httpx.New("", time.Second), nil, nil, testLog(t), sitemap.Options{})
	records, err := r.Resolve(context.Background(), srv.URL+"/sitemap.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 || records[0].URL != "https://docs.example.com/a" {
		t.Fatalf("unexpected records: %v", records)
	}
}

func TestResolve_IndexRecursion(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sitemap.xml":
			_, _ = io.WriteString(w, `<?xml version="1.0"?><sitemapindex>`+
				"<sitemap><loc>"+srv.URL+"/child-1.xml</loc></sitemap>"+
				"<sitemap><loc>"+srv.URL+"/child-2.xml</loc></sitemap>"+
				"</sitemapindex>")
		case "/child-1.xml":
			_, _ = io.WriteString(w, urlsetBody("https://docs.example.com/a"))
		case "/child-2.xml":
			_, _ = io.WriteString(w, urlsetBody("https://docs.example.com/b"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := sitemap.NewResolver(httpx.New("", time.Second), nil, nil, testLog(t), sitemap.Options{})
	records, err := r.Resolve(context.Background(), srv.URL+"/sitemap.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 || records[1].URL != "https://docs.example.com/b" {
		t.Fatalf("unexpected records: %v", records)
	}
}

func TestResolve_BrowserFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	sitemapURL := srv.URL + "/sitemap.xml"
	plain := &browsertest.Automator{Pages: map[string]*browsertest.Page{
		sitemapURL: {HTML: `<div id="webkit-xml-viewer-source-xml">` +
			"<loc>https://docs.example.com/a</loc><loc>https://docs.example.com/b</loc></div>"},
	}}
	stealth := &browsertest.Automator{}

	r := sitemap.NewResolver(httpx.New("", time.Second), plain, stealth, testLog(t),
		sitemap.Options{StrategyTimeout: 2 * time.Second})
	records, err := r.Resolve(context.Background(), sitemapURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("unexpected records: %v", records)
	}
	if len(stealth.Opened) != 0 {
		t.Fatalf("stealth session used before plain browser succeeded: %v", stealth.Opened)
	}
}

func TestResolve_RobotsDiscovery(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			_, _ = io.WriteString(w, "User-agent: *\nAllow: /\nSitemap: "+srv.URL+"/real-sitemap.xml\n")
		case "/real-sitemap.xml":
			_, _ = io.WriteString(w, urlsetBody("https://docs.example.com/a"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	// No browser sessions: strategies 2 and 3 report unavailable and the
	// chain reaches robots.txt discovery.
	r := sitemap.NewResolver(httpx.New("", time.Second), nil, nil, testLog(t),
		sitemap.Options{StrategyTimeout: 2 * time.Second})
	records, err := r.Resolve(context.Background(), srv.URL+"/missing-sitemap.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].URL != "https://docs.example.com/a" {
		t.Fatalf("unexpected records: %v", records)
	}
}

func TestResolve_Exhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	r := sitemap.NewResolver(httpx.New("", 500*time.Millisecond), nil, nil, testLog(t),
		sitemap.Options{StrategyTimeout: 500 * time.Millisecond})
	_, err := r.Resolve(context.Background(), srv.URL+"/sitemap.xml")
	if !errors.Is(err, sitemap.ErrNoSitemap) {
		t.Fatalf("expected ErrNoSitemap, got %v", err)
	}
}
