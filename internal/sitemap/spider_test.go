package sitemap_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docsnap/internal/sitemap"
)

func spiderSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html><body>
<a href="/guide">guide</a>
<a href="/api">api</a>
<a href="#section">fragment</a>
<a href="mailto:team@example.com">mail</a>
</body></html>`)
	})
	mux.HandleFunc("/guide", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html><body><a href="/guide/advanced">advanced</a></body></html>`)
	})
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html><body>api</body></html>`)
	})
	mux.HandleFunc("/guide/advanced", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html><body>deep</body></html>`)
	})
	return httptest.NewServer(mux)
}

func TestSpider_DiscoversLinkedPages(t *testing.T) {
	srv := spiderSite(t)
	defer srv.Close()

	urls, err := sitemap.Spider(context.Background(), sitemap.SpiderOptions{
		BaseURL:         srv.URL,
		MaxPages:        50,
		Timeout:         2 * time.Second,
		AllowAllDomains: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := map[string]bool{}
	for _, u := range urls {
		found[u] = true
	}
	for _, path := range []string{"/", "/guide", "/api", "/guide/advanced"} {
		if !found[srv.URL+path] && !(path == "/" && found[srv.URL]) {
			t.Errorf("missing %s in %v", path, urls)
		}
	}
}

func TestSpider_InvalidBase(t *testing.T) {
	_, err := sitemap.Spider(context.Background(), sitemap.SpiderOptions{BaseURL: "::bad::"})
	if err == nil {
		t.Fatal("expected error for invalid base URL")
	}
}
