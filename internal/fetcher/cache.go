package fetcher

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
)

// cache persists successful page fetches on disk so re-runs skip the
// browser for pages already captured. Keys are content-addressed by
// URL; a zero-value dir disables caching entirely.
type cache struct {
	dir string
}

func newCache(dir string) *cache {
	if dir == "" {
		return nil
	}
	return &cache{dir: dir}
}

func (c *cache) path(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

func (c *cache) get(url string) (*PageContent, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := os.ReadFile(c.path(url))
	if err != nil {
		return nil, false
	}
	var page PageContent
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, false
	}
	if page.Status != StatusSuccess {
		return nil, false
	}
	return &page, true
}

func (c *cache) put(page *PageContent) {
	if c == nil || page == nil || page.Status != StatusSuccess {
		return
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return
	}
	raw, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(c.path(page.URL), raw, 0o644)
}
