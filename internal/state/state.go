// Package state persists the phase checkpoints that let a snapshot job
// resume without repeating earlier phases.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"docsnap/internal/config"
	"docsnap/internal/fetcher"
	"docsnap/internal/navtree"
	"docsnap/internal/sitemap"
)

// Discover is the checkpoint written after the discovery phase. It
// contains everything the fetch phase needs.
type Discover struct {
	JobID      string           `json:"jobId"`
	CreatedAt  time.Time        `json:"createdAt"`
	Config     config.Job       `json:"config"`
	Records    []sitemap.Record `json:"records"`
	Navigation *navtree.Node    `json:"navigation,omitempty"`
}

// Fetch is the checkpoint written after the fetch phase: the discovery
// result plus captured page content keyed by URL.
type Fetch struct {
	Discover
	FetchedAt time.Time                       `json:"fetchedAt"`
	Pages     map[string]*fetcher.PageContent `json:"pages"`
}

// NewDiscover stamps a fresh discovery checkpoint.
func NewDiscover(cfg config.Job, records []sitemap.Record, nav *navtree.Node) *Discover {
	return &Discover{
		JobID:      uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Config:     cfg,
		Records:    records,
		Navigation: nav,
	}
}

func (d *Discover) Save(dir string) error {
	return writeJSON(config.DiscoverPath(dir), d)
}

func LoadDiscover(dir string) (*Discover, error) {
	var d Discover
	if err := readJSON(config.DiscoverPath(dir), &d); err != nil {
		return nil, err
	}
	if d.Navigation != nil {
		d.Navigation.Relink()
	}
	return &d, nil
}

func (f *Fetch) Save(dir string) error {
	return writeJSON(config.FetchPath(dir), f)
}

func LoadFetch(dir string) (*Fetch, error) {
	var f Fetch
	if err := readJSON(config.FetchPath(dir), &f); err != nil {
		return nil, err
	}
	if f.Navigation != nil {
		f.Navigation.Relink()
	}
	return &f, nil
}

// writeJSON writes via a temp file and rename so a crash mid-write
// never leaves a truncated checkpoint behind.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read checkpoint: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse checkpoint %s: %w", filepath.Base(path), err)
	}
	return nil
}
