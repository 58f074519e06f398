package config

import "path/filepath"

// File names for the persisted phase documents and final artifacts. Each
// phase reads its predecessor's file from the job's output dir, so the
// names are part of the resume contract.
const (
	DiscoverFile = "discover.json"
	FetchFile    = "fetch.json"

	CombinedMarkdownFile = "combined.md"
	CombinedHTMLFile     = "combined.html"
	NavJSONFile          = "nav.json"
	NavMarkdownFile      = "nav.md"
	NavHTMLFile          = "nav.html"
	SummaryFile          = "summary.json"
	PagesDir             = "pages"
	CacheDir             = "cache"
)

func DiscoverPath(outputDir string) string {
	return filepath.Join(outputDir, DiscoverFile)
}

func FetchPath(outputDir string) string {
	return filepath.Join(outputDir, FetchFile)
}

func CachePath(outputDir string) string {
	return filepath.Join(outputDir, CacheDir)
}
