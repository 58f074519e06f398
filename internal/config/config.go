package config

import (
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"
)

// Job holds the immutable parameters for one snapshot run. It is created
// once at job start, normalized, and passed by value to every component;
// each persisted phase document embeds a copy so later phases can re-run
// without the original invocation.
type Job struct {
	SitemapURL         string  `json:"sitemap_url"`
	NavURL             string  `json:"nav_url,omitempty"`
	OutputDir          string  `json:"output_dir,omitempty"`
	Concurrency        int     `json:"concurrency,omitempty"`
	TimeoutSeconds     int     `json:"timeout_seconds,omitempty"`
	Retries            int     `json:"retries,omitempty"`
	AggressiveMatch    bool    `json:"aggressive_match,omitempty"`
	TestMode           bool    `json:"test_mode,omitempty"`
	UserAgent          string  `json:"user_agent,omitempty"`
	Headless           *bool   `json:"headless,omitempty"`
	RateLimitPerSecond float64 `json:"rate_limit_per_second,omitempty"`
	UseCache           bool    `json:"cache,omitempty"`
	SpiderFallback     bool    `json:"spider_fallback,omitempty"`
	SpiderMaxPages     int     `json:"spider_max_pages,omitempty"`
}

const (
	DefaultConcurrency    = 4
	DefaultTimeoutSeconds = 45
	DefaultRetries        = 3
	DefaultUserAgent      = "docsnap/1.0"
	DefaultSpiderMaxPages = 200

	// TestModeLimit caps the fetch worklist when TestMode is set.
	TestModeLimit = 5
)

func Load(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return Job{}, err
	}
	return job, nil
}

func Marshal(job Job) ([]byte, error) {
	return json.MarshalIndent(job, "", "  ")
}

// Normalized returns a copy with defaults applied. The copy is what gets
// persisted; components never see a half-configured Job.
func (j Job) Normalized() Job {
	if j.Concurrency <= 0 {
		j.Concurrency = DefaultConcurrency
	}
	if j.TimeoutSeconds <= 0 {
		j.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if j.Retries < 0 {
		j.Retries = 0
	} else if j.Retries == 0 {
		j.Retries = DefaultRetries
	}
	if strings.TrimSpace(j.UserAgent) == "" {
		j.UserAgent = DefaultUserAgent
	}
	if j.OutputDir == "" {
		j.OutputDir = DefaultOutputDir(j.SitemapURL)
	}
	if j.SpiderMaxPages <= 0 {
		j.SpiderMaxPages = DefaultSpiderMaxPages
	}
	return j
}

func (j Job) Validate() error {
	if strings.TrimSpace(j.SitemapURL) == "" {
		return errors.New("sitemap url is required")
	}
	u, err := url.Parse(j.SitemapURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("sitemap url must be an absolute http(s) URL")
	}
	if j.NavURL != "" {
		if nu, err := url.Parse(j.NavURL); err != nil || nu.Host == "" {
			return errors.New("nav url must be an absolute URL")
		}
	}
	return nil
}

func (j Job) FetchTimeout() time.Duration {
	return time.Duration(j.TimeoutSeconds) * time.Second
}

// IsHeadless defaults to true when unset; a JSON `"headless": false` is
// the only way to watch the browser.
func (j Job) IsHeadless() bool {
	return j.Headless == nil || *j.Headless
}

var hostCleanRe = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// DefaultOutputDir derives output/<host> from the sitemap URL.
func DefaultOutputDir(rawURL string) string {
	host := hostFromURL(rawURL)
	if host == "" {
		host = "snapshot"
	}
	return "output/" + host
}

func hostFromURL(rawURL string) string {
	if rawURL != "" && !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ReplaceAll(u.Hostname(), ".", "_")
	return hostCleanRe.ReplaceAllString(host, "")
}
