// Package cli wires the docsnap commands. Each phase is its own
// subcommand so a long job can be resumed from its last checkpoint;
// run chains all three.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docsnap/internal/assemble"
	"docsnap/internal/config"
	"docsnap/internal/logging"
	"docsnap/internal/pipeline"
	"docsnap/internal/state"
)

type rootFlags struct {
	configPath string
	verbose    bool
	job        config.Job
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "docsnap",
		Short:         "Snapshot a documentation site into offline markdown and HTML",
		Long:          "docsnap resolves a site's sitemap, extracts its navigation tree,\nfetches every page through a headless browser, and assembles the\nresult into combined offline documents.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a job config JSON file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newRunCommand(flags),
		newDiscoverCommand(flags),
		newFetchCommand(flags),
		newBuildCommand(flags),
		newInitConfigCommand(),
	)
	return root
}

func addJobFlags(cmd *cobra.Command, job *config.Job) {
	f := cmd.Flags()
	f.StringVar(&job.SitemapURL, "sitemap", "", "sitemap URL (required unless set in --config)")
	f.StringVar(&job.NavURL, "nav-url", "", "page to read the navigation tree from (default: first sitemap URL)")
	f.StringVarP(&job.OutputDir, "output-dir", "o", "", "output directory (default: output/<host>)")
	f.IntVar(&job.Concurrency, "concurrency", 0, "concurrent page fetches")
	f.IntVar(&job.TimeoutSeconds, "timeout", 0, "per-page timeout in seconds")
	f.IntVar(&job.Retries, "retries", 0, "retry attempts per page")
	f.BoolVar(&job.AggressiveMatch, "aggressive-match", false, "tolerant URL matching between navigation and sitemap")
	f.BoolVar(&job.TestMode, "test-mode", false, fmt.Sprintf("fetch only the first %d pages", config.TestModeLimit))
	f.StringVar(&job.UserAgent, "user-agent", "", "User-Agent header")
	f.Float64Var(&job.RateLimitPerSecond, "rate-limit", 0, "max page fetches per second (0 = unlimited)")
	f.BoolVar(&job.UseCache, "cache", false, "reuse previously fetched pages from the on-disk cache")
	f.BoolVar(&job.SpiderFallback, "spider", false, "crawl the site when no sitemap strategy succeeds")
}

// resolveJob merges the config file (if any) with flag overrides; a flag
// the user set wins over the file value.
func (rf *rootFlags) resolveJob(cmd *cobra.Command) (config.Job, error) {
	job := rf.job
	if rf.configPath == "" {
		return job, nil
	}
	fileJob, err := config.Load(rf.configPath)
	if err != nil {
		return config.Job{}, fmt.Errorf("load config %s: %w", rf.configPath, err)
	}
	overrideJob(cmd, &fileJob, job)
	return fileJob, nil
}

func overrideJob(cmd *cobra.Command, dst *config.Job, flags config.Job) {
	set := cmd.Flags().Changed
	if set("sitemap") {
		dst.SitemapURL = flags.SitemapURL
	}
	if set("nav-url") {
		dst.NavURL = flags.NavURL
	}
	if set("output-dir") {
		dst.OutputDir = flags.OutputDir
	}
	if set("concurrency") {
		dst.Concurrency = flags.Concurrency
	}
	if set("timeout") {
		dst.TimeoutSeconds = flags.TimeoutSeconds
	}
	if set("retries") {
		dst.Retries = flags.Retries
	}
	if set("aggressive-match") {
		dst.AggressiveMatch = flags.AggressiveMatch
	}
	if set("test-mode") {
		dst.TestMode = flags.TestMode
	}
	if set("user-agent") {
		dst.UserAgent = flags.UserAgent
	}
	if set("rate-limit") {
		dst.RateLimitPerSecond = flags.RateLimitPerSecond
	}
	if set("cache") {
		dst.UseCache = flags.UseCache
	}
	if set("spider") {
		dst.SpiderFallback = flags.SpiderFallback
	}
}

func newRunCommand(rf *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run all three phases: discover, fetch, build",
		RunE: func(cmd *cobra.Command, _ []string) error {
			job, err := rf.resolveJob(cmd)
			if err != nil {
				return err
			}
			p := pipeline.New(logging.New(rf.verbose))
			sum, err := p.RunAll(cmd.Context(), job)
			if err != nil {
				return err
			}
			printSummary(cmd, sum)
			return nil
		},
	}
	addJobFlags(cmd, &rf.job)
	return cmd
}

func newDiscoverCommand(rf *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Resolve the sitemap and navigation tree, write the discovery checkpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			job, err := rf.resolveJob(cmd)
			if err != nil {
				return err
			}
			p := pipeline.New(logging.New(rf.verbose))
			ds, err := p.Discover(cmd.Context(), job)
			if err != nil {
				return err
			}
			cmd.Printf("Discovered %d pages -> %s\n",
				len(ds.Records), config.DiscoverPath(ds.Config.OutputDir))
			return nil
		},
	}
	addJobFlags(cmd, &rf.job)
	return cmd
}

func newFetchCommand(rf *rootFlags) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch every discovered page, write the fetch checkpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := state.LoadDiscover(dir)
			if err != nil {
				return err
			}
			p := pipeline.New(logging.New(rf.verbose))
			fs, err := p.Fetch(cmd.Context(), ds)
			if err != nil && fs == nil {
				return err
			}
			cmd.Printf("Fetched %d pages -> %s\n",
				len(fs.Pages), config.FetchPath(fs.Config.OutputDir))
			return err
		},
	}
	cmd.Flags().StringVarP(&dir, "output-dir", "o", "", "directory holding the discovery checkpoint")
	_ = cmd.MarkFlagRequired("output-dir")
	return cmd
}

func newBuildCommand(rf *rootFlags) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble the final artifacts from the fetch checkpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs, err := state.LoadFetch(dir)
			if err != nil {
				return err
			}
			p := pipeline.New(logging.New(rf.verbose))
			sum, err := p.Build(fs)
			if err != nil {
				return err
			}
			printSummary(cmd, sum)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "output-dir", "o", "", "directory holding the fetch checkpoint")
	_ = cmd.MarkFlagRequired("output-dir")
	return cmd
}

func printSummary(cmd *cobra.Command, sum *assemble.Summary) {
	cmd.Printf("Snapshot complete: %d pages (%d failed, %d skipped, %d unlisted)\n",
		sum.Succeeded, sum.Failed, sum.Skipped, sum.Unlisted)
	for _, name := range sum.Artifacts {
		cmd.Println("  " + name)
	}
}
