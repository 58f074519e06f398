package cli

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"docsnap/internal/config"
)

// newInitConfigCommand runs an interactive form and writes the answers
// as a job config file usable with --config.
func newInitConfigCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Interactively create a job config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			job, err := runWizard()
			if err != nil {
				return err
			}
			data, err := config.Marshal(job)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", out)
			cmd.Printf("Run it with: docsnap run --config %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "docsnap.json", "config file to write")
	return cmd
}

type wizardState struct {
	sitemapURL  string
	navURL      string
	outputDir   string
	concurrency string
	retries     string
	aggressive  bool
	testMode    bool
	spider      bool
	cache       bool
}

func runWizard() (config.Job, error) {
	state := &wizardState{
		concurrency: strconv.Itoa(config.DefaultConcurrency),
		retries:     strconv.Itoa(config.DefaultRetries),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Sitemap URL").
				Placeholder("https://docs.example.com/sitemap.xml").
				Value(&state.sitemapURL).
				Validate(validateAbsoluteURL),
			huh.NewInput().Title("Navigation page").
				Description("Page to read the sidebar tree from. Empty uses the first sitemap URL.").
				Value(&state.navURL).
				Validate(validateOptionalURL),
			huh.NewInput().Title("Output directory").
				Description("Empty derives output/<host> from the sitemap URL.").
				Value(&state.outputDir),
		),
		huh.NewGroup(
			huh.NewInput().Title("Concurrency").
				Value(&state.concurrency).
				Validate(validateIntString(1, 64)),
			huh.NewInput().Title("Retries per page").
				Value(&state.retries).
				Validate(validateIntString(0, 10)),
			huh.NewConfirm().Title("Aggressive URL matching").
				Description("Tolerate scheme, case, and trailing-slash differences between navigation links and sitemap URLs.").
				Value(&state.aggressive),
			huh.NewConfirm().Title("Test mode").
				Description(fmt.Sprintf("Fetch only the first %d pages.", config.TestModeLimit)).
				Value(&state.testMode),
			huh.NewConfirm().Title("Spider fallback").
				Description("Crawl the site if every sitemap strategy fails.").
				Value(&state.spider),
			huh.NewConfirm().Title("Cache fetched pages").
				Value(&state.cache),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		return config.Job{}, err
	}

	concurrency, _ := strconv.Atoi(state.concurrency)
	retries, _ := strconv.Atoi(state.retries)
	return config.Job{
		SitemapURL:      strings.TrimSpace(state.sitemapURL),
		NavURL:          strings.TrimSpace(state.navURL),
		OutputDir:       strings.TrimSpace(state.outputDir),
		Concurrency:     concurrency,
		Retries:         retries,
		AggressiveMatch: state.aggressive,
		TestMode:        state.testMode,
		SpiderFallback:  state.spider,
		UseCache:        state.cache,
	}, nil
}

func validateAbsoluteURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}

func validateOptionalURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return validateAbsoluteURL(s)
}

func validateIntString(min, max int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < min || n > max {
			return fmt.Errorf("must be a number between %d and %d", min, max)
		}
		return nil
	}
}
