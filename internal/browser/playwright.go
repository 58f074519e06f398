package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

type playwrightAutomator struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
}

// Launch installs the playwright driver if needed and starts one
// Chromium instance. The returned Automator is safe for concurrent Open
// calls; pages are independent.
func Launch(opts Options) (Automator, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 45 * time.Second
	}
	if err := playwright.Install(&playwright.RunOptions{}); err != nil {
		return nil, fmt.Errorf("install playwright: %w", err)
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, err
	}
	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.ProxyURL != "" {
		launchOpts.Proxy = &playwright.Proxy{Server: opts.ProxyURL}
	}
	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}
	return &playwrightAutomator{pw: pw, browser: browser, opts: opts}, nil
}

func (a *playwrightAutomator) Open(url string) (Page, error) {
	ua := a.opts.UserAgent
	if a.opts.Stealth {
		ua = stealthUserAgent()
	}
	page, err := a.browser.NewPage(playwright.BrowserNewPageOptions{
		UserAgent: playwright.String(ua),
	})
	if err != nil {
		return nil, err
	}
	if a.opts.Stealth {
		if err := page.SetExtraHTTPHeaders(stealthHeaders()); err != nil {
			_ = page.Close()
			return nil, err
		}
		humanPause()
	}
	if _, err := page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(a.opts.Timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		_ = page.Close()
		return nil, err
	}
	return &playwrightPage{page: page, timeout: a.opts.Timeout}, nil
}

func (a *playwrightAutomator) Close() error {
	err := a.browser.Close()
	if stopErr := a.pw.Stop(); err == nil {
		err = stopErr
	}
	return err
}

type playwrightPage struct {
	page    playwright.Page
	timeout time.Duration
}

func (p *playwrightPage) Find(selector string) (Element, error) {
	loc := p.page.Locator(selector).First()
	count, err := loc.Count()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return &playwrightElement{loc: loc}, nil
}

func (p *playwrightPage) FindAll(selector string) ([]Element, error) {
	loc := p.page.Locator(selector)
	count, err := loc.Count()
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, count)
	for i := 0; i < count; i++ {
		elements = append(elements, &playwrightElement{loc: loc.Nth(i)})
	}
	return elements, nil
}

func (p *playwrightPage) ScrollToBottom(selector string) error {
	loc := p.page.Locator(selector).First()
	_, err := loc.Evaluate("el => { el.scrollTop = el.scrollHeight; }", nil)
	return err
}

func (p *playwrightPage) WaitForNetworkIdle(timeout time.Duration) error {
	if timeout == 0 {
		timeout = p.timeout
	}
	return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (p *playwrightPage) Content() (string, error) {
	return p.page.Content()
}

func (p *playwrightPage) Title() (string, error) {
	return p.page.Title()
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}

type playwrightElement struct {
	loc playwright.Locator
}

func (e *playwrightElement) Click() error {
	return e.loc.Click()
}

func (e *playwrightElement) Text() (string, error) {
	return e.loc.TextContent()
}

func (e *playwrightElement) InnerHTML() (string, error) {
	return e.loc.InnerHTML()
}
