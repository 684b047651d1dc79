package browser

import (
	"fmt"
	"io"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/snapgate/snapgate/internal/domain"
)

// launchArgs is the fixed flag set passed to Chromium: sandboxing and GPU
// off for containerized hosts, automation-detection signals suppressed.
var launchArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--disable-accelerated-2d-canvas",
	"--no-first-run",
	"--no-zygote",
	"--disable-gpu",
	"--disable-blink-features=AutomationControlled",
	"--disable-features=VizDisplayCompositor",
	"--disable-web-security",
	"--disable-features=TranslateUI",
	"--disable-ipc-flooding-protection",
}

// playwrightEngine is the production Engine backed by playwright-go.
type playwrightEngine struct {
	pw *playwright.Playwright
}

// NewPlaywrightEngine creates an Engine that drives headless Chromium
// through Playwright.
func NewPlaywrightEngine() Engine {
	return &playwrightEngine{}
}

func (e *playwrightEngine) Launch() (Browser, error) {
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return nil, fmt.Errorf("installing playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}
	e.pw = pw

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     launchArgs,
	})
	if err != nil {
		_ = pw.Stop()
		e.pw = nil
		return nil, fmt.Errorf("launching chromium: %w", err)
	}

	return &playwrightBrowser{browser: b}, nil
}

func (e *playwrightEngine) Stop() error {
	if e.pw == nil {
		return nil
	}
	err := e.pw.Stop()
	e.pw = nil
	return err
}

type playwrightBrowser struct {
	browser playwright.Browser
}

func (b *playwrightBrowser) NewPage(userAgent string) (Page, error) {
	page, err := b.browser.NewPage(playwright.BrowserNewPageOptions{
		UserAgent: playwright.String(userAgent),
	})
	if err != nil {
		return nil, err
	}
	return &playwrightPage{page: page}, nil
}

func (b *playwrightBrowser) Close() error {
	return b.browser.Close()
}

type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) SetViewportSize(width, height int) error {
	return p.page.SetViewportSize(width, height)
}

func (p *playwrightPage) SetExtraHTTPHeaders(headers map[string]string) error {
	return p.page.SetExtraHTTPHeaders(headers)
}

func (p *playwrightPage) Navigate(url string, timeout time.Duration) error {
	// domcontentloaded rather than networkidle: pages with persistent
	// connections or analytics never go idle.
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	return err
}

func (p *playwrightPage) Screenshot(opts domain.ScreenshotOptions) ([]byte, error) {
	screenshotOpts := playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(opts.FullPage),
		Type:     playwright.ScreenshotTypePng,
	}
	if opts.Format == domain.FormatJPEG {
		screenshotOpts.Type = playwright.ScreenshotTypeJpeg
		screenshotOpts.Quality = playwright.Int(opts.Quality)
	}
	return p.page.Screenshot(screenshotOpts)
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}
