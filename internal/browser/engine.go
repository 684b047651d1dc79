package browser

import (
	"time"

	"github.com/snapgate/snapgate/internal/domain"
)

// Engine abstracts the browser automation runtime so the manager can be
// exercised with a double in tests. The production implementation wraps
// playwright-go; see NewPlaywrightEngine.
type Engine interface {
	// Launch starts the engine runtime if needed and launches a headless
	// browser process with the fixed flag set.
	Launch() (Browser, error)

	// Stop releases the engine runtime. Safe to call if Launch never
	// succeeded.
	Stop() error
}

// Browser is a handle to a running browser process.
type Browser interface {
	// NewPage opens an isolated page context with the given user agent.
	NewPage(userAgent string) (Page, error)

	// Close terminates the browser process.
	Close() error
}

// Page is an isolated page context scoped to a single capture.
type Page interface {
	SetViewportSize(width, height int) error
	SetExtraHTTPHeaders(headers map[string]string) error

	// Navigate loads the URL, waiting for DOM content loaded, bounded by
	// the given timeout.
	Navigate(url string, timeout time.Duration) error

	// Screenshot captures the page per the given options.
	Screenshot(opts domain.ScreenshotOptions) ([]byte, error)

	Close() error
}
