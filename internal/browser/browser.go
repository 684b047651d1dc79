// Package browser owns the shared headless browser process and the
// per-request page lifecycle around it.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/snapgate/snapgate/internal/domain"
)

// navigationTimeout bounds page loads. Fixed; not configurable per request.
const navigationTimeout = 60 * time.Second

// userAgent is a fixed desktop UA presented to target sites.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// extraHeaders is the fixed header set applied to every page to reduce
// anti-bot friction.
var extraHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Accept-Encoding":           "gzip, deflate, br",
	"Upgrade-Insecure-Requests": "1",
}

// ErrShutDown is returned for captures attempted after Shutdown.
var ErrShutDown = errors.New("browser manager is shut down")

// ErrorKind classifies capture failures.
type ErrorKind string

const (
	KindLaunchFailed     ErrorKind = "launch_failed"
	KindNavigationFailed ErrorKind = "navigation_failed"
	KindCaptureFailed    ErrorKind = "capture_failed"
)

// CaptureError is a failure during browser startup or capture.
type CaptureError struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

func captureErr(kind ErrorKind, detail string, err error) *CaptureError {
	if err != nil {
		detail = fmt.Sprintf("%s: %v", detail, err)
	}
	return &CaptureError{Kind: kind, Detail: detail, Err: err}
}

type state int

const (
	stateUninitialized state = iota
	stateStarting
	stateReady
	stateShuttingDown
	stateClosed
)

// Manager owns the single shared browser process. It starts lazily on the
// first capture, hands out one isolated page per capture, and shuts the
// process down once at teardown.
type Manager struct {
	mu      sync.Mutex
	engine  Engine
	browser Browser
	state   state
	logger  *logrus.Logger
}

// NewManager creates a Manager over the given engine. The browser is not
// launched until EnsureStarted or the first Capture.
func NewManager(engine Engine, logger *logrus.Logger) *Manager {
	return &Manager{
		engine: engine,
		logger: logger,
	}
}

// EnsureStarted launches the shared browser process if it is not running.
// Concurrent callers serialize on the manager lock, so exactly one launch
// happens and all callers converge on the same ready browser. A failed
// launch resets the manager so a later request can try again.
func (m *Manager) EnsureStarted() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case stateReady:
		return nil
	case stateShuttingDown, stateClosed:
		return ErrShutDown
	}

	m.state = stateStarting
	b, err := m.engine.Launch()
	if err != nil {
		m.state = stateUninitialized
		return captureErr(KindLaunchFailed, "launching browser", err)
	}

	m.browser = b
	m.state = stateReady
	m.logger.Info("browser process started")
	return nil
}

// Capture renders the request's URL and returns the raw image bytes. The
// page context opened for this call is closed on every exit path.
func (m *Manager) Capture(ctx context.Context, req *domain.ScreenshotRequest) ([]byte, error) {
	opts := req.Options
	if opts == nil {
		defaults := domain.DefaultScreenshotOptions()
		opts = &defaults
	}

	if err := m.EnsureStarted(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	b := m.browser
	m.mu.Unlock()
	if b == nil {
		return nil, ErrShutDown
	}

	page, err := b.NewPage(userAgent)
	if err != nil {
		return nil, captureErr(KindCaptureFailed, "opening page", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			m.logger.WithError(cerr).Warn("closing page")
		}
	}()

	if err := page.SetViewportSize(opts.Width, opts.Height); err != nil {
		return nil, captureErr(KindCaptureFailed, "setting viewport", err)
	}
	if err := page.SetExtraHTTPHeaders(extraHeaders); err != nil {
		return nil, captureErr(KindCaptureFailed, "setting headers", err)
	}
	if err := page.Navigate(req.URL, navigationTimeout); err != nil {
		return nil, captureErr(KindNavigationFailed, "navigating to "+req.URL, err)
	}

	// Give dynamic content time to settle. Only this request waits.
	if opts.Delay > 0 {
		select {
		case <-time.After(time.Duration(opts.Delay) * time.Millisecond):
		case <-ctx.Done():
			return nil, captureErr(KindCaptureFailed, "request cancelled during delay", ctx.Err())
		}
	}

	img, err := page.Screenshot(*opts)
	if err != nil {
		return nil, captureErr(KindCaptureFailed, "taking screenshot", err)
	}
	return img, nil
}

// Shutdown closes the browser process and releases the engine. Idempotent;
// a no-op if the browser never started.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateClosed {
		return nil
	}
	m.state = stateShuttingDown

	var errs []error
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing browser: %w", err))
		}
		m.browser = nil
	}
	if err := m.engine.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stopping engine: %w", err))
	}

	m.state = stateClosed
	if len(errs) > 0 {
		return fmt.Errorf("browser shutdown: %v", errs)
	}
	m.logger.Info("browser process stopped")
	return nil
}
