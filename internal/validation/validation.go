// Package validation checks screenshot request payloads before any browser
// resource is touched.
package validation

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/snapgate/snapgate/internal/domain"
)

// urlPattern accepts http/https URLs with a registrable domain name,
// localhost, or a dotted IPv4 host, followed by an optional port and an
// optional path or query.
var urlPattern = regexp.MustCompile(`(?i)^https?://` +
	`(?:(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,6}\.?` +
	`|localhost` +
	`|\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
	`(?::\d+)?` +
	`(?:/?|[/?]\S+)$`)

// ValidateURL validates the shape of a screenshot target URL.
func ValidateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("url is required")
	}
	if !urlPattern.MatchString(raw) {
		return fmt.Errorf("invalid URL format")
	}
	return nil
}

// ValidateRequest validates the whole payload. Defaults for fields absent
// from the payload are applied during JSON decoding; a nil options object
// means none were supplied at all. The returned errors are field-level and
// suitable for a 422 response.
func ValidateRequest(req *domain.ScreenshotRequest) ValidationErrors {
	var errs ValidationErrors

	if req.Options == nil {
		defaults := domain.DefaultScreenshotOptions()
		req.Options = &defaults
	}

	if err := ValidateURL(req.URL); err != nil {
		errs.Add("url", req.URL, err.Error())
	}

	opts := *req.Options
	if opts.Width < domain.MinViewport || opts.Width > domain.MaxViewport {
		errs.Add("options.width", strconv.Itoa(opts.Width),
			fmt.Sprintf("must be between %d and %d", domain.MinViewport, domain.MaxViewport))
	}
	if opts.Height < domain.MinViewport || opts.Height > domain.MaxViewport {
		errs.Add("options.height", strconv.Itoa(opts.Height),
			fmt.Sprintf("must be between %d and %d", domain.MinViewport, domain.MaxViewport))
	}
	if opts.Delay < 0 || opts.Delay > domain.MaxDelayMillis {
		errs.Add("options.delay", strconv.Itoa(opts.Delay),
			fmt.Sprintf("must be between 0 and %d milliseconds", domain.MaxDelayMillis))
	}
	if opts.Format != domain.FormatPNG && opts.Format != domain.FormatJPEG {
		errs.Add("options.format", string(opts.Format), "must be png or jpeg")
	}
	if opts.Quality < domain.MinQuality || opts.Quality > domain.MaxQuality {
		errs.Add("options.quality", strconv.Itoa(opts.Quality),
			fmt.Sprintf("must be between %d and %d", domain.MinQuality, domain.MaxQuality))
	}

	return errs
}
