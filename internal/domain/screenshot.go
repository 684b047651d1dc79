package domain

import (
	"encoding/json"
	"time"
)

// ImageFormat is the encoding of a captured screenshot.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
)

// Bounds for screenshot options.
const (
	MinViewport    = 100
	MaxViewport    = 4000
	MaxDelayMillis = 30000
	MinQuality     = 1
	MaxQuality     = 100
)

// Defaults applied when option fields are omitted.
const (
	DefaultWidth   = 1920
	DefaultHeight  = 1080
	DefaultQuality = 90
)

// ScreenshotOptions controls how a page is rendered and captured.
// Quality only applies to jpeg output.
type ScreenshotOptions struct {
	Width    int
	Height   int
	FullPage bool
	Delay    int
	Format   ImageFormat
	Quality  int
}

// DefaultScreenshotOptions returns the options used when none are supplied.
func DefaultScreenshotOptions() ScreenshotOptions {
	return ScreenshotOptions{
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Format:  FormatPNG,
		Quality: DefaultQuality,
	}
}

// UnmarshalJSON applies defaults only for fields absent from the payload.
// Explicitly supplied values are kept as-is, including zeros and empty
// strings, so out-of-range input still fails validation.
func (o *ScreenshotOptions) UnmarshalJSON(data []byte) error {
	var raw struct {
		Width    *int         `json:"width"`
		Height   *int         `json:"height"`
		FullPage *bool        `json:"fullPage"`
		Delay    *int         `json:"delay"`
		Format   *ImageFormat `json:"format"`
		Quality  *int         `json:"quality"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*o = DefaultScreenshotOptions()
	if raw.Width != nil {
		o.Width = *raw.Width
	}
	if raw.Height != nil {
		o.Height = *raw.Height
	}
	if raw.FullPage != nil {
		o.FullPage = *raw.FullPage
	}
	if raw.Delay != nil {
		o.Delay = *raw.Delay
	}
	if raw.Format != nil {
		o.Format = *raw.Format
	}
	if raw.Quality != nil {
		o.Quality = *raw.Quality
	}
	return nil
}

// ScreenshotRequest is the request body for a capture. Options is nil when
// the payload carries no options object at all.
type ScreenshotRequest struct {
	URL     string             `json:"url"`
	Options *ScreenshotOptions `json:"options"`
}

// ScreenshotResult is the response body for a successful capture. Image is
// a data URI: data:image/{format};base64,{payload}.
type ScreenshotResult struct {
	Status    string      `json:"status"`
	Image     string      `json:"image"`
	Format    ImageFormat `json:"format"`
	Timestamp time.Time   `json:"timestamp"`
	URL       string      `json:"url"`
}
