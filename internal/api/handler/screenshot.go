package handler

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/snapgate/snapgate/internal/browser"
	"github.com/snapgate/snapgate/internal/domain"
	"github.com/snapgate/snapgate/internal/validation"
)

// ScreenshotHandler handles the screenshot capture endpoint.
type ScreenshotHandler struct {
	browser *browser.Manager
	logger  *logrus.Logger
}

// NewScreenshotHandler creates a new ScreenshotHandler.
func NewScreenshotHandler(mgr *browser.Manager, logger *logrus.Logger) *ScreenshotHandler {
	return &ScreenshotHandler{browser: mgr, logger: logger}
}

// Capture validates the request, renders the URL through the shared
// browser, and returns the image as a base64 data URI.
func (h *ScreenshotHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var req domain.ScreenshotRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	if errs := validation.ValidateRequest(&req); errs.HasErrors() {
		respondValidationErrors(w, errs)
		return
	}

	img, err := h.browser.Capture(r.Context(), &req)
	if err != nil {
		h.logger.WithError(err).WithField("url", req.URL).Error("screenshot capture failed")
		respondError(w, http.StatusInternalServerError, "screenshot capture failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, &domain.ScreenshotResult{
		Status:    "success",
		Image:     dataURI(img, req.Options.Format),
		Format:    req.Options.Format,
		Timestamp: time.Now().UTC(),
		URL:       req.URL,
	})
}

// dataURI wraps raw image bytes in a data URI whose MIME subtype matches
// the capture format exactly.
func dataURI(img []byte, format domain.ImageFormat) string {
	return fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(img))
}

// Root returns the liveness payload for the API prefix.
func Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "URL Screenshot API v1.0",
		"status":  "active",
	})
}
