// Package plantuml talks to a PlantUML render server.
package plantuml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/umlforge/umlforge/pkg/logger"
)

// Format is the image type requested from the render server.
type Format string

const (
	FormatSVG Format = "SVG"
	FormatPNG Format = "PNG"
)

// ParseFormat accepts exactly "SVG" or "PNG".
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatSVG, FormatPNG:
		return Format(s), true
	}
	return "", false
}

// MimeType returns the media type the render server answers with.
func (f Format) MimeType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ErrorKind classifies render failures.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindInvalidUML  ErrorKind = "invalid_uml"
	KindUnavailable ErrorKind = "unavailable"
)

// RenderError is the single error type returned by Service.Render.
type RenderError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("plantuml render %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("plantuml render %s: status %d", e.Kind, e.StatusCode)
}

func (e *RenderError) Unwrap() error { return e.Err }

type Service struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func NewService(baseURL string, timeout time.Duration) *Service {
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{},
	}
}

// Timeout is the per-request limit applied to Render.
func (s *Service) Timeout() time.Duration {
	return s.timeout
}

// Render fetches the diagram for source in the given format.
func (s *Service) Render(ctx context.Context, source string, format Format) ([]byte, error) {
	encoded, err := Encode(source)
	if err != nil {
		return nil, &RenderError{Kind: KindUnavailable, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s/%s", s.baseURL, strings.ToLower(string(format)), encoded)
	logger.Debug(logger.RENDER, "Fetching %s diagram, %d encoded bytes", format, len(encoded))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &RenderError{Kind: KindUnavailable, Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return nil, &RenderError{Kind: KindInvalidUML, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().
			Int("status", resp.StatusCode).
			Str("format", string(format)).
			Msg("PlantUML server returned an unexpected status")
		return nil, &RenderError{Kind: KindUnavailable, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, err)
	}
	return body, nil
}

func classify(ctx context.Context, err error) *RenderError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &RenderError{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &RenderError{Kind: KindTimeout, Err: err}
	}
	return &RenderError{Kind: KindUnavailable, Err: err}
}
