// Package render serves the PlantUML render and scale routes.
package render

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/umlforge/umlforge/internal/infrastructure/plantuml"
	"github.com/umlforge/umlforge/pkg/httpext"
)

// Renderer turns PlantUML source into image bytes.
type Renderer interface {
	Render(ctx context.Context, source string, format plantuml.Format) ([]byte, error)
	Timeout() time.Duration
}

// HandleFetchPlantUML renders uml_code as SVG or PNG, optionally wrapped in
// a data URI.
func HandleFetchPlantUML(renderer Renderer, w http.ResponseWriter, r *http.Request) {
	body, err := httpext.DecodeBody(r)
	if err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "InvalidInput", "Invalid request format", http.StatusBadRequest)
		return
	}

	if !body.Truthy("uml_code") || !body.Truthy("response_type") {
		httpext.JsonError(w, "MissingInput", "Both uml_code and response_type are required as non-empty parameters.", http.StatusBadRequest)
		return
	}

	source, ok := body.String("uml_code")
	if !ok {
		httpext.JsonError(w, "InvalidInput", "uml_code must be a string.", http.StatusBadRequest)
		return
	}

	responseType, _ := body.String("response_type")
	format, ok := plantuml.ParseFormat(responseType)
	if !ok {
		httpext.JsonError(w, "InvalidInput", `response_type must be "SVG" or "PNG".`, http.StatusBadRequest)
		return
	}

	asURI := false
	if body.Present("return_as_uri") {
		if asURI, ok = body.Bool("return_as_uri"); !ok {
			httpext.JsonError(w, "InvalidInput", "return_as_uri must be a boolean (default false).", http.StatusBadRequest)
			return
		}
	}

	data, err := renderer.Render(r.Context(), source, format)
	if err != nil {
		writeRenderError(w, renderer.Timeout(), err)
		return
	}

	log.Info().
		Str("format", string(format)).
		Int("bytes", len(data)).
		Bool("data_uri", asURI).
		Msg("Diagram rendered")

	if asURI {
		httpext.Text(w, http.StatusOK, fmt.Sprintf("data:%s;base64,%s", format.MimeType(), base64.StdEncoding.EncodeToString(data)))
		return
	}

	w.Header().Set("Content-Type", format.MimeType())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Error().Err(err).Msg("Failed to write diagram")
	}
}

func writeRenderError(w http.ResponseWriter, timeout time.Duration, err error) {
	var renderErr *plantuml.RenderError
	if !errors.As(err, &renderErr) {
		renderErr = &plantuml.RenderError{Kind: plantuml.KindUnavailable, Err: err}
	}

	log.Warn().Err(err).Str("kind", string(renderErr.Kind)).Msg("Render failed")

	switch renderErr.Kind {
	case plantuml.KindTimeout:
		seconds := strconv.FormatFloat(float64(timeout.Milliseconds())/1000, 'f', -1, 64)
		httpext.JsonError(w, "TimeoutError", fmt.Sprintf("The request timed out after %s seconds.", seconds), http.StatusRequestTimeout)
	case plantuml.KindInvalidUML:
		httpext.JsonError(w, "InvalidUMLCodeError", "The provided UML code is not valid.", http.StatusBadRequest)
	default:
		httpext.JsonError(w, "ServerError", "The PlantUML server is unavailable.", http.StatusInternalServerError)
	}
}
