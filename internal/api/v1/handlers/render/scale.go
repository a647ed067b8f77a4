package render

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/umlforge/umlforge/pkg/httpext"
	"github.com/umlforge/umlforge/pkg/umltext"
)

// HandleAddScale inserts a scale directive before @enduml and returns the
// modified source as text.
func HandleAddScale(w http.ResponseWriter, r *http.Request) {
	body, err := httpext.DecodeBody(r)
	if err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "InvalidInput", "Invalid request format", http.StatusBadRequest)
		return
	}

	if !body.Truthy("uml_code") {
		httpext.JsonError(w, "MissingInput", "uml_code is required as non-empty parameter.", http.StatusBadRequest)
		return
	}
	if !body.Truthy("scale_width") && !body.Truthy("scale_height") {
		httpext.JsonError(w, "MissingInput", "At least one of scale_width and scale_height is required as a parameter.", http.StatusBadRequest)
		return
	}

	source, ok := body.String("uml_code")
	if !ok {
		httpext.JsonError(w, "InvalidInput", "uml_code must be a string.", http.StatusBadRequest)
		return
	}

	var width, height int
	if body.Present("scale_width") {
		if width, ok = body.Int("scale_width"); !ok {
			httpext.JsonError(w, "InvalidInput", "scale_width must be an int if it is passed.", http.StatusBadRequest)
			return
		}
	}
	if body.Present("scale_height") {
		if height, ok = body.Int("scale_height"); !ok {
			httpext.JsonError(w, "InvalidInput", "scale_height must be an int if it is passed.", http.StatusBadRequest)
			return
		}
	}

	max := false
	if body.Present("max") {
		if max, ok = body.Bool("max"); !ok {
			httpext.JsonError(w, "InvalidInput", "max must be a boolean (default false).", http.StatusBadRequest)
			return
		}
	}

	scaled, err := umltext.InsertScale(source, width, height, max)
	if errors.Is(err, umltext.ErrMissingEnduml) {
		httpext.JsonError(w, "MissingEnduml", "@enduml must be present to indicate end of program.", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to insert scale")
		httpext.JsonError(w, "ServerError", err.Error(), http.StatusInternalServerError)
		return
	}

	httpext.Text(w, http.StatusOK, scaled)
}
