package handlers

import (
	"net/http"

	"github.com/umlforge/umlforge/pkg/httpext"
)

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	httpext.Json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleTest answers the legacy liveness probe.
func HandleTest(w http.ResponseWriter, r *http.Request) {
	httpext.Text(w, http.StatusOK, "Test route")
}
