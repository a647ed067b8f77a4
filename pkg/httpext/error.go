package httpext

import (
	"encoding/json"
	"net/http"

	"github.com/umlforge/umlforge/pkg/logger"
)

// ErrorResponse represents a standardised JSON error response
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// JsonError writes a JSON error response with the specified status code
func JsonError(w http.ResponseWriter, errType, message string, code int) {
	JsonErrorWithDetails(w, code, ErrorResponse{Type: errType, Message: message})
}

// JsonErrorWithDetails writes a prepared error response with the specified status code
func JsonErrorWithDetails(w http.ResponseWriter, code int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error(logger.HANDLER, "Failed to encode error response: %v", err)
		return
	}
}

// TextError writes a plain-text error body. The diagram library routes
// answer failures this way.
func TextError(w http.ResponseWriter, message string, code int) {
	Text(w, code, message)
}

// Text writes body as text/plain with the given status code
func Text(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write([]byte(body)); err != nil {
		logger.Error(logger.HANDLER, "Failed to write text response: %v", err)
	}
}

// Json encodes v as the response body with the given status code
func Json(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(logger.HANDLER, "Failed to encode response: %v", err)
	}
}
