// Package query serves the assistant-backed code generator and examiner
// routes.
package query

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/umlforge/umlforge/internal/services/assistant"
	"github.com/umlforge/umlforge/pkg/httpext"
	"github.com/umlforge/umlforge/pkg/umltext"
)

const (
	generatorTimeout = 60000
	examinerTimeout  = 10000
)

// Assistant runs one prompt against a configured assistant.
type Assistant interface {
	Call(ctx context.Context, assistantID, prompt string, timeout time.Duration) (string, error)
}

// GeneratorResponse is a generator reply split around its UML block.
type GeneratorResponse struct {
	PreCode  string `json:"pre_code"`
	UMLCode  string `json:"uml_code"`
	PostCode string `json:"post_code"`
}

func decode(w http.ResponseWriter, r *http.Request) (httpext.Body, bool) {
	body, err := httpext.DecodeBody(r)
	if err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "InvalidInput", "Invalid request format", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

// timeoutMs reads an optional integer timeout in milliseconds.
func timeoutMs(body httpext.Body, def int) (time.Duration, bool) {
	if !body.Present("timeout") {
		return time.Duration(def) * time.Millisecond, true
	}
	ms, ok := body.Int("timeout")
	if !ok {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}

func writeAssistantError(w http.ResponseWriter, err error) {
	var gwErr *assistant.Error
	if !errors.As(err, &gwErr) {
		gwErr = &assistant.Error{Status: http.StatusInternalServerError, Kind: assistant.KindServerError, Message: err.Error()}
	}
	httpext.JsonError(w, gwErr.Kind, gwErr.Message, gwErr.Status)
}

// HandleCodeGenerator asks the generator assistant for new or changed
// PlantUML and returns the reply split around the first UML block.
func HandleCodeGenerator(a Assistant, assistantID string, w http.ResponseWriter, r *http.Request) {
	body, ok := decode(w, r)
	if !ok {
		return
	}

	if !body.Truthy("prompt") {
		httpext.JsonError(w, "MissingInput", "prompt is required as non-empty parameter.", http.StatusBadRequest)
		return
	}

	var source string
	if !body.Null("uml_code") {
		if source, ok = body.String("uml_code"); !ok {
			httpext.JsonError(w, "InvalidInput", "uml_code must be a string if it is passed.", http.StatusBadRequest)
			return
		}
	}

	prompt, ok := body.String("prompt")
	if !ok {
		httpext.JsonError(w, "InvalidInput", "prompt must be a string.", http.StatusBadRequest)
		return
	}

	timeout, ok := timeoutMs(body, generatorTimeout)
	if !ok {
		httpext.JsonError(w, "InvalidInput", "timeout must be an int if it is passed.", http.StatusBadRequest)
		return
	}

	log.Info().
		Bool("has_source", source != "").
		Dur("timeout", timeout).
		Str("client_ip", r.RemoteAddr).
		Msg("Received code generator request")

	reply, err := a.Call(r.Context(), assistantID, GeneratorPrompt(source, prompt), timeout)
	if err != nil {
		writeAssistantError(w, err)
		return
	}

	segments := umltext.SplitReply(reply)
	if !segments.HasUML() {
		log.Warn().Int("reply_length", len(reply)).Msg("Generator reply has no UML block")
		httpext.JsonError(w, "MissingSourceCode", "Missing or incomplete source code message generated.", http.StatusInternalServerError)
		return
	}

	httpext.Json(w, http.StatusOK, GeneratorResponse{
		PreCode:  segments.PreText,
		UMLCode:  segments.UMLBlock,
		PostCode: segments.PostText,
	})
}

// HandleCodeExaminer asks the examiner assistant a question about the
// supplied PlantUML and returns its reply as text.
func HandleCodeExaminer(a Assistant, assistantID string, w http.ResponseWriter, r *http.Request) {
	body, ok := decode(w, r)
	if !ok {
		return
	}

	if !body.Truthy("uml_code") {
		httpext.JsonError(w, "MissingInput", "uml_code is required as non-empty parameter.", http.StatusBadRequest)
		return
	}
	if !body.Truthy("query") {
		httpext.JsonError(w, "MissingInput", "query is required as non-empty parameter.", http.StatusBadRequest)
		return
	}

	source, ok := body.String("uml_code")
	if !ok {
		httpext.JsonError(w, "InvalidInput", "uml_code must be a string.", http.StatusBadRequest)
		return
	}
	question, ok := body.String("query")
	if !ok {
		httpext.JsonError(w, "InvalidInput", "query must be a string.", http.StatusBadRequest)
		return
	}

	timeout, ok := timeoutMs(body, examinerTimeout)
	if !ok {
		httpext.JsonError(w, "InvalidInput", "timeout must be an int if it is passed.", http.StatusBadRequest)
		return
	}

	log.Info().
		Dur("timeout", timeout).
		Str("client_ip", r.RemoteAddr).
		Msg("Received code examiner request")

	reply, err := a.Call(r.Context(), assistantID, ExaminerPrompt(source, question), timeout)
	if err != nil {
		writeAssistantError(w, err)
		return
	}

	httpext.Text(w, http.StatusOK, reply)
}
