package assistant

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Error kinds that are not run statuses.
const (
	KindTimeout     = "timeout"
	KindServerError = "ServerError"
)

// Error is the only failure shape the gateway hands to its callers.
type Error struct {
	Status  int
	Kind    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
}

// RunStatusError reports a run that stopped in a status other than completed.
type RunStatusError struct {
	Status openai.RunStatus
}

func (e *RunStatusError) Error() string {
	return `Run finished with status other than "complete".`
}

func timeoutError(timeout time.Duration) *Error {
	seconds := strconv.FormatFloat(float64(timeout.Milliseconds())/1000, 'f', -1, 64)
	return &Error{
		Status:  http.StatusRequestTimeout,
		Kind:    KindTimeout,
		Message: fmt.Sprintf("The run timed out after %s seconds.", seconds),
	}
}

// normalize maps a raw gateway failure onto the fixed taxonomy.
func normalize(err error) *Error {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr
	}

	var runErr *RunStatusError
	if errors.As(err, &runErr) {
		kind := string(runErr.Status)
		switch runErr.Status {
		case openai.RunStatusRequiresAction:
			return &Error{Status: http.StatusBadRequest, Kind: kind, Message: "The run requires action."}
		case openai.RunStatusExpired:
			return &Error{Status: http.StatusRequestTimeout, Kind: kind, Message: "The run has expired."}
		case openai.RunStatusCancelling, openai.RunStatusCancelled:
			return &Error{Status: http.StatusConflict, Kind: kind, Message: "The run has been cancelled."}
		case openai.RunStatusFailed:
			return &Error{Status: http.StatusInternalServerError, Kind: kind, Message: "The run has failed."}
		}
	}

	message := err.Error()
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}
	return &Error{Status: http.StatusInternalServerError, Kind: KindServerError, Message: message}
}
