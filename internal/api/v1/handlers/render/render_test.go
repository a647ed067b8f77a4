package render

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/umlforge/umlforge/internal/infrastructure/plantuml"
	"github.com/umlforge/umlforge/pkg/httpext"
)

// MockRenderer mocks the PlantUML render client
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, source string, format plantuml.Format) ([]byte, error) {
	args := m.Called(source, format)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockRenderer) Timeout() time.Duration {
	return 5 * time.Second
}

func postJSON(t *testing.T, handler func(http.ResponseWriter, *http.Request), path, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httpext.ErrorResponse {
	t.Helper()
	var resp httpext.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

const source = "@startuml\nA -> B\n@enduml"

func TestHandleFetchPlantUMLValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		errType string
		message string
	}{
		{"missing uml_code", `{"response_type": "SVG"}`, "MissingInput", "Both uml_code and response_type are required as non-empty parameters."},
		{"empty response_type", `{"uml_code": "x", "response_type": ""}`, "MissingInput", "Both uml_code and response_type are required as non-empty parameters."},
		{"uml_code not string", `{"uml_code": 12, "response_type": "SVG"}`, "InvalidInput", "uml_code must be a string."},
		{"bad response_type", `{"uml_code": "x", "response_type": "JPG"}`, "InvalidInput", `response_type must be "SVG" or "PNG".`},
		{"lowercase response_type", `{"uml_code": "x", "response_type": "svg"}`, "InvalidInput", `response_type must be "SVG" or "PNG".`},
		{"return_as_uri not boolean", `{"uml_code": "x", "response_type": "PNG", "return_as_uri": "yes"}`, "InvalidInput", "return_as_uri must be a boolean (default false)."},
		{"malformed", `{"uml_code":`, "InvalidInput", "Invalid request format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := new(MockRenderer)
			w := postJSON(t, func(w http.ResponseWriter, r *http.Request) {
				HandleFetchPlantUML(renderer, w, r)
			}, "/fetch-plant-uml", tt.payload)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.errType, resp.Type)
			assert.Equal(t, tt.message, resp.Message)
			renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleFetchPlantUMLRawBytes(t *testing.T) {
	renderer := new(MockRenderer)
	renderer.On("Render", source, plantuml.FormatPNG).Return([]byte("PNG DATA"), nil)

	w := postJSON(t, func(w http.ResponseWriter, r *http.Request) {
		HandleFetchPlantUML(renderer, w, r)
	}, "/fetch-plant-uml", `{"uml_code": "@startuml\nA -> B\n@enduml", "response_type": "PNG"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "PNG DATA", w.Body.String())
	renderer.AssertExpectations(t)
}

func TestHandleFetchPlantUMLDataURI(t *testing.T) {
	renderer := new(MockRenderer)
	renderer.On("Render", source, plantuml.FormatSVG).Return([]byte("SVG DATA"), nil)

	w := postJSON(t, func(w http.ResponseWriter, r *http.Request) {
		HandleFetchPlantUML(renderer, w, r)
	}, "/fetch-plant-uml", `{"uml_code": "@startuml\nA -> B\n@enduml", "response_type": "SVG", "return_as_uri": true}`)

	require.Equal(t, http.StatusOK, w.Code)
	uri := w.Body.String()
	require.True(t, strings.HasPrefix(uri, "data:image/svg+xml;base64,"), uri)

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/svg+xml;base64,"))
	require.NoError(t, err)
	assert.Equal(t, "SVG DATA", string(decoded))
}

func TestHandleFetchPlantUMLRenderErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		errType string
		message string
	}{
		{"timeout", &plantuml.RenderError{Kind: plantuml.KindTimeout}, http.StatusRequestTimeout, "TimeoutError", "The request timed out after 5 seconds."},
		{"invalid uml", &plantuml.RenderError{Kind: plantuml.KindInvalidUML, StatusCode: 400}, http.StatusBadRequest, "InvalidUMLCodeError", "The provided UML code is not valid."},
		{"unavailable", &plantuml.RenderError{Kind: plantuml.KindUnavailable, StatusCode: 502}, http.StatusInternalServerError, "ServerError", "The PlantUML server is unavailable."},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "ServerError", "The PlantUML server is unavailable."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := new(MockRenderer)
			renderer.On("Render", "x", plantuml.FormatSVG).Return(nil, tt.err)

			w := postJSON(t, func(w http.ResponseWriter, r *http.Request) {
				HandleFetchPlantUML(renderer, w, r)
			}, "/fetch-plant-uml", `{"uml_code": "x", "response_type": "SVG"}`)

			assert.Equal(t, tt.code, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.errType, resp.Type)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}
