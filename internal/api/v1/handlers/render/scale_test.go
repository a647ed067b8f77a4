package render

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleAddScale(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "width and height",
			payload: `{"uml_code": "@startuml\nA -> B\n@enduml", "scale_width": 800, "scale_height": 600}`,
			want:    "@startuml\nA -> B\nscale 800x600\n@enduml",
		},
		{
			name:    "width only with max",
			payload: `{"uml_code": "@startuml\nA -> B\n@enduml", "scale_width": 1024, "max": true}`,
			want:    "@startuml\nA -> B\nscale max 1024 width\n@enduml",
		},
		{
			name:    "zero width falls through to height",
			payload: `{"uml_code": "@startuml\n@enduml", "scale_width": 0, "scale_height": 300}`,
			want:    "@startuml\nscale 300 height\n@enduml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, HandleAddScale, "/add-scale-to-uml", tt.payload)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestHandleAddScaleValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		errType string
		message string
	}{
		{"missing uml_code", `{"scale_width": 800}`, "MissingInput", "uml_code is required as non-empty parameter."},
		{"missing both scales", `{"uml_code": "@startuml\n@enduml"}`, "MissingInput", "At least one of scale_width and scale_height is required as a parameter."},
		{"both scales zero", `{"uml_code": "@startuml\n@enduml", "scale_width": 0, "scale_height": 0}`, "MissingInput", "At least one of scale_width and scale_height is required as a parameter."},
		{"uml_code not string", `{"uml_code": true, "scale_width": 800}`, "InvalidInput", "uml_code must be a string."},
		{"fractional width", `{"uml_code": "@startuml\n@enduml", "scale_width": 800.5}`, "InvalidInput", "scale_width must be an int if it is passed."},
		{"string height", `{"uml_code": "@startuml\n@enduml", "scale_width": 800, "scale_height": "600"}`, "InvalidInput", "scale_height must be an int if it is passed."},
		{"max not boolean", `{"uml_code": "@startuml\n@enduml", "scale_width": 800, "max": 1}`, "InvalidInput", "max must be a boolean (default false)."},
		{"missing enduml", `{"uml_code": "@startuml\nA -> B", "scale_width": 800}`, "MissingEnduml", "@enduml must be present to indicate end of program."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, HandleAddScale, "/add-scale-to-uml", tt.payload)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.errType, resp.Type)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}
