package httpext

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
)

// ErrNotObject is returned by DecodeBody when the payload is valid JSON
// but not an object.
var ErrNotObject = errors.New("request body must be a JSON object")

// Body is a loosely typed JSON object. The orchestration routes check
// presence, truthiness and type of each field separately, so they cannot
// decode straight into a struct.
type Body map[string]interface{}

// DecodeBody reads r's JSON object. An empty body decodes to an empty Body.
func DecodeBody(r *http.Request) (Body, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Body{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, ErrNotObject
	}
	return Body(obj), nil
}

// Present reports whether key was sent, including an explicit null.
func (b Body) Present(key string) bool {
	_, ok := b[key]
	return ok
}

// Null reports whether key is absent or null.
func (b Body) Null(key string) bool {
	return b[key] == nil
}

// Truthy reports whether the value for key is not absent, null, false,
// zero or the empty string.
func (b Body) Truthy(key string) bool {
	switch v := b[key].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0 && !math.IsNaN(f)
	default:
		return true
	}
}

// String returns the value for key if it is a JSON string.
func (b Body) String(key string) (string, bool) {
	s, ok := b[key].(string)
	return s, ok
}

// Int returns the value for key if it is an integral JSON number.
// 5.0 counts as an integer, 5.5 does not.
func (b Body) Int(key string) (int, bool) {
	n, ok := b[key].(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return int(i), true
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// Bool returns the value for key if it is a JSON boolean.
func (b Body) Bool(key string) (bool, bool) {
	v, ok := b[key].(bool)
	return v, ok
}
