package httpext

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, payload string) Body {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(payload))
	body, err := DecodeBody(req)
	require.NoError(t, err)
	return body
}

func TestDecodeBodyEmpty(t *testing.T) {
	body := decode(t, "   ")
	assert.Empty(t, body)
}

func TestDecodeBodyRejectsNonObject(t *testing.T) {
	_, err := DecodeBody(httptest.NewRequest("POST", "/", strings.NewReader(`[1, 2]`)))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = DecodeBody(httptest.NewRequest("POST", "/", strings.NewReader(`{"a":`)))
	assert.Error(t, err)
}

func TestBodyTruthy(t *testing.T) {
	body := decode(t, `{"zero": 0, "zerof": 0.0, "one": 1, "empty": "", "s": "x", "f": false, "t": true, "null": null, "arr": [], "obj": {}}`)

	tests := map[string]bool{
		"zero":    false,
		"zerof":   false,
		"one":     true,
		"empty":   false,
		"s":       true,
		"f":       false,
		"t":       true,
		"null":    false,
		"missing": false,
		"arr":     true,
		"obj":     true,
	}
	for key, want := range tests {
		assert.Equal(t, want, body.Truthy(key), key)
	}
}

func TestBodyInt(t *testing.T) {
	body := decode(t, `{"i": 800, "whole": 5.0, "frac": 5.5, "s": "5", "neg": -3}`)

	i, ok := body.Int("i")
	assert.True(t, ok)
	assert.Equal(t, 800, i)

	i, ok = body.Int("whole")
	assert.True(t, ok)
	assert.Equal(t, 5, i)

	i, ok = body.Int("neg")
	assert.True(t, ok)
	assert.Equal(t, -3, i)

	_, ok = body.Int("frac")
	assert.False(t, ok)
	_, ok = body.Int("s")
	assert.False(t, ok)
	_, ok = body.Int("missing")
	assert.False(t, ok)
}

func TestBodyPresentAndNull(t *testing.T) {
	body := decode(t, `{"n": null, "v": "x"}`)

	assert.True(t, body.Present("n"))
	assert.True(t, body.Null("n"))
	assert.True(t, body.Present("v"))
	assert.False(t, body.Null("v"))
	assert.False(t, body.Present("missing"))
	assert.True(t, body.Null("missing"))
}
