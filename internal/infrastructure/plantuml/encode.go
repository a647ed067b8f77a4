package plantuml

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"fmt"
	"io"
)

// PlantUML's URL alphabet: same bit layout as base64, different characters.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

var encoding = base64.NewEncoding(alphabet).WithPadding(base64.NoPadding)

// Encode compresses source with raw DEFLATE and maps it onto the PlantUML
// alphabet. A trailing partial group is zero-filled to four characters,
// matching the reference encoder.
func Encode(source string) (string, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("creating deflate writer: %w", err)
	}
	if _, err := io.WriteString(w, source); err != nil {
		return "", fmt.Errorf("compressing source: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("compressing source: %w", err)
	}

	data := buf.Bytes()
	if rem := len(data) % 3; rem != 0 {
		data = append(data, make([]byte, 3-rem)...)
	}
	return encoding.EncodeToString(data), nil
}

// Decode reverses Encode.
func Decode(encoded string) (string, error) {
	data, err := encoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decoding text: %w", err)
	}

	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("inflating text: %w", err)
	}
	return string(out), nil
}
