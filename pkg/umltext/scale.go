// Package umltext manipulates PlantUML source text.
package umltext

import (
	"errors"
	"strconv"
	"strings"
)

const endMarker = "@enduml"

var (
	// ErrMissingEnduml is returned when the source has no line that is exactly @enduml once trimmed.
	ErrMissingEnduml = errors.New("@enduml must be present to indicate end of program")
	// ErrMissingScale is returned when neither a width nor a height was supplied.
	ErrMissingScale = errors.New("at least one of width and height is required")
)

// ScaleCommand builds a PlantUML scale directive. A zero width or height
// counts as not provided.
func ScaleCommand(width, height int, max bool) (string, error) {
	if width == 0 && height == 0 {
		return "", ErrMissingScale
	}

	cmd := "scale "
	if max {
		cmd = "scale max "
	}

	switch {
	case width != 0 && height != 0:
		cmd += strconv.Itoa(width) + "x" + strconv.Itoa(height)
	case width != 0:
		cmd += strconv.Itoa(width) + " width"
	default:
		cmd += strconv.Itoa(height) + " height"
	}
	return cmd, nil
}

// InsertScale inserts a scale directive on its own line directly before the
// first @enduml line. Nothing else in the source is touched.
func InsertScale(source string, width, height int, max bool) (string, error) {
	cmd, err := ScaleCommand(width, height, max)
	if err != nil {
		return "", err
	}

	lines := strings.Split(source, "\n")
	end := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == endMarker {
			end = i
			break
		}
	}
	if end == -1 {
		return "", ErrMissingEnduml
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:end]...)
	out = append(out, cmd)
	out = append(out, lines[end:]...)
	return strings.Join(out, "\n"), nil
}
