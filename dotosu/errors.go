package dotosu

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingHeader indicates the first meaningful line is not an "osu file format vN" header.
	ErrMissingHeader = errors.New("dotosu: missing \"osu file format v<N>\" header")
	// ErrInvalidVersion indicates the header carries a version that is not a non-negative integer.
	ErrInvalidVersion = errors.New("dotosu: invalid format version")
	// ErrInvalidNumber indicates a required numeric field could not be parsed.
	ErrInvalidNumber = errors.New("dotosu: invalid numeric field")
	// ErrInvalidObjectType indicates a hit object type tag with no shape bit or more than one.
	ErrInvalidObjectType = errors.New("dotosu: hit object type must set exactly one shape bit")
	// ErrTooFewControlPoints indicates a slider with fewer than two control points.
	ErrTooFewControlPoints = errors.New("dotosu: slider needs at least two control points")
	// ErrInvalidControlPoint indicates a malformed "x:y" slider control point.
	ErrInvalidControlPoint = errors.New("dotosu: malformed slider control point")
	// ErrInvalidRepeatCount indicates a missing slider repeat count or one below 1.
	ErrInvalidRepeatCount = errors.New("dotosu: slider repeat count must be at least 1")
	// ErrInvalidSpinnerDuration indicates a spinner or hold whose end time is not after its start.
	ErrInvalidSpinnerDuration = errors.New("dotosu: end time must be after start time")
	// ErrNoHitObjects indicates a chart without any hit object.
	ErrNoHitObjects = errors.New("dotosu: beatmap has no hit objects")
)

// FormatError is returned for structural corruption. It carries the section
// and the 1-based source line the decoder was looking at; Line is 0 when the
// failure is not tied to a single line.
type FormatError struct {
	Section string
	Line    int
	Err     error
}

func (e *FormatError) Error() string {
	switch {
	case e.Section != "" && e.Line > 0:
		return fmt.Sprintf("[%s] line %d: %v", e.Section, e.Line, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	case e.Section != "":
		return fmt.Sprintf("[%s]: %v", e.Section, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatErr(l rawLine, err error, format string, args ...any) *FormatError {
	if format != "" {
		err = fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
	}
	return &FormatError{Section: l.Section, Line: l.Number, Err: err}
}

// Warning is a recoverable anomaly met while decoding. The decoder keeps going
// after recording it.
type Warning struct {
	Section string
	Line    int
	Message string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s", w.Section, w.Line, w.Message)
	}
	return fmt.Sprintf("[%s]: %s", w.Section, w.Message)
}
