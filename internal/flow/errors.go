package flow

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic checking via errors.Is().
var (
	// ErrParse indicates the document is not valid JSON.
	ErrParse = errors.New("invalid JSON")

	// ErrShape indicates valid JSON whose top level is not an array.
	ErrShape = errors.New("flow must be a JSON array")
)

// ParseError reports malformed JSON. Wraps ErrParse.
type ParseError struct {
	Offset int64 // byte offset of the syntax error, -1 if unknown
	Err    error // underlying decoder error
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return ErrParse.Error()
	}
	return fmt.Sprintf("%s: %v", ErrParse.Error(), e.Err)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// ShapeError reports a top-level value that is not an array. Wraps ErrShape.
type ShapeError struct {
	Got string // JSON kind found instead: "object", "string", "number", ...
}

func (e *ShapeError) Error() string {
	if e == nil || e.Got == "" {
		return ErrShape.Error()
	}
	return fmt.Sprintf("%s (got %s)", ErrShape.Error(), e.Got)
}

func (e *ShapeError) Unwrap() error { return ErrShape }
