package wordgraph

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is returned when a serialized graph cannot be decoded.
	// Decode errors wrap it, so test with errors.Is.
	ErrInvalidFormat = errors.New("wordgraph: invalid dictionary format")

	// ErrNotSorted is returned by Builder.Add when a word is smaller than the
	// word added before it.
	ErrNotSorted = errors.New("wordgraph: words not in alphabetical order")

	// ErrFinished is returned by Builder.Add once Finish has been called.
	ErrFinished = errors.New("wordgraph: tried to add to a finished builder")

	// ErrUnencodableEdge is returned by Encode when an edge label cannot be
	// represented in the text format. Digits and '/' are reserved by the
	// grammar.
	ErrUnencodableEdge = errors.New("wordgraph: edge label cannot be encoded")
)

// FormatError describes where decoding failed.
type FormatError struct {
	Offset int64 // byte offset of the offending input
	Msg    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v at offset %d: %s", ErrInvalidFormat, e.Offset, e.Msg)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidFormat
}
