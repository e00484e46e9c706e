package model

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord is returned when a fix record cannot be decoded.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrEmptySequence is returned when a statistic needs at least one point.
	ErrEmptySequence = errors.New("empty sequence")
	// ErrInvalidConfiguration is returned for out-of-range analysis settings.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// RecordError describes a fix record that failed to decode.
type RecordError struct {
	Line   int
	Record string
	Field  string
	Err    error
}

func (e *RecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: invalid %s: %v", e.Line, ErrMalformedRecord, e.Field, e.Err)
	}
	return fmt.Sprintf("line %d: %s: invalid %s", e.Line, ErrMalformedRecord, e.Field)
}

// Unwrap lets errors.Is match both ErrMalformedRecord and the cause.
func (e *RecordError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedRecord}
	}
	return []error{ErrMalformedRecord, e.Err}
}
