package metrics

import (
	"errors"
	"fmt"
)

// ErrDataUnavailable means the ledger could not be read. Callers must treat it as
// "metrics unknown", never as zero.
var ErrDataUnavailable = errors.New("metrics: data unavailable")

// ErrMalformedRecord marks a record skipped by an aggregation.
var ErrMalformedRecord = errors.New("metrics: malformed record")

// UnavailableError wraps a datastore failure for one ledger source.
type UnavailableError struct {
	Source string
	Err    error
}

// Unavailable wraps err as a data-unavailable failure of source.
func Unavailable(source string, err error) error {
	return &UnavailableError{Source: source, Err: err}
}

func (e *UnavailableError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("metrics: %s unavailable", e.Source)
	}
	return fmt.Sprintf("metrics: %s unavailable: %v", e.Source, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches ErrDataUnavailable.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrDataUnavailable
}

// MalformedRecordError describes a record missing a required field.
type MalformedRecordError struct {
	Index int
	Field string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("metrics: record %d: invalid %s", e.Index, e.Field)
}

// Is matches ErrMalformedRecord.
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
