package okato

import (
	"errors"
	"fmt"
)

// Error kinds that abort an import run.
var (
	ErrInputAccess     = errors.New("input file not accessible")
	ErrMalformedRecord = errors.New("malformed record")
	ErrPersistence     = errors.New("persistence failed")
)

// RecordError ties a failure to the 1-based ordinal of the record that
// caused it.
type RecordError struct {
	Ordinal int64
	Kind    error
	Err     error
}

func (e *RecordError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("record %d: %v", e.Ordinal, e.Kind)
	}
	return fmt.Sprintf("record %d: %v: %v", e.Ordinal, e.Kind, e.Err)
}

func (e *RecordError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
