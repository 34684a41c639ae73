package main

import (
	"errors"

	"github.com/hazyhaar/okato-places/pkg/okato"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK          = 0
	exitFailure     = 1
	exitMalformed   = 2
	exitInput       = 3
	exitPersistence = 4
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// exitCode prefers an explicit cliError code, then the okato error kind.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	switch {
	case errors.Is(err, okato.ErrInputAccess):
		return exitInput
	case errors.Is(err, okato.ErrMalformedRecord):
		return exitMalformed
	case errors.Is(err, okato.ErrPersistence):
		return exitPersistence
	}
	return exitFailure
}
