package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrExhausted  = errors.New("generation attempts exhausted")
)

// ExhaustedError reports a batch that ran out of generation attempts.
// Generated counts the items accepted before the budget ran out, so the
// caller can decide whether a partial batch is acceptable.
type ExhaustedError struct {
	Requested int
	Generated int
	Attempts  int
	Last      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("generated %d of %d items before exhausting %d attempts: %v",
		e.Generated, e.Requested, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return ErrExhausted }
