package domain

import (
	"errors"
	"fmt"
)

// ErrAccountNotFound is returned when a referenced account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// ErrTokenExpired is returned when a stored credential is already past its
// expiry and requires manual reauthorization.
var ErrTokenExpired = errors.New("access token expired, manual reauthorization required")

// TranscriptionError wraps a failure while obtaining source content.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// GenerationError wraps a content generation failure with the stage it occurred in.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
