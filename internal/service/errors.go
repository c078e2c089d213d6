package service

import (
	"errors"
	"fmt"
)

var (
	// ErrSummaryNotFound means no precomputed row exists for the key;
	// recoverable by regeneration.
	ErrSummaryNotFound = errors.New("summary not found")

	// ErrDataCorruption means a persisted sub-document failed to decode.
	ErrDataCorruption = errors.New("summary data corrupted")

	// ErrGenerationTimeout means regeneration exceeded its wall-clock budget
	// and nothing was persisted.
	ErrGenerationTimeout = errors.New("summary generation timed out")

	// ErrResourceExhausted means the resource guard refused to start a
	// regeneration.
	ErrResourceExhausted = errors.New("insufficient memory for summary generation")

	// ErrFallbackExhausted means every tier of the fallback chain failed,
	// including live aggregation.
	ErrFallbackExhausted = errors.New("all analytics fallbacks failed")
)

const (
	GenerationStepCreate = "create"
	GenerationStepUpdate = "update"
)

// GenerationError wraps a failed regeneration attempt and records whether
// the attempt was creating a fresh row or replacing an existing one.
type GenerationError struct {
	Step string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("summary generation failed (%s): %v", e.Step, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
