package capture

import (
	"errors"
	"fmt"

	"keytap/internal/core/model"
)

var (
	// ErrInvalidDuration indicates a window duration outside the accepted range.
	ErrInvalidDuration = errors.New("window duration out of range")

	// ErrInvalidTargetCount indicates a tap count outside the accepted range.
	ErrInvalidTargetCount = errors.New("target count out of range")

	// ErrStateUnavailable indicates a capture operation aborted inside the critical section.
	ErrStateUnavailable = errors.New("capture state unavailable")
)

// ValidationError describes a rejected Begin request.
type ValidationError struct {
	Field string
	Value int64
	Min   int64
	Max   int64
	Err   error
}

func (validationErr *ValidationError) Error() string {
	return fmt.Sprintf("%s %d not in [%d, %d]: %v", validationErr.Field, validationErr.Value, validationErr.Min, validationErr.Max, validationErr.Err)
}

func (validationErr *ValidationError) Unwrap() error {
	return validationErr.Err
}

func invalidDuration(valueMs int64) *ValidationError {
	return &ValidationError{
		Field: "duration_ms",
		Value: valueMs,
		Min:   model.MinWindowDuration.Milliseconds(),
		Max:   model.MaxWindowDuration.Milliseconds(),
		Err:   ErrInvalidDuration,
	}
}

func invalidTargetCount(value int) *ValidationError {
	return &ValidationError{
		Field: "target_count",
		Value: int64(value),
		Min:   model.MinTargetCount,
		Max:   model.MaxTargetCount,
		Err:   ErrInvalidTargetCount,
	}
}

// IsValidation reports whether err is a rejected Begin request.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

type panicError struct {
	op        string
	recovered any
	stack     []byte
}

func (panicErr *panicError) Error() string {
	return fmt.Sprintf("%s: recovered panic: %v", panicErr.op, panicErr.recovered)
}

func (panicErr *panicError) Unwrap() error {
	return ErrStateUnavailable
}
