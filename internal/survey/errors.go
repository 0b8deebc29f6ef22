package survey

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("survey config invalid")
	ErrMapping    = errors.New("survey mapping failed")
	ErrEncoding   = errors.New("answer encoding failed")
)

// ValidationError reports the first field that failed schema checks
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// MappingError is returned when a raw definition cannot be mapped at all
type MappingError struct {
	Reason string
}

func (e *MappingError) Error() string {
	return "survey mapping: " + e.Reason
}

func (e *MappingError) Is(target error) bool {
	return target == ErrMapping
}

// EncodingError means a validated question has no identifier for the selected answer.
// This indicates validator and mapper disagree; it is never a "no answer" outcome.
type EncodingError struct {
	QuestionID string
	Reason     string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("question %s: %s", e.QuestionID, e.Reason)
}

func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
