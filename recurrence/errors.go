package recurrence

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec is matched by every validation failure of a Spec.
var ErrInvalidSpec = errors.New("invalid recurrence spec")

// SpecError describes which part of a recurrence spec was rejected.
type SpecError struct {
	Field   string
	Value   any
	Message string
}

func newSpecError(field string, value any, message string) *SpecError {
	return &SpecError{Field: field, Value: value, Message: message}
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("%s: %s %v: %s", ErrInvalidSpec, e.Field, e.Value, e.Message)
}

// Is makes errors.Is(err, ErrInvalidSpec) hold for any *SpecError.
func (e *SpecError) Is(target error) bool {
	return target == ErrInvalidSpec
}
