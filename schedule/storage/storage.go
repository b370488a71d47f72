// Package storage persists scheduled instances and applies reconciliation
// plans.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/cyp0633/upkeep/schedule"
)

// Storage persists scheduled instances. Implementations must apply a plan
// atomically: readers never observe the deletes without the inserts.
type Storage interface {
	// ListInstances returns the instances of a work order ordered by due date.
	ListInstances(ctx context.Context, workOrderID string) ([]schedule.Instance, error)
	// ApplyPlan deletes the listed instances that are still pending and inserts
	// the drafts, returning the inserted instances with their new IDs.
	ApplyPlan(ctx context.Context, plan schedule.Plan) ([]schedule.Instance, error)
	// SetStatus moves an instance to another status.
	SetStatus(ctx context.Context, instanceID string, status schedule.Status) error
}

// Error types
type ErrorType string

const (
	ErrNotFound     ErrorType = "not_found"
	ErrInvalidInput ErrorType = "invalid_input"
	ErrConflict     ErrorType = "conflict"
)

// Error represents a storage-related error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a storage not-found error.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrNotFound
}

// ValidateDraft rejects drafts that cannot be stored.
func ValidateDraft(d schedule.Draft) error {
	if d.WorkOrderID == "" {
		return &Error{Type: ErrInvalidInput, Message: "draft has no work order"}
	}
	if d.DueDate.IsZero() {
		return &Error{Type: ErrInvalidInput, Message: "draft has no due date"}
	}
	if !d.Status.Valid() {
		return &Error{Type: ErrInvalidInput, Message: fmt.Sprintf("unknown status %q", d.Status)}
	}
	return nil
}
