// Package schedule turns work orders into scheduled instances and keeps the
// pending ones in line with the work order's recurrence.
package schedule

import (
	"time"

	"github.com/cyp0633/upkeep/recurrence"
)

// Status is the lifecycle state of a scheduled instance.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// Field names a work-order attribute that can change in an update.
type Field string

const (
	FieldFrequency        Field = "frequency"
	FieldCustomOccurrence Field = "custom_occurrence"
	FieldStartDate        Field = "start_date"
	FieldEndDate          Field = "end_date"
	FieldTitle            Field = "title"
	FieldDescription      Field = "description"
	FieldAssignee         Field = "assignee"
)

// recurrenceFields are the fields whose change invalidates pending instances.
var recurrenceFields = map[Field]struct{}{
	FieldFrequency:        {},
	FieldCustomOccurrence: {},
	FieldStartDate:        {},
	FieldEndDate:          {},
}

// WorkOrderView is the read-only projection of a work order needed to
// schedule it.
type WorkOrderView struct {
	ID               string                       `yaml:"id"`
	Title            string                       `yaml:"title,omitempty"`
	Frequency        string                       `yaml:"frequency"`
	StartDate        time.Time                    `yaml:"start_date"`
	EndDate          *time.Time                   `yaml:"end_date,omitempty"`
	CustomOccurrence *recurrence.CustomOccurrence `yaml:"custom_occurrence,omitempty"`
	AssigneeID       string                       `yaml:"assignee_id,omitempty"`
	CreatedBy        string                       `yaml:"created_by,omitempty"`
}

// Spec builds the recurrence spec described by the work order.
func (wo WorkOrderView) Spec() (recurrence.Spec, error) {
	return recurrence.SpecFrom(wo.Frequency, wo.StartDate, wo.EndDate, wo.CustomOccurrence)
}

// Instance is one persisted occurrence of a work order.
type Instance struct {
	ID          string
	WorkOrderID string
	AssigneeID  string
	CreatedBy   string
	Status      Status
	DueDate     time.Time
}

// Draft is an instance that has not been persisted yet.
type Draft struct {
	WorkOrderID string
	AssigneeID  string
	CreatedBy   string
	Status      Status
	DueDate     time.Time
}

// Plan is the outcome of reconciliation. The collaborator deletes and
// creates in one transaction.
type Plan struct {
	Delete []string
	Create []Draft
}

// IsEmpty reports whether applying the plan would change nothing.
func (p Plan) IsEmpty() bool {
	return len(p.Delete) == 0 && len(p.Create) == 0
}
