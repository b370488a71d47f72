package schedule

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
)

// ErrNoInstances is returned when exporting an empty schedule.
var ErrNoInstances = errors.New("no scheduled instances to export")

const productID = "-//Upkeep//Work Order Schedule//EN"

var icalStatus = map[Status]string{
	StatusPending:    "NEEDS-ACTION",
	StatusInProgress: "IN-PROCESS",
	StatusDone:       "COMPLETED",
	StatusCancelled:  "CANCELLED",
}

// NewCalendar renders the instances of a work order as VTODO components, one
// per due date.
func NewCalendar(wo WorkOrderView, instances []Instance, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	summary := wo.Title
	if summary == "" {
		summary = wo.ID
	}

	for _, inst := range instances {
		todo := ical.NewComponent(ical.CompToDo)
		todo.Props.SetText(ical.PropUID, inst.ID)
		todo.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
		todo.Props.SetText(ical.PropSummary, summary)
		todo.Props.SetDateTime(ical.PropDue, inst.DueDate)
		todo.Props.SetText(ical.PropRelatedTo, inst.WorkOrderID)
		if status, ok := icalStatus[inst.Status]; ok {
			todo.Props.SetText(ical.PropStatus, status)
		}
		cal.Children = append(cal.Children, todo)
	}
	return cal
}

// ExportICS encodes the calendar built by NewCalendar.
func ExportICS(wo WorkOrderView, instances []Instance, now time.Time) (string, error) {
	if len(instances) == 0 {
		return "", ErrNoInstances
	}
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(NewCalendar(wo, instances, now)); err != nil {
		return "", fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.String(), nil
}
