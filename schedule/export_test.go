package schedule

import (
	"strings"
	"testing"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportICS(t *testing.T) {
	wo := dailyWorkOrder()
	instances := []Instance{
		{ID: "i-1", WorkOrderID: wo.ID, Status: StatusDone, DueDate: day(2019, 2, 20)},
		{ID: "i-2", WorkOrderID: wo.ID, Status: StatusPending, DueDate: day(2019, 2, 21)},
	}

	out, err := ExportICS(wo, instances, now)
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")

	cal, err := ical.NewDecoder(strings.NewReader(out)).Decode()
	require.NoError(t, err)

	var todos []*ical.Component
	for _, child := range cal.Children {
		if child.Name == ical.CompToDo {
			todos = append(todos, child)
		}
	}
	require.Len(t, todos, 2)

	assert.Equal(t, "i-1", todos[0].Props.Get(ical.PropUID).Value)
	assert.Equal(t, "COMPLETED", todos[0].Props.Get(ical.PropStatus).Value)
	assert.Equal(t, "NEEDS-ACTION", todos[1].Props.Get(ical.PropStatus).Value)
	assert.Equal(t, wo.Title, todos[1].Props.Get(ical.PropSummary).Value)
	assert.Equal(t, wo.ID, todos[1].Props.Get(ical.PropRelatedTo).Value)

	due, err := todos[1].Props.DateTime(ical.PropDue, nil)
	require.NoError(t, err)
	assert.True(t, due.Equal(day(2019, 2, 21)))
}

func TestExportICS_Empty(t *testing.T) {
	_, err := ExportICS(dailyWorkOrder(), nil, now)
	assert.ErrorIs(t, err, ErrNoInstances)
}

func TestNewCalendar_SummaryFallsBackToID(t *testing.T) {
	wo := dailyWorkOrder()
	wo.Title = ""

	cal := NewCalendar(wo, []Instance{{ID: "i-1", WorkOrderID: wo.ID, DueDate: day(2019, 2, 20)}}, now)
	require.Len(t, cal.Children, 1)
	assert.Equal(t, "wo-1", cal.Children[0].Props.Get(ical.PropSummary).Value)
	assert.Nil(t, cal.Children[0].Props.Get(ical.PropStatus))
}
