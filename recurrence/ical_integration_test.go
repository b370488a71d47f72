package recurrence

import (
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTodo(start time.Time, rule string) *ical.Component {
	comp := ical.NewComponent(ical.CompToDo)
	comp.Props.SetText(ical.PropUID, "wo-1")
	comp.Props.SetDateTime(ical.PropDateTimeStart, start)
	if rule != "" {
		prop := ical.NewProp(ical.PropRecurrenceRule)
		prop.Value = rule
		comp.Props.Set(prop)
	}
	return comp
}

func TestExtractSpecFromComponent(t *testing.T) {
	t.Run("no rrule is no repeat", func(t *testing.T) {
		spec, err := ExtractSpecFromComponent(newTodo(date(2018, 12, 12), ""))
		require.NoError(t, err)
		assert.Equal(t, ModeNoRepeat, spec.Mode)
		assert.True(t, spec.Start.Equal(date(2018, 12, 12)))
	})

	t.Run("weekly by day until", func(t *testing.T) {
		comp := newTodo(date(2019, 2, 20), "FREQ=WEEKLY;BYDAY=TU,TH;UNTIL=20190325T000000Z")

		spec, err := ExtractSpecFromComponent(comp)
		require.NoError(t, err)
		require.NotNil(t, spec.Custom)
		assert.Equal(t, ModeCustom, spec.Mode)
		assert.Equal(t, FrequencyWeekly, spec.Custom.RepeatFrequency)
		assert.Equal(t, []time.Weekday{time.Tuesday, time.Thursday}, spec.Custom.RepeatDays)
		assert.True(t, spec.Custom.Ends.On.MustGet().Equal(date(2019, 3, 25)))

		dates, err := GenerateDates(spec, fixedNow)
		require.NoError(t, err)
		assert.Len(t, dates, 9)
	})

	t.Run("monthly count with interval", func(t *testing.T) {
		spec, err := ExtractSpecFromComponent(newTodo(date(2019, 1, 15), "FREQ=MONTHLY;INTERVAL=2;COUNT=3"))
		require.NoError(t, err)
		assert.Equal(t, 2, spec.Custom.RepeatUnits)
		assert.Equal(t, 3, spec.Custom.Ends.After.MustGet())

		dates, err := GenerateDates(spec, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, []string{"2019-01-15", "2019-03-15", "2019-05-15"}, days(dates))
	})

	t.Run("open ended is never", func(t *testing.T) {
		spec, err := ExtractSpecFromComponent(newTodo(date(2019, 1, 1), "FREQ=DAILY"))
		require.NoError(t, err)
		assert.True(t, spec.Custom.Ends.Never)
	})

	t.Run("hourly is rejected", func(t *testing.T) {
		_, err := ExtractSpecFromComponent(newTodo(date(2019, 1, 1), "FREQ=HOURLY;COUNT=2"))
		assert.ErrorIs(t, err, ErrInvalidSpec)
	})

	for _, rule := range []string{
		"FREQ=MONTHLY;BYDAY=2TU",
		"FREQ=MONTHLY;BYMONTHDAY=15,30",
		"FREQ=MONTHLY;BYDAY=MO,TU,WE,TH,FR;BYSETPOS=-1",
		"FREQ=YEARLY;BYMONTH=3",
		"FREQ=DAILY;BYDAY=MO,FR",
		"FREQ=WEEKLY;BYHOUR=9,17",
	} {
		t.Run("rejects "+rule, func(t *testing.T) {
			_, err := ExtractSpecFromComponent(newTodo(date(2019, 1, 1), rule))
			assert.ErrorIs(t, err, ErrInvalidSpec)
		})
	}

	t.Run("missing dtstart", func(t *testing.T) {
		comp := ical.NewComponent(ical.CompEvent)
		_, err := ExtractSpecFromComponent(comp)
		assert.ErrorIs(t, err, ErrInvalidSpec)
	})
}

func TestNewRecurringComponent(t *testing.T) {
	n := 5
	spec, err := SpecFrom("custom", date(2019, 2, 20), nil, &CustomOccurrence{
		RepeatFrequency: "yearly",
		EndsAfter:       &n,
	})
	require.NoError(t, err)

	comp, err := NewRecurringComponent("wo-7", "Replace filters", spec, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, ical.CompToDo, comp.Name)

	rule := comp.Props.Get(ical.PropRecurrenceRule)
	require.NotNil(t, rule)
	assert.Contains(t, rule.Value, "FREQ=YEARLY")
	assert.Contains(t, rule.Value, "COUNT=5")

	back, err := ExtractSpecFromComponent(comp)
	require.NoError(t, err)
	assert.Equal(t, FrequencyYearly, back.Custom.RepeatFrequency)
	assert.Equal(t, 5, back.Custom.Ends.After.MustGet())

	single, err := NewRecurringComponent("wo-8", "", Spec{Mode: ModeNoRepeat, Start: date(2019, 1, 1)}, fixedNow)
	require.NoError(t, err)
	assert.Nil(t, single.Props.Get(ical.PropRecurrenceRule))
}
