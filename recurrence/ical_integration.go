package recurrence

import (
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/samber/mo"
	"github.com/teambition/rrule-go"
)

// ExtractSpecFromComponent reads DTSTART and RRULE from a VEVENT or VTODO.
// A component without RRULE becomes a NoRepeat spec; any RRULE becomes a
// Custom spec. Times without a TZID are read as UTC.
func ExtractSpecFromComponent(comp *ical.Component) (Spec, error) {
	start, err := comp.Props.DateTime(ical.PropDateTimeStart, time.UTC)
	if err != nil || start.IsZero() {
		return Spec{}, newSpecError("start_date", nil, "component has no usable DTSTART")
	}

	rruleProp := comp.Props.Get(ical.PropRecurrenceRule)
	if rruleProp == nil || rruleProp.Value == "" {
		return Spec{Mode: ModeNoRepeat, Start: start}, nil
	}

	opt, err := rrule.StrToROption(rruleProp.Value)
	if err != nil {
		return Spec{}, newSpecError("rrule", rruleProp.Value, err.Error())
	}

	custom, err := customFromOption(opt)
	if err != nil {
		return Spec{}, err
	}

	spec := Spec{Mode: ModeCustom, Start: start, Custom: custom}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

func customFromOption(opt *rrule.ROption) (*Custom, error) {
	if part := unsupportedRulePart(opt); part != "" {
		return nil, newSpecError("rrule", part, "rule part cannot be represented as a custom recurrence")
	}

	c := &Custom{RepeatUnits: opt.Interval}
	if c.RepeatUnits == 0 {
		c.RepeatUnits = 1
	}

	switch opt.Freq {
	case rrule.DAILY:
		c.RepeatFrequency = FrequencyDaily
	case rrule.WEEKLY:
		c.RepeatFrequency = FrequencyWeekly
		for _, wd := range opt.Byweekday {
			c.RepeatDays = append(c.RepeatDays, fromRRuleWeekday(wd))
		}
	case rrule.MONTHLY:
		c.RepeatFrequency = FrequencyMonthly
	case rrule.YEARLY:
		c.RepeatFrequency = FrequencyYearly
	default:
		return nil, newSpecError("rrule", fmt.Sprint(opt.Freq), "unsupported frequency")
	}

	switch {
	case !opt.Until.IsZero():
		c.Ends.On = mo.Some(opt.Until)
	case opt.Count > 0:
		c.Ends.After = mo.Some(opt.Count)
	default:
		c.Ends.Never = true
	}
	return c, nil
}

// unsupportedRulePart names the first RRULE part that a Custom cannot carry.
// BYDAY is only kept for weekly rules, and only without an ordinal.
func unsupportedRulePart(opt *rrule.ROption) string {
	switch {
	case len(opt.Bysetpos) > 0:
		return "BYSETPOS"
	case len(opt.Bymonth) > 0:
		return "BYMONTH"
	case len(opt.Bymonthday) > 0:
		return "BYMONTHDAY"
	case len(opt.Byyearday) > 0:
		return "BYYEARDAY"
	case len(opt.Byweekno) > 0:
		return "BYWEEKNO"
	case len(opt.Byhour) > 0:
		return "BYHOUR"
	case len(opt.Byminute) > 0:
		return "BYMINUTE"
	case len(opt.Bysecond) > 0:
		return "BYSECOND"
	case len(opt.Byeaster) > 0:
		return "BYEASTER"
	}
	if len(opt.Byweekday) > 0 && opt.Freq != rrule.WEEKLY {
		return "BYDAY"
	}
	for _, wd := range opt.Byweekday {
		if wd.N() != 0 {
			return "BYDAY"
		}
	}
	return ""
}

// NewRecurringComponent builds a VTODO carrying spec as DTSTART and RRULE,
// for clients that expand recurrences themselves.
func NewRecurringComponent(uid, summary string, spec Spec, now time.Time) (*ical.Component, error) {
	rule, err := RRuleString(spec, now)
	if err != nil {
		return nil, fmt.Errorf("failed to render recurrence rule: %w", err)
	}

	comp := ical.NewComponent(ical.CompToDo)
	comp.Props.SetText(ical.PropUID, uid)
	comp.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	comp.Props.SetDateTime(ical.PropDateTimeStart, spec.Start)
	if summary != "" {
		comp.Props.SetText(ical.PropSummary, summary)
	}
	if rule != "" && spec.Mode != ModeNoRepeat {
		prop := ical.NewProp(ical.PropRecurrenceRule)
		prop.Value = rule
		comp.Props.Set(prop)
	}
	return comp, nil
}
