package recurrence

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// weekdayNames maps the names accepted in repeat_days to weekdays.
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
}

// rruleWeekdays is indexed by time.Weekday.
var rruleWeekdays = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// ParseWeekday resolves a weekday name such as "Tuesday" or "tue".
func ParseWeekday(name string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, newSpecError("repeat_days", name, "unknown weekday")
	}
	return wd, nil
}

func toRRuleWeekdays(days []time.Weekday) []rrule.Weekday {
	if len(days) == 0 {
		return nil
	}
	out := make([]rrule.Weekday, 0, len(days))
	for _, d := range days {
		out = append(out, rruleWeekdays[d])
	}
	return out
}

func fromRRuleWeekday(wd rrule.Weekday) time.Weekday {
	// rrule-go numbers Monday as 0
	return time.Weekday((wd.Day() + 1) % 7)
}
