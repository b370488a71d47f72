package recurrence

import (
	"strings"
	"time"

	"github.com/samber/mo"
)

// Mode is the top-level repetition strategy of a work order.
type Mode string

const (
	ModeNoRepeat Mode = "no_repeat"
	ModeDaily    Mode = "daily"
	ModeWeekly   Mode = "weekly"
	ModeWeekday  Mode = "weekday"
	ModeCustom   Mode = "custom"
)

// ParseMode reports whether s names a known mode. Matching ignores case and
// accepts "-" or " " in place of "_".
func ParseMode(s string) (Mode, bool) {
	m := Mode(normalizeName(s))
	switch m {
	case ModeNoRepeat, ModeDaily, ModeWeekly, ModeWeekday, ModeCustom:
		return m, true
	}
	return m, false
}

// Frequency is the step unit of a custom recurrence. It is independent of
// the outer Mode.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

func parseFrequency(s string) (Frequency, bool) {
	f := Frequency(normalizeName(s))
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return f, true
	}
	return f, false
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// Ends is the termination rule of a custom recurrence. When both On and
// After are absent the sequence stops at the end of the current year,
// whether or not Never is set.
type Ends struct {
	On    mo.Option[time.Time] // inclusive upper bound
	After mo.Option[int]       // occurrence count
	Never bool
}

// Custom holds the parameters of a ModeCustom recurrence.
type Custom struct {
	RepeatFrequency Frequency
	RepeatDays      []time.Weekday // only used with FrequencyWeekly
	RepeatUnits     int            // interval multiplier, the zero value means 1
	Ends            Ends
}

// Spec is the recurrence policy of a single work order.
type Spec struct {
	Mode   Mode
	Start  time.Time
	End    mo.Option[time.Time]
	Custom *Custom // nil unless Mode is ModeCustom
}

// CustomOccurrence is the persisted form of custom recurrence parameters, as
// stored next to a work order. ParseCustom turns it into a Custom.
type CustomOccurrence struct {
	RepeatFrequency string     `yaml:"repeat_frequency"`
	RepeatDays      []string   `yaml:"repeat_days,omitempty"`
	RepeatUnits     *int       `yaml:"repeat_units,omitempty"`
	EndsOn          *time.Time `yaml:"ends_on,omitempty"`
	EndsAfter       *int       `yaml:"ends_after,omitempty"`
	Never           bool       `yaml:"never,omitempty"`
}

// ParseCustom validates persisted custom parameters. A nil input yields a nil
// Custom and no error. An absent repeat_units defaults to 1; an explicit
// value must be positive.
func ParseCustom(raw *CustomOccurrence) (*Custom, error) {
	if raw == nil {
		return nil, nil
	}

	freq, ok := parseFrequency(raw.RepeatFrequency)
	if !ok {
		return nil, newSpecError("repeat_frequency", raw.RepeatFrequency, "unknown frequency")
	}

	c := &Custom{
		RepeatFrequency: freq,
		RepeatUnits:     1,
		Ends:            Ends{Never: raw.Never},
	}
	if raw.RepeatUnits != nil {
		if *raw.RepeatUnits <= 0 {
			return nil, newSpecError("repeat_units", *raw.RepeatUnits, "must be positive")
		}
		c.RepeatUnits = *raw.RepeatUnits
	}

	for _, name := range raw.RepeatDays {
		wd, err := ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		c.RepeatDays = append(c.RepeatDays, wd)
	}

	if raw.EndsOn != nil {
		c.Ends.On = mo.Some(*raw.EndsOn)
	}
	if raw.EndsAfter != nil {
		c.Ends.After = mo.Some(*raw.EndsAfter)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// SpecFrom builds a Spec from the recurrence fields of a work order. An
// unknown frequency is kept as is; GenerateDates treats it as nothing to
// schedule.
func SpecFrom(frequency string, start time.Time, end *time.Time, custom *CustomOccurrence) (Spec, error) {
	mode, _ := ParseMode(frequency)
	spec := Spec{Mode: mode, Start: start}
	if end != nil {
		spec.End = mo.Some(*end)
	}

	if mode == ModeCustom {
		c, err := ParseCustom(custom)
		if err != nil {
			return Spec{}, err
		}
		spec.Custom = c
	}

	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// Validate checks the caller-supplied fields of s. Unknown modes and a
// missing Custom are not errors.
func (s Spec) Validate() error {
	if _, ok := ParseMode(string(s.Mode)); !ok {
		return nil
	}
	if s.Start.IsZero() {
		return newSpecError("start_date", s.Start, "start date is required")
	}
	if s.Mode == ModeCustom && s.Custom != nil {
		return s.Custom.validate()
	}
	return nil
}

func (c *Custom) validate() error {
	if _, ok := parseFrequency(string(c.RepeatFrequency)); !ok {
		return newSpecError("repeat_frequency", c.RepeatFrequency, "unknown frequency")
	}
	if c.RepeatUnits < 0 {
		return newSpecError("repeat_units", c.RepeatUnits, "must be positive")
	}
	for _, wd := range c.RepeatDays {
		if wd < time.Sunday || wd > time.Saturday {
			return newSpecError("repeat_days", wd, "weekday out of range")
		}
	}
	if n, ok := c.Ends.After.Get(); ok && n <= 0 {
		return newSpecError("ends_after", n, "must be positive")
	}
	return nil
}

func (c *Custom) interval() int {
	if c.RepeatUnits <= 0 {
		return 1
	}
	return c.RepeatUnits
}
