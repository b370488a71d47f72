// Package recurrence computes the due dates of recurring work orders. It
// supports no-repeat, daily, weekly and weekday schedules plus custom rules
// with an interval, weekday selection and an end date or occurrence count.
package recurrence

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/teambition/rrule-go"
)

// Engine generates due dates for recurrence specs, optionally caching the
// results.
type Engine struct {
	cache  *RecurrenceCache
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine without a cache.
func NewEngine(opts ...Option) *Engine {
	return NewEngineWithConfig(DisabledCacheConfig, opts...)
}

// Generate returns the due dates of spec. now is only consulted when the
// spec has no explicit termination, to bound the sequence at the end of
// now's year.
func (e *Engine) Generate(spec Spec, now time.Time) ([]time.Time, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(spec, now); ok {
			e.logger.Debug("recurrence cache hit", "mode", spec.Mode, "start", spec.Start)
			return cached, nil
		}
	}

	dates, err := GenerateDates(spec, now)
	if err != nil {
		e.logger.Warn("rejected recurrence spec", "mode", spec.Mode, "error", err)
		return nil, err
	}

	if _, known := ParseMode(string(spec.Mode)); !known && spec.Mode != "" {
		e.logger.Warn("unknown recurrence mode, nothing scheduled", "mode", spec.Mode)
	}

	if e.cache != nil {
		e.cache.Set(spec, now, dates)
	}
	return dates, nil
}

// Close releases the engine's cache, if any.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// GenerateDates maps a spec to its ordered due dates. It has no side
// effects. Unknown modes and custom specs without parameters yield an empty
// sequence; only malformed custom parameters return an error.
func GenerateDates(spec Spec, now time.Time) ([]time.Time, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	switch spec.Mode {
	case ModeNoRepeat:
		return []time.Time{spec.Start}, nil
	case ModeDaily, ModeWeekly, ModeWeekday, ModeCustom:
	default:
		return nil, nil
	}

	opt, ok := buildOption(spec, now)
	if !ok {
		return nil, nil
	}
	return expand(opt)
}

// RRuleString renders the RRULE value (without the "RRULE:" prefix) that
// GenerateDates expands for spec. NoRepeat specs render as a single-count
// daily rule.
func RRuleString(spec Spec, now time.Time) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	if spec.Mode == ModeNoRepeat {
		opt := rrule.ROption{Freq: rrule.DAILY, Count: 1, Dtstart: spec.Start}
		return opt.RRuleString(), nil
	}
	opt, ok := buildOption(spec, now)
	if !ok {
		return "", nil
	}
	return opt.RRuleString(), nil
}

// buildOption translates spec into rrule options. It reports false when
// there is nothing to schedule.
func buildOption(spec Spec, now time.Time) (rrule.ROption, bool) {
	opt := rrule.ROption{
		Dtstart:  spec.Start,
		Interval: 1,
	}

	switch spec.Mode {
	case ModeDaily:
		opt.Freq = rrule.DAILY
	case ModeWeekly:
		opt.Freq = rrule.WEEKLY
	case ModeWeekday:
		opt.Freq = rrule.DAILY
		opt.Byweekday = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR}
	case ModeCustom:
		if spec.Custom == nil {
			return opt, false
		}
		return customOption(opt, spec.Custom, now), true
	default:
		return opt, false
	}

	opt.Until = spec.End.OrElse(EndOfYear(now))
	return opt, true
}

func customOption(opt rrule.ROption, c *Custom, now time.Time) rrule.ROption {
	opt.Interval = c.interval()

	switch c.RepeatFrequency {
	case FrequencyDaily:
		opt.Freq = rrule.DAILY
	case FrequencyWeekly:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = toRRuleWeekdays(c.RepeatDays)
	case FrequencyMonthly:
		opt.Freq = rrule.MONTHLY
	case FrequencyYearly:
		opt.Freq = rrule.YEARLY
	}

	if until, ok := c.Ends.On.Get(); ok {
		opt.Until = until
	} else if count, ok := c.Ends.After.Get(); ok {
		opt.Count = count
	} else {
		opt.Until = EndOfYear(now)
	}
	return opt
}

func expand(opt rrule.ROption) ([]time.Time, error) {
	// a start after the bound is an empty range, not an error
	if opt.Count == 0 && opt.Until.Before(opt.Dtstart) {
		return nil, nil
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
	}
	dates := r.All()

	// rrule works in whole seconds; restore the sub-second part of the start
	frac := time.Duration(opt.Dtstart.Nanosecond())
	if frac == 0 {
		return dates, nil
	}
	out := dates[:0]
	for _, d := range dates {
		d = d.Add(frac)
		if !opt.Until.IsZero() && d.After(opt.Until) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// EndOfYear returns December 31, 23:59:59 of now's year in now's location.
func EndOfYear(now time.Time) time.Time {
	return time.Date(now.Year(), time.December, 31, 23, 59, 59, 0, now.Location())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
