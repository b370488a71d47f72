package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cyp0633/upkeep/recurrence"
	"github.com/cyp0633/upkeep/schedule"
)

// workOrderFlags describes a work order either through a YAML file or
// through individual flags. Flags override values from the file.
type workOrderFlags struct {
	file      string
	id        string
	title     string
	frequency string
	start     string
	end       string

	repeat string
	days   []string
	every  int
	until  string
	count  int
	never  bool

	cmd *cobra.Command
}

func (f *workOrderFlags) register(cmd *cobra.Command) {
	f.cmd = cmd
	fl := cmd.Flags()
	fl.StringVarP(&f.file, "file", "f", "", "YAML file describing the work order")
	fl.StringVar(&f.id, "id", "", "work order ID")
	fl.StringVar(&f.title, "title", "", "work order title")
	fl.StringVar(&f.frequency, "frequency", "", "no_repeat, daily, weekly, weekday or custom")
	fl.StringVar(&f.start, "start", "", "start date")
	fl.StringVar(&f.end, "end", "", "end date")
	fl.StringVar(&f.repeat, "repeat", "", "custom repeat frequency: daily, weekly, monthly or yearly")
	fl.StringSliceVar(&f.days, "days", nil, "custom weekly repeat days, e.g. tue,thu")
	fl.IntVar(&f.every, "every", 0, "custom repeat interval")
	fl.StringVar(&f.until, "until", "", "custom recurrence end date")
	fl.IntVar(&f.count, "count", 0, "custom recurrence occurrence count")
	fl.BoolVar(&f.never, "never", false, "custom recurrence never ends")
}

// loadWorkOrderFile reads a work order from YAML.
func loadWorkOrderFile(path string) (schedule.WorkOrderView, error) {
	var wo schedule.WorkOrderView

	data, err := os.ReadFile(path)
	if err != nil {
		return wo, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &wo); err != nil {
		return wo, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return wo, nil
}

func (f *workOrderFlags) workOrder() (schedule.WorkOrderView, error) {
	var wo schedule.WorkOrderView
	if f.file != "" {
		var err error
		if wo, err = loadWorkOrderFile(f.file); err != nil {
			return wo, err
		}
	}

	if f.id != "" {
		wo.ID = f.id
	}
	if wo.ID == "" {
		wo.ID = "work-order"
	}
	if f.title != "" {
		wo.Title = f.title
	}
	if f.frequency != "" {
		wo.Frequency = f.frequency
	}
	if f.start != "" {
		t, err := parseTime(f.start)
		if err != nil {
			return wo, fmt.Errorf("invalid --start: %w", err)
		}
		wo.StartDate = t
	}
	if f.end != "" {
		t, err := parseTime(f.end)
		if err != nil {
			return wo, fmt.Errorf("invalid --end: %w", err)
		}
		wo.EndDate = &t
	}

	if f.repeat != "" {
		custom := &recurrence.CustomOccurrence{
			RepeatFrequency: f.repeat,
			Never:           f.never,
		}
		if f.cmd != nil && f.cmd.Flags().Changed("every") {
			n := f.every
			custom.RepeatUnits = &n
		}
		for _, d := range f.days {
			custom.RepeatDays = append(custom.RepeatDays, strings.TrimSpace(d))
		}
		if f.until != "" {
			t, err := parseTime(f.until)
			if err != nil {
				return wo, fmt.Errorf("invalid --until: %w", err)
			}
			custom.EndsOn = &t
		}
		if f.count > 0 {
			n := f.count
			custom.EndsAfter = &n
		}
		wo.CustomOccurrence = custom
		if wo.Frequency == "" {
			wo.Frequency = string(recurrence.ModeCustom)
		}
	}

	if wo.StartDate.IsZero() {
		return wo, fmt.Errorf("a start date is required (--start or start_date in --file)")
	}
	return wo, nil
}
