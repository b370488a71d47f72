package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cyp0633/upkeep/recurrence"
)

// NewDatesCommand prints the due dates of a work order.
func NewDatesCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &workOrderFlags{}

	cmd := &cobra.Command{
		Use:   "dates",
		Short: "Print the due dates of a work order",
		Example: `  upkeep dates --frequency weekday --start 2019-02-25 --end 2019-03-20
  upkeep dates --start 2019-02-20 --repeat weekly --days tue,thu --until 2019-03-25
  upkeep dates -f work_order.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wo, err := flags.workOrder()
			if err != nil {
				return err
			}
			clock, err := rootOpts.clock()
			if err != nil {
				return err
			}

			spec, err := wo.Spec()
			if err != nil {
				return err
			}
			engine := recurrence.NewEngine(recurrence.WithLogger(rootOpts.logger(cmd)))
			dates, err := engine.Generate(spec, clock())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			header := color.New(color.Bold)
			header.Fprintf(out, "%s: %d due date(s)\n", wo.ID, len(dates))
			for _, d := range dates {
				fmt.Fprintln(out, d.Format(time.RFC3339))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
