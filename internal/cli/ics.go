package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cyp0633/upkeep/schedule"
	"github.com/cyp0633/upkeep/schedule/storage"
	"github.com/cyp0633/upkeep/schedule/storage/memory"
)

// NewICSCommand prints a work order's schedule as an iCalendar file.
func NewICSCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &workOrderFlags{}

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Export the schedule of a work order as iCalendar to-dos",
		RunE: func(cmd *cobra.Command, args []string) error {
			wo, err := flags.workOrder()
			if err != nil {
				return err
			}
			clock, err := rootOpts.clock()
			if err != nil {
				return err
			}

			logger := rootOpts.logger(cmd)
			reconciler := schedule.NewReconciler(schedule.WithLogger(logger))
			syncer, err := storage.NewSyncer(memory.New(), reconciler,
				storage.WithClock(clock), storage.WithSyncLogger(logger))
			if err != nil {
				return err
			}

			instances, err := syncer.OnCreate(cmd.Context(), wo)
			if err != nil {
				return err
			}

			ics, err := schedule.ExportICS(wo, instances, clock())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), ics)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
