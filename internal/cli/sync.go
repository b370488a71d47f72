package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cyp0633/upkeep/schedule"
	"github.com/cyp0633/upkeep/schedule/storage"
	"github.com/cyp0633/upkeep/schedule/storage/sqlite"
)

// NewSyncCommand creates or regenerates a work order's schedule in a SQLite
// database.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &workOrderFlags{}
	var (
		dbPath  string
		changed []string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Store or regenerate a work order's schedule in SQLite",
		Long: `Without --changed the work order is treated as new and its full schedule is
stored. With --changed the pending instances are regenerated when one of the
recurrence fields (frequency, custom_occurrence, start_date, end_date) is listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wo, err := flags.workOrder()
			if err != nil {
				return err
			}
			clock, err := rootOpts.clock()
			if err != nil {
				return err
			}

			store, err := sqlite.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			logger := rootOpts.logger(cmd)
			syncer, err := storage.NewSyncer(store,
				schedule.NewReconciler(schedule.WithLogger(logger)),
				storage.WithClock(clock), storage.WithSyncLogger(logger))
			if err != nil {
				return err
			}

			var created []schedule.Instance
			if len(changed) == 0 {
				created, err = syncer.OnCreate(cmd.Context(), wo)
			} else {
				fields := make([]schedule.Field, 0, len(changed))
				for _, c := range changed {
					fields = append(fields, schedule.Field(strings.TrimSpace(c)))
				}
				created, err = syncer.OnUpdate(cmd.Context(), wo, fields)
			}
			if err != nil {
				return err
			}

			all, err := store.ListInstances(cmd.Context(), wo.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintf(out, "✓ %s: %d created, %d total\n", wo.ID, len(created), len(all))
			for _, inst := range all {
				fmt.Fprintf(out, "%s  %-11s  %s\n", inst.DueDate.Format("2006-01-02"), inst.Status, inst.ID)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&dbPath, "db", "upkeep.db", "SQLite database file")
	cmd.Flags().StringSliceVar(&changed, "changed", nil, "fields changed by this update")
	return cmd
}
