package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/shift-planner/pkg/core/model"
	"github.com/jakechorley/shift-planner/pkg/datasets"
)

// DemosCmd creates the demos command
func DemosCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "demos",
		Short: "List the built-in demo datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := datasets.List()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "\nFound %d demo datasets:\n\n", len(list))
			for _, ds := range list {
				fmt.Fprintf(w, "- %s%s%s: %s\n", colorBold, ds.Name, colorReset, ds.Title)
				fmt.Fprintf(w, "    %d employees, %s to %s, %d-%d workers per hour\n",
					len(ds.Employees),
					model.FormatHour(ds.DayStartHour),
					model.FormatHour(ds.DayStartHour+ds.DayHours),
					ds.MinWorkers, ds.MaxWorkers)
				if ds.Note != "" {
					fmt.Fprintf(w, "    %s\n", ds.Note)
				}
			}
			fmt.Fprintln(w)

			return nil
		},
	}
}
