package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-planner/pkg/core/services"
)

// CoverageCmd creates the coverage command
func CoverageCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coverage <run_id>",
		Short: "Show the assignments and coverage of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Database == nil {
				return errNoDatabase
			}

			runID := args[0]
			csvPath, _ := cmd.Flags().GetString("csv")
			xlsxPath, _ := cmd.Flags().GetString("xlsx")

			app.Logger.Debug("coverage command", zap.String("run_id", runID))

			run, report, err := services.GetRun(app.Ctx, app.Database, app.Logger, runID)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "\nRun %s: %s on %s (%s)\n", run.ID, run.Source, run.SolveDate, optimalityLabel(run.Optimal))
			fmt.Fprintf(w, "Understaff %d, fairness spread %d, over-coverage %d\n\n",
				run.Understaff, run.FairnessSpread, run.OverCoverage)

			printAssignments(w, report)
			fmt.Fprintln(w)
			printCoverage(w, report.Day, report.Coverage)
			fmt.Fprintln(w)

			return writeExports(w, report, csvPath, xlsxPath)
		},
	}

	cmd.Flags().String("csv", "", "Write the coverage table to this CSV file")
	cmd.Flags().String("xlsx", "", "Write assignments and coverage to this XLSX file")

	return cmd
}
