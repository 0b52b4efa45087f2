package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-planner/pkg/core/services"
	"github.com/jakechorley/shift-planner/pkg/db"
)

// HistoryCmd creates the history command
func HistoryCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Database == nil {
				return errNoDatabase
			}

			limit, _ := cmd.Flags().GetInt("limit")
			if limit < 0 {
				return fmt.Errorf("limit must not be negative, got %d", limit)
			}

			app.Logger.Debug("history command", zap.Int("limit", limit))

			runs, err := services.ListRuns(app.Ctx, app.Database, app.Logger, limit)
			if err != nil {
				return err
			}

			printRuns(cmd, runs)
			return nil
		},
	}

	cmd.Flags().Int("limit", 10, "Maximum number of runs to show (0 = all)")

	return cmd
}

func printRuns(cmd *cobra.Command, runs []db.Run) {
	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs saved yet.")
		return
	}

	fmt.Fprintf(w, "\n%s%-36s  %-16s  %-10s  %-16s  %-4s  %-4s  %-4s  %s%s\n",
		colorBold, "Run ID", "Created", "Date", "Source", "U", "F", "O", "Optimal", colorReset)
	fmt.Fprintln(w, strings.Repeat("-", 36+16+10+16+4*3+7+14))

	for _, run := range runs {
		optimal := colorGreen + "yes" + colorReset
		if !run.Optimal {
			optimal = colorYellow + "no" + colorReset
		}
		fmt.Fprintf(w, "%-36s  %-16s  %-10s  %-16s  %-4d  %-4d  %-4d  %s\n",
			run.ID,
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			run.SolveDate,
			run.Source,
			run.Understaff,
			run.FairnessSpread,
			run.OverCoverage,
			optimal)
	}
	fmt.Fprintln(w)
}
