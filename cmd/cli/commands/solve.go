package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-planner/pkg/core/coverage"
	"github.com/jakechorley/shift-planner/pkg/core/services"
	"github.com/jakechorley/shift-planner/pkg/datasets"
)

// SolveCmd creates the solve command
func SolveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Assign employees to shifts for one day",
		Long: `Solve one day's schedule for a demo dataset (--demo) or a roster file (--roster).

Understaffing is minimized first, then the spread of hours between employees,
then coverage above the hourly minimum.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			demo, _ := cmd.Flags().GetString("demo")
			rosterPath, _ := cmd.Flags().GetString("roster")
			dateFlag, _ := cmd.Flags().GetString("date")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			csvPath, _ := cmd.Flags().GetString("csv")
			xlsxPath, _ := cmd.Flags().GetString("xlsx")

			if (demo == "") == (rosterPath == "") {
				return fmt.Errorf("exactly one of --demo or --roster is required")
			}

			date, err := parseDate(dateFlag, time.Now())
			if err != nil {
				return err
			}

			app.Logger.Debug("solve command",
				zap.String("demo", demo),
				zap.String("roster", rosterPath),
				zap.String("date", date.Format("2006-01-02")),
				zap.Bool("dry_run", dryRun))

			cfg := app.Cfg
			var roster *datasets.Roster
			var source string
			if demo != "" {
				ds, err := datasets.Get(demo)
				if err != nil {
					return err
				}
				cfg = ds.Apply(app.Cfg)
				roster = &ds.Roster
				source = ds.Name
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s%s%s\n%s\n", colorBold, ds.Title, colorReset, ds.Note)
			} else {
				roster, err = datasets.LoadRoster(rosterPath)
				if err != nil {
					return err
				}
				source = filepath.Base(rosterPath)
			}

			result, err := services.GenerateSchedule(app.Ctx, app.Database, cfg, source, roster, date, app.Logger, dryRun)
			if err != nil {
				return err
			}

			printSolveResult(cmd, result)

			if err := writeExports(cmd.OutOrStdout(), result.Report, csvPath, xlsxPath); err != nil {
				return err
			}

			switch {
			case result.Saved:
				fmt.Fprintf(cmd.OutOrStdout(), "✅ Run %s saved to the database.\n", result.Run.ID)
			case dryRun:
				fmt.Fprintln(cmd.OutOrStdout(), "💡 This was a dry run. Use without --dry-run to save the run.")
			}

			return nil
		},
	}

	cmd.Flags().String("demo", "", "Demo dataset to solve (see the demos command)")
	cmd.Flags().String("roster", "", "Roster YAML file to solve")
	cmd.Flags().String("date", "", "Date to solve, YYYY-MM-DD (default today)")
	cmd.Flags().Bool("dry-run", false, "Solve without saving the run")
	cmd.Flags().String("csv", "", "Write the coverage table to this CSV file")
	cmd.Flags().String("xlsx", "", "Write assignments and coverage to this XLSX file")

	return cmd
}

func printSolveResult(cmd *cobra.Command, result *services.ScheduleResult) {
	w := cmd.OutOrStdout()
	run := result.Run

	fmt.Fprintf(w, "\n✓ Schedule solved for %s (%s)\n\n", run.SolveDate, optimalityLabel(run.Optimal))
	fmt.Fprintf(w, "Understaff:      %d\n", run.Understaff)
	fmt.Fprintf(w, "Fairness spread: %d\n", run.FairnessSpread)
	fmt.Fprintf(w, "Over-coverage:   %d\n\n", run.OverCoverage)

	fmt.Fprintln(w, "Stages:")
	printStages(w, result.Solve.Stages)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "📅 Assignments:")
	fmt.Fprintln(w)
	printAssignments(w, result.Report)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "📊 Coverage:")
	fmt.Fprintln(w)
	printCoverage(w, result.Report.Day, result.Report.Coverage)
	fmt.Fprintln(w)

	if short := coverage.UnderstaffedHours(result.Report.Coverage); len(short) > 0 {
		fmt.Fprintf(w, "⚠️  %d understaffed hour(s), %d worker-hour(s) short\n\n", len(short), run.Understaff)
	}
}
