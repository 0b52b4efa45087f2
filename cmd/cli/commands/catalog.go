package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-planner/pkg/core/catalog"
	"github.com/jakechorley/shift-planner/pkg/core/model"
	"github.com/jakechorley/shift-planner/pkg/datasets"
)

// CatalogCmd creates the catalog command
func CatalogCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List every shift that fits the configured day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			demo, _ := cmd.Flags().GetString("demo")
			dateFlag, _ := cmd.Flags().GetString("date")

			date, err := parseDate(dateFlag, time.Now())
			if err != nil {
				return err
			}

			cfg := app.Cfg
			if demo != "" {
				ds, err := datasets.Get(demo)
				if err != nil {
					return err
				}
				cfg = ds.Apply(app.Cfg)
			}

			modelCfg, err := cfg.ModelConfig(date)
			if err != nil {
				return err
			}

			shifts, err := catalog.Generate(modelCfg)
			if err != nil {
				return err
			}

			app.Logger.Debug("catalog command", zap.Int("shifts", len(shifts)))

			w := cmd.OutOrStdout()
			day := modelCfg.Day
			fmt.Fprintf(w, "\n%d shifts between %s and %s (durations %v):\n\n",
				len(shifts), model.FormatHour(day.StartHour), model.FormatHour(day.StartHour+day.Hours), modelCfg.ShiftDurations)
			for i, s := range shifts {
				fmt.Fprintf(w, "  %2d. %-8s %-22s %dh\n", i+1, s.Label(day), model.FormatShift(day, s), s.Duration)
			}
			fmt.Fprintln(w)

			return nil
		},
	}

	cmd.Flags().String("demo", "", "Use a demo dataset's day instead of the configured schedule")
	cmd.Flags().String("date", "", "Date used for coverage overrides, YYYY-MM-DD (default today)")

	return cmd
}
