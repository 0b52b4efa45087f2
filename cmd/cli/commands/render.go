package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jakechorley/shift-planner/pkg/core/model"
	"github.com/jakechorley/shift-planner/pkg/core/optimizer"
	"github.com/jakechorley/shift-planner/pkg/export"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
)

// parseDate reads a YYYY-MM-DD flag value. An empty value means today.
func parseDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD, got %q", value)
	}
	return date, nil
}

// printAssignments writes the assignment table, one line per employee
func printAssignments(w io.Writer, report export.Report) {
	rows := export.AssignmentRows(report)

	nameColWidth := len("Employee")
	shiftColWidth := len(export.NotScheduled)
	for _, row := range rows {
		nameColWidth = max(nameColWidth, len(row.Employee))
		shiftColWidth = max(shiftColWidth, len(row.Shift))
	}
	nameColWidth += 2
	shiftColWidth += 2
	labelColWidth := 10

	fmt.Fprintf(w, "%s%-*s  %-*s  %-*s  %-6s  %s%s\n",
		colorBold,
		nameColWidth, "Employee",
		labelColWidth, "Label",
		shiftColWidth, "Shift",
		"Hours",
		"Unavailable",
		colorReset)
	fmt.Fprintln(w, strings.Repeat("-", nameColWidth+labelColWidth+shiftColWidth+6+len("Unavailable")+8))

	for _, row := range rows {
		shift := fmt.Sprintf("%-*s", shiftColWidth, row.Shift)
		if row.Shift == export.NotScheduled {
			shift = colorYellow + shift + colorReset
		}
		unavailable := row.Unavailable
		if unavailable == "" {
			unavailable = "-"
		}
		fmt.Fprintf(w, "%-*s  %-*s  %s  %-6d  %s\n",
			nameColWidth, row.Employee,
			labelColWidth, row.Label,
			shift,
			row.WorkHours,
			unavailable)
	}
}

// printCoverage writes the per-hour coverage table. Understaffed hours are red.
func printCoverage(w io.Writer, day model.Day, table model.Coverage) {
	fmt.Fprintf(w, "%s%-22s  %-7s  %-4s  %-4s  %s%s\n",
		colorBold, "Hour", "Workers", "Min", "Max", "Understaff", colorReset)
	fmt.Fprintln(w, strings.Repeat("-", 22+7+4+4+10+8))

	for _, row := range table {
		start := day.ClockHour(row.Hour)
		hour := fmt.Sprintf("%s – %s", model.FormatHour(start), model.FormatHour(start+1))
		line := fmt.Sprintf("%-22s  %-7d  %-4d  %-4d  %d", hour, row.Workers, row.MinRequired, row.MaxAllowed, row.Understaff)
		if row.Understaff > 0 {
			line = colorRed + line + colorReset
		}
		fmt.Fprintln(w, line)
	}
}

// printStages writes one line per lexicographic stage
func printStages(w io.Writer, stages []optimizer.StageResult) {
	for i, stage := range stages {
		status := colorGreen + "optimal" + colorReset
		if !stage.Optimal {
			status = colorYellow + "stopped: " + stage.StopReason + colorReset
		}
		fmt.Fprintf(w, "  %d. %-16s %-4d %s (%d nodes, %s)\n",
			i+1, stage.Objective, stage.Value, status, stage.Nodes, stage.Elapsed.Round(time.Millisecond))
	}
}

// optimalityLabel describes whether a result was proven optimal
func optimalityLabel(optimal bool) string {
	if optimal {
		return "optimal"
	}
	return "best effort (budget reached)"
}

// writeExports writes the coverage CSV and workbook when paths are given
func writeExports(w io.Writer, report export.Report, csvPath, xlsxPath string) error {
	if csvPath != "" {
		if err := writeFile(csvPath, func(f io.Writer) error { return export.WriteCoverageCSV(f, report) }); err != nil {
			return err
		}
		fmt.Fprintf(w, "✓ Coverage CSV written to %s\n", csvPath)
	}
	if xlsxPath != "" {
		if err := writeFile(xlsxPath, func(f io.Writer) error { return export.WriteWorkbook(f, report) }); err != nil {
			return err
		}
		fmt.Fprintf(w, "✓ Workbook written to %s\n", xlsxPath)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
