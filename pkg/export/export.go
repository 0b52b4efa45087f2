package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jakechorley/shift-planner/pkg/core/model"
)

// NotScheduled is shown in place of a shift for employees without one
const NotScheduled = "NOT SCHEDULED"

// CoverageHeader is the column set of the coverage CSV
var CoverageHeader = []string{
	"block_start_hour_24h",
	"block_end_hour_24h",
	"block_start_time",
	"block_end_time",
	"coverage",
	"understaff",
	"min_workers_soft",
	"max_workers_hard",
}

// Report bundles a solved day for rendering
type Report struct {
	Day        model.Day
	Employees  []model.Employee
	Assignment model.Assignment
	Coverage   model.Coverage
}

// AssignmentRow is one display line of the assignment table
type AssignmentRow struct {
	Employee    string
	Label       string
	Shift       string
	WorkHours   int
	Unavailable string
}

// AssignmentRows renders the assignment with wall-clock times, one row per
// employee in input order
func AssignmentRows(r Report) []AssignmentRow {
	unavailable := make(map[string][]int, len(r.Employees))
	for _, e := range r.Employees {
		unavailable[e.ID] = e.Unavailable
	}

	rows := make([]AssignmentRow, 0, len(r.Assignment))
	for _, ea := range r.Assignment {
		row := AssignmentRow{
			Employee:    ea.EmployeeID,
			Label:       "-",
			Shift:       NotScheduled,
			WorkHours:   ea.Hours(),
			Unavailable: clockHours(r.Day, unavailable[ea.EmployeeID]),
		}
		if ea.IsScheduled() {
			labels := make([]string, len(ea.Shifts))
			shifts := make([]string, len(ea.Shifts))
			for i, s := range ea.Shifts {
				labels[i] = s.Label(r.Day)
				shifts[i] = model.FormatShift(r.Day, s)
			}
			row.Label = strings.Join(labels, ", ")
			row.Shift = strings.Join(shifts, ", ")
		}
		rows = append(rows, row)
	}
	return rows
}

func clockHours(day model.Day, hours []int) string {
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = strconv.Itoa(day.ClockHour(h))
	}
	return strings.Join(parts, ",")
}

// coverageRecord converts one coverage row into CSV/XLSX cells
func coverageRecord(day model.Day, row model.CoverageRow) []any {
	start := day.ClockHour(row.Hour)
	return []any{
		start,
		start + 1,
		model.FormatHour(start),
		model.FormatHour(start + 1),
		row.Workers,
		row.Understaff,
		row.MinRequired,
		row.MaxAllowed,
	}
}

// WriteCoverageCSV writes the per-hour coverage table as CSV
func WriteCoverageCSV(w io.Writer, r Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CoverageHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range r.Coverage {
		cells := coverageRecord(r.Day, row)
		record := make([]string, len(cells))
		for i, c := range cells {
			record[i] = fmt.Sprint(c)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row for hour %d: %w", row.Hour, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// Sheet names in the workbook
const (
	AssignmentsSheet = "Assignments"
	CoverageSheet    = "Coverage"
)

var assignmentHeader = []any{"Employee", "Label", "Shift", "Work hours", "Unavailable hours"}

// WriteWorkbook writes an XLSX workbook with an Assignments sheet and a
// Coverage sheet. Understaffed hours are highlighted.
func WriteWorkbook(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", AssignmentsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(CoverageSheet); err != nil {
		return fmt.Errorf("failed to create coverage sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	shortStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#C00000", Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create understaff style: %w", err)
	}

	// Assignments
	if err := writeRow(f, AssignmentsSheet, 1, assignmentHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(AssignmentsSheet, "A1", cell("E", 1), headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	f.SetColWidth(AssignmentsSheet, "A", "A", 16)
	f.SetColWidth(AssignmentsSheet, "B", "B", 12)
	f.SetColWidth(AssignmentsSheet, "C", "C", 30)
	f.SetColWidth(AssignmentsSheet, "E", "E", 18)

	for i, row := range AssignmentRows(r) {
		values := []any{row.Employee, row.Label, row.Shift, row.WorkHours, row.Unavailable}
		if err := writeRow(f, AssignmentsSheet, i+2, values); err != nil {
			return err
		}
	}

	// Coverage
	header := make([]any, len(CoverageHeader))
	for i, h := range CoverageHeader {
		header[i] = h
	}
	if err := writeRow(f, CoverageSheet, 1, header); err != nil {
		return err
	}
	lastCol := colName(len(CoverageHeader) - 1)
	if err := f.SetCellStyle(CoverageSheet, "A1", cell(lastCol, 1), headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	f.SetColWidth(CoverageSheet, "A", lastCol, 20)

	for i, row := range r.Coverage {
		line := i + 2
		if err := writeRow(f, CoverageSheet, line, coverageRecord(r.Day, row)); err != nil {
			return err
		}
		if row.Understaff > 0 {
			if err := f.SetCellStyle(CoverageSheet, cell("A", line), cell(lastCol, line), shortStyle); err != nil {
				return fmt.Errorf("failed to style row %d: %w", line, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to resolve cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
