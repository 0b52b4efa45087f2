package datasets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/shift-planner/internal/config"
	"github.com/jakechorley/shift-planner/pkg/core/model"
)

//go:embed data/*.yaml
var dataFS embed.FS

// ErrUnknownDataset is returned by Get for a name with no embedded dataset
var ErrUnknownDataset = errors.New("unknown dataset")

var validate = validator.New()

// Employee is one roster entry. Unavailable holds wall-clock hours (0-23)
// during which the employee can't work.
type Employee struct {
	Name        string `yaml:"name" validate:"required"`
	Unavailable []int  `yaml:"unavailable,omitempty" validate:"dive,min=0,max=23"`
}

// Roster is the list of employees for a solve
type Roster struct {
	Employees []Employee `yaml:"employees" validate:"required,min=1,dive"`
}

// Dataset is a self-contained demo: a roster plus the day it is scheduled on
type Dataset struct {
	Name  string `yaml:"name" validate:"required"`
	Title string `yaml:"title" validate:"required"`
	Note  string `yaml:"note"`

	DayStartHour   int   `yaml:"dayStartHour" validate:"min=0,max=23"`
	DayHours       int   `yaml:"dayHours" validate:"min=1,max=24"`
	ShiftDurations []int `yaml:"shiftDurations,omitempty" validate:"omitempty,dive,min=1"`
	MinWorkers     int   `yaml:"minWorkers" validate:"min=0"`
	MaxWorkers     int   `yaml:"maxWorkers" validate:"min=0"`

	Roster `yaml:",inline"`
}

// List returns every embedded dataset in file order
func List() ([]*Dataset, error) {
	entries, err := fs.ReadDir(dataFS, "data")
	if err != nil {
		return nil, fmt.Errorf("failed to read datasets: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".yaml") {
			files = append(files, entry.Name())
		}
	}
	slices.Sort(files)

	result := make([]*Dataset, 0, len(files))
	for _, file := range files {
		data, err := fs.ReadFile(dataFS, path.Join("data", file))
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset %s: %w", file, err)
		}
		ds, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to load dataset %s: %w", file, err)
		}
		result = append(result, ds)
	}

	return result, nil
}

// Get returns the embedded dataset with the given name
func Get(name string) (*Dataset, error) {
	all, err := List()
	if err != nil {
		return nil, err
	}
	for _, ds := range all {
		if ds.Name == name {
			return ds, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
}

// Names returns the names of the embedded datasets
func Names() ([]string, error) {
	all, err := List()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(all))
	for i, ds := range all {
		names[i] = ds.Name
	}
	return names, nil
}

// Parse decodes and validates a dataset
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	if err := validate.Struct(&ds); err != nil {
		return nil, fmt.Errorf("dataset validation failed: %w", err)
	}
	if err := validateNames(ds.Employees); err != nil {
		return nil, err
	}
	return &ds, nil
}

// LoadRoster reads a roster file
func LoadRoster(filePath string) (*Roster, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	return ParseRoster(data)
}

// ParseRoster decodes and validates a roster
func ParseRoster(data []byte) (*Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	if err := validate.Struct(&r); err != nil {
		return nil, fmt.Errorf("roster validation failed: %w", err)
	}
	if err := validateNames(r.Employees); err != nil {
		return nil, err
	}
	return &r, nil
}

func validateNames(employees []Employee) error {
	seen := make(map[string]bool, len(employees))
	for _, e := range employees {
		if seen[e.Name] {
			return fmt.Errorf("roster validation failed: duplicate employee %q", e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

// ModelEmployees converts the roster for the given day. Unavailable
// wall-clock hours outside the day are dropped.
func (r *Roster) ModelEmployees(day model.Day) []model.Employee {
	employees := make([]model.Employee, len(r.Employees))
	for i, e := range r.Employees {
		var unavailable []int
		for _, clock := range e.Unavailable {
			if h, ok := day.IndexOf(clock); ok {
				unavailable = append(unavailable, h)
			}
		}
		slices.Sort(unavailable)
		employees[i] = model.Employee{
			ID:          e.Name,
			Unavailable: slices.Compact(unavailable),
		}
	}
	return employees
}

// Apply returns a copy of base with the dataset's day and limits in place of
// the configured schedule. Coverage overrides are dropped so demos stay
// reproducible.
func (ds *Dataset) Apply(base *config.Config) *config.Config {
	cfg := *base
	cfg.CoverageOverrides = nil

	durations := ds.ShiftDurations
	if len(durations) == 0 {
		durations = config.Default().Schedule.ShiftDurations
	}

	cfg.Schedule = config.Schedule{
		DayStartHour:         ds.DayStartHour,
		DayHours:             ds.DayHours,
		ShiftDurations:       slices.Clone(durations),
		MinWorkersPerHour:    config.HourlyLimit{ds.MinWorkers},
		MaxWorkersPerHour:    config.HourlyLimit{ds.MaxWorkers},
		MaxShiftsPerEmployee: 1,
	}
	return &cfg
}
