package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/shift-planner/pkg/core/model"
	"github.com/jakechorley/shift-planner/pkg/core/optimizer"
)

const configFileName = "shift_planner_config.yaml"

// envPrefix is prepended to every environment variable read by the loader
const envPrefix = "SHIFT_PLANNER_"

// HourlyLimit is a per-hour worker limit. In YAML it is either a single
// number applied to every hour or a list with one entry per hour.
type HourlyLimit []int

// UnmarshalYAML accepts a scalar or a sequence
func (l *HourlyLimit) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var v int
		if err := value.Decode(&v); err != nil {
			return err
		}
		*l = HourlyLimit{v}
	case yaml.SequenceNode:
		var vs []int
		if err := value.Decode(&vs); err != nil {
			return err
		}
		*l = vs
	default:
		return fmt.Errorf("line %d: hourly limit must be a number or a list of numbers", value.Line)
	}
	return nil
}

// Expand returns one value per hour of a day with the given length
func (l HourlyLimit) Expand(hours int) ([]int, error) {
	switch len(l) {
	case 1:
		return model.Uniform(hours, l[0]), nil
	case hours:
		return slices.Clone([]int(l)), nil
	default:
		return nil, fmt.Errorf("expected 1 or %d values, got %d", hours, len(l))
	}
}

// Schedule describes the operating day and the staffing limits
type Schedule struct {
	DayStartHour         int         `yaml:"dayStartHour" validate:"min=0,max=23"`
	DayHours             int         `yaml:"dayHours" validate:"min=1,max=64"`
	ShiftDurations       []int       `yaml:"shiftDurations" validate:"required,min=1,dive,min=1"`
	MinWorkersPerHour    HourlyLimit `yaml:"minWorkersPerHour" validate:"required,dive,min=0"`
	MaxWorkersPerHour    HourlyLimit `yaml:"maxWorkersPerHour" validate:"required,dive,min=0"`
	MaxShiftsPerEmployee int         `yaml:"maxShiftsPerEmployee" validate:"min=1"`
}

// Solver holds the optimizer budget
type Solver struct {
	StageTimeLimit time.Duration `yaml:"stageTimeLimit" env:"STAGE_TIME_LIMIT" validate:"gte=0"`
	StageNodeLimit int64         `yaml:"stageNodeLimit" env:"STAGE_NODE_LIMIT" validate:"gte=0"`
	MemoLimit      int           `yaml:"memoLimit" validate:"gte=0"`
}

// CoverageOverride replaces the worker limits for the hours its rule matches.
// At least one of MinWorkers and MaxWorkers must be set.
type CoverageOverride struct {
	RRule      string `yaml:"rrule" validate:"required"`
	MinWorkers *int   `yaml:"minWorkers,omitempty" validate:"omitempty,min=0"`
	MaxWorkers *int   `yaml:"maxWorkers,omitempty" validate:"omitempty,min=0"`
}

// Config represents the application configuration
type Config struct {
	Schedule          Schedule           `yaml:"schedule"`
	Solver            Solver             `yaml:"solver" envPrefix:"SOLVER_"`
	CoverageOverrides []CoverageOverride `yaml:"coverageOverrides,omitempty" validate:"dive"`
	DatabaseURL       string             `yaml:"databaseURL,omitempty" env:"DATABASE_URL"`
	LogDir            string             `yaml:"logDir,omitempty" env:"LOG_DIR"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the configuration used when a field is left out of the file
func Default() *Config {
	return &Config{
		Schedule: Schedule{
			DayStartHour:         8,
			DayHours:             12,
			ShiftDurations:       []int{4, 5},
			MinWorkersPerHour:    HourlyLimit{1},
			MaxWorkersPerHour:    HourlyLimit{2},
			MaxShiftsPerEmployee: 1,
		},
		Solver: Solver{
			StageTimeLimit: 10 * time.Second,
			MemoLimit:      2_000_000,
		},
		LogDir: "logs",
	}
}

// Load loads and validates the configuration from shift_planner_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads <env>_shift_planner_config.yaml, falling back to
// shift_planner_config.yaml when no environment specific file exists
func LoadWithEnv(environment string) (*Config, error) {
	configPath, err := findConfigFile(environment)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// Environment variables prefixed with SHIFT_PLANNER_ take precedence over the file.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML on top of the defaults, applies the environment and validates
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, fmt.Errorf("failed to read environment: %w", aggErr.Errors[0])
		}
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	hours := cfg.Schedule.DayHours
	if _, err := cfg.Schedule.MinWorkersPerHour.Expand(hours); err != nil {
		return fmt.Errorf("config validation failed: minWorkersPerHour: %w", err)
	}
	if _, err := cfg.Schedule.MaxWorkersPerHour.Expand(hours); err != nil {
		return fmt.Errorf("config validation failed: maxWorkersPerHour: %w", err)
	}

	for i, override := range cfg.CoverageOverrides {
		if _, err := rrule.StrToROption(override.RRule); err != nil {
			return fmt.Errorf("invalid rrule in coverageOverrides[%d]: %w", i, err)
		}
		if override.MinWorkers == nil && override.MaxWorkers == nil {
			return fmt.Errorf("coverageOverrides[%d] must set minWorkers or maxWorkers", i)
		}
	}

	return nil
}

// ModelConfig builds the engine configuration for the given date, applying
// every coverage override whose rule matches. Later overrides win.
func (c *Config) ModelConfig(date time.Time) (model.Config, error) {
	s := c.Schedule
	day := model.Day{StartHour: s.DayStartHour, Hours: s.DayHours}

	minWorkers, err := s.MinWorkersPerHour.Expand(day.Hours)
	if err != nil {
		return model.Config{}, model.NewConfigurationError("min_workers_per_hour", "%v", err)
	}
	maxWorkers, err := s.MaxWorkersPerHour.Expand(day.Hours)
	if err != nil {
		return model.Config{}, model.NewConfigurationError("max_workers_per_hour", "%v", err)
	}

	for i, override := range c.CoverageOverrides {
		hours, err := override.Hours(day, date)
		if err != nil {
			return model.Config{}, fmt.Errorf("failed to apply coverageOverrides[%d]: %w", i, err)
		}
		for _, h := range hours {
			if override.MinWorkers != nil {
				minWorkers[h] = *override.MinWorkers
			}
			if override.MaxWorkers != nil {
				maxWorkers[h] = *override.MaxWorkers
			}
		}
	}

	cfg := model.Config{
		Day:                  day,
		ShiftDurations:       slices.Clone(s.ShiftDurations),
		MinWorkers:           minWorkers,
		MaxWorkers:           maxWorkers,
		MaxShiftsPerEmployee: s.MaxShiftsPerEmployee,
	}
	if err := cfg.Validate(); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// SolverSettings converts the solver section into optimizer settings
func (c *Config) SolverSettings(logger *zap.Logger) optimizer.Settings {
	return optimizer.Settings{
		StageTimeLimit: c.Solver.StageTimeLimit,
		StageNodeLimit: c.Solver.StageNodeLimit,
		MemoLimit:      c.Solver.MemoLimit,
		Logger:         logger,
	}
}

// Hours returns the block hours of the day on date matched by the rule.
// Rules coarser than hourly that don't name any BYHOUR match the whole day
// whenever they match the date.
func (o CoverageOverride) Hours(day model.Day, date time.Time) ([]int, error) {
	opt, err := rrule.StrToROption(o.RRule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rrule: %w", err)
	}

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayStart := midnight.Add(time.Duration(day.StartHour) * time.Hour)
	dayEnd := dayStart.Add(time.Duration(day.Hours) * time.Hour)

	if opt.Dtstart.IsZero() {
		opt.Dtstart = dayStart
	}
	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build rrule: %w", err)
	}

	if opt.Freq < rrule.HOURLY && len(opt.Byhour) == 0 {
		if len(rule.Between(midnight, midnight.AddDate(0, 0, 1).Add(-time.Nanosecond), true)) == 0 {
			return nil, nil
		}
		hours := make([]int, day.Hours)
		for h := range hours {
			hours[h] = h
		}
		return hours, nil
	}

	var hours []int
	for _, occurrence := range rule.Between(dayStart, dayEnd, true) {
		h := int(occurrence.Sub(dayStart) / time.Hour)
		if day.Contains(h) && !slices.Contains(hours, h) {
			hours = append(hours, h)
		}
	}
	return hours, nil
}

// findConfigFile searches the current directory, then the home directory,
// for the environment specific file and then the shared one
func findConfigFile(environment string) (string, error) {
	names := []string{configFileName}
	if environment != "" {
		names = []string{fmt.Sprintf("%s_%s", environment, configFileName), configFileName}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	for _, name := range names {
		// Check current directory
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}

		homeConfigPath := filepath.Join(homeDir, name)
		if _, err := os.Stat(homeConfigPath); err == nil {
			return homeConfigPath, nil
		}
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", names[0])
}
