package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-planner/internal/config"
	"github.com/jakechorley/shift-planner/pkg/db"
)

// errNoDatabase is returned by history commands when no databaseURL is configured
var errNoDatabase = errors.New("no database configured (set databaseURL or SHIFT_PLANNER_DATABASE_URL)")

// AppContext holds the application dependencies shared across all commands.
// Database is nil when no databaseURL is configured.
type AppContext struct {
	Cfg      *config.Config
	Database db.Database
	Logger   *zap.Logger
	Ctx      context.Context
}
