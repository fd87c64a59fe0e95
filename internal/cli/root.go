package cli

import (
	"fmt"
	"strings"

	"github.com/dosewise/dosewise/internal/backup"
	"github.com/dosewise/dosewise/internal/logger"
	"github.com/dosewise/dosewise/internal/models"
	"github.com/dosewise/dosewise/internal/scheduler"
	"github.com/dosewise/dosewise/internal/storage"
	"github.com/dosewise/dosewise/internal/utils"
)

type Context struct {
	Store     storage.Provider
	Scheduler *scheduler.Scheduler
}

// PerformAutomaticBackup snapshots the database before a mutating command.
// Only meaningful for the SQLite backend; failures never interrupt the user.
func (c *Context) PerformAutomaticBackup() {
	path := c.Store.GetConfigPath()
	if strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://") ||
		strings.HasSuffix(path, ".json") {
		return
	}
	mgr := backup.NewManager(path)
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveDate turns "today" or a YYYY-MM-DD string into a date string.
func ResolveDate(date string) (string, error) {
	if date == "today" || date == "" {
		return utils.Today(), nil
	}
	if _, err := utils.ParseDate(date); err != nil {
		return "", fmt.Errorf("invalid date format, use YYYY-MM-DD or 'today': %w", err)
	}
	return date, nil
}

// ParseItemArgs turns "name", "name=dose", or "name:Display Name=dose"
// arguments into schedule input items.
func ParseItemArgs(args []string) []models.ScheduleInputItem {
	items := make([]models.ScheduleInputItem, 0, len(args))
	for _, arg := range args {
		var item models.ScheduleInputItem
		rest := arg
		if i := strings.Index(rest, "="); i >= 0 {
			item.Dose = strings.TrimSpace(rest[i+1:])
			rest = rest[:i]
		}
		if i := strings.Index(rest, ":"); i >= 0 {
			item.DisplayName = strings.TrimSpace(rest[i+1:])
			rest = rest[:i]
		}
		item.CanonicalName = strings.ToLower(strings.TrimSpace(rest))
		if item.DisplayName == "" {
			item.DisplayName = item.CanonicalName
		}
		items = append(items, item)
	}
	return items
}

// mealOverrides builds the optional meal override struct from flag values.
func mealOverrides(breakfast, lunch, dinner string) *models.MealTimes {
	if breakfast == "" && lunch == "" && dinner == "" {
		return nil
	}
	return &models.MealTimes{
		Breakfast: breakfast,
		Lunch:     lunch,
		Dinner:    dinner,
	}
}
