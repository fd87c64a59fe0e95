package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/dosewise/dosewise/internal/constants"
	"github.com/dosewise/dosewise/internal/logger"
	"github.com/dosewise/dosewise/internal/models"
	"github.com/dosewise/dosewise/internal/presenter"
	"github.com/dosewise/dosewise/internal/scheduler"
	"github.com/dosewise/dosewise/internal/validation"
)

type ScheduleCmd struct {
	Items []string `arg:"" optional:"" help:"Items to schedule, as name, name=dose, or name:Display Name=dose."`

	Date      string `help:"Date to schedule (YYYY-MM-DD or 'today')." default:"today"`
	Wake      string `help:"Wake time override (HH:MM)."`
	Breakfast string `help:"Breakfast time override (HH:MM)."`
	Lunch     string `help:"Lunch time override (HH:MM)."`
	Dinner    string `help:"Dinner time override (HH:MM)."`
	JSON      bool   `help:"Print the schedule as JSON instead of a rendered timetable."`
	NoSave    bool   `help:"Do not persist the generated schedule." name:"no-save"`
}

func (c *ScheduleCmd) Run(ctx *Context) error {
	date, err := ResolveDate(c.Date)
	if err != nil {
		return err
	}

	items := ParseItemArgs(c.Items)
	if len(items) == 0 {
		items, err = c.promptForItems(ctx)
		if err != nil {
			return err
		}
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	wake := settings.WakeTime
	if c.Wake != "" {
		wake = c.Wake
	}
	if wake == "" {
		wake = constants.DefaultWakeTime
	}

	meals := mealOverrides(c.Breakfast, c.Lunch, c.Dinner)
	if meals == nil && settings.Meals != (models.MealTimes{}) {
		m := settings.Meals
		meals = &m
	}

	validator := validation.New()
	result := validator.ValidateScheduleRequest(date, items, wake, meals)
	if result.HasConflicts() {
		fmt.Fprint(os.Stderr, result.FormatReport())
		return fmt.Errorf("schedule request failed validation")
	}

	profiles, err := ctx.Store.GetActiveProfiles()
	if err != nil {
		return fmt.Errorf("failed to load catalog profiles: %w", err)
	}
	rules, err := ctx.Store.GetActiveRules()
	if err != nil {
		return fmt.Errorf("failed to load interaction rules: %w", err)
	}

	output, err := ctx.Scheduler.GenerateSchedule(date, items, profiles, rules, scheduler.Options{
		WakeTime: wake,
		Meals:    meals,
	})
	if err != nil {
		return err
	}

	if !c.NoSave {
		ctx.PerformAutomaticBackup()
		if err := ctx.Store.SaveSchedule(output); err != nil {
			logger.Warn("Failed to persist schedule", "date", date, "error", err)
			fmt.Fprintf(os.Stderr, "Warning: schedule was generated but not saved: %v\n", err)
		}
	}

	if c.JSON {
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode schedule: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(presenter.RenderSchedule(output))
	return nil
}

// promptForItems opens an interactive picker over the active catalog.
func (c *ScheduleCmd) promptForItems(ctx *Context) ([]models.ScheduleInputItem, error) {
	profiles, err := ctx.Store.GetActiveProfiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("catalog is empty, run 'dosewise init' first")
	}

	options := make([]huh.Option[string], 0, len(profiles))
	for _, p := range profiles {
		options = append(options, huh.NewOption(p.DisplayName, p.CanonicalName))
	}

	var selected []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("What are you taking today?").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("interactive form error: %w", err)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no items selected")
	}

	byName := make(map[string]models.ItemProfile, len(profiles))
	for _, p := range profiles {
		byName[p.CanonicalName] = p
	}

	items := make([]models.ScheduleInputItem, 0, len(selected))
	for _, name := range selected {
		items = append(items, models.ScheduleInputItem{
			CanonicalName: name,
			DisplayName:   byName[name].DisplayName,
		})
	}
	return items, nil
}
