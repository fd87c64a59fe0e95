package cli

import (
	"fmt"

	"github.com/dosewise/dosewise/internal/validation"
)

type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" default:"1" help:"Show the current day anchors."`
	Set  SettingsSetCmd  `cmd:"" help:"Set wake or meal times."`
}

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}

	fmt.Printf("Wake time:  %s\n", orDefault(settings.WakeTime))
	fmt.Printf("Breakfast:  %s\n", orDefault(settings.Meals.Breakfast))
	fmt.Printf("Lunch:      %s\n", orDefault(settings.Meals.Lunch))
	fmt.Printf("Dinner:     %s\n", orDefault(settings.Meals.Dinner))
	return nil
}

func orDefault(v string) string {
	if v == "" {
		return "(default)"
	}
	return v
}

type SettingsSetCmd struct {
	Wake      string `help:"Wake time (HH:MM)."`
	Breakfast string `help:"Breakfast time (HH:MM)."`
	Lunch     string `help:"Lunch time (HH:MM)."`
	Dinner    string `help:"Dinner time (HH:MM)."`
}

func (c *SettingsSetCmd) Run(ctx *Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}

	if c.Wake != "" {
		settings.WakeTime = c.Wake
	}
	if c.Breakfast != "" {
		settings.Meals.Breakfast = c.Breakfast
	}
	if c.Lunch != "" {
		settings.Meals.Lunch = c.Lunch
	}
	if c.Dinner != "" {
		settings.Meals.Dinner = c.Dinner
	}

	// Reject anchors that the engine would refuse later.
	validator := validation.New()
	meals := settings.Meals
	if result := validator.ValidateScheduleRequest("2000-01-01", nil, settings.WakeTime, &meals); result.HasConflicts() {
		fmt.Print(result.FormatReport())
		return fmt.Errorf("settings failed validation")
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return err
	}
	fmt.Println("Settings saved.")
	return nil
}
