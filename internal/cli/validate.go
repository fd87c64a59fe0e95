package cli

import (
	"fmt"

	"github.com/dosewise/dosewise/internal/validation"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *Context) error {
	rules, err := ctx.Store.GetActiveRules()
	if err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}

	validator := validation.New()
	result := validator.ValidateRules(rules)

	meals := settings.Meals
	mealResult := validator.ValidateScheduleRequest("2000-01-01", nil, settings.WakeTime, &meals)
	result.Conflicts = append(result.Conflicts, mealResult.Conflicts...)

	if result.HasConflicts() {
		fmt.Print(result.FormatReport())
		return fmt.Errorf("validation found %d conflict(s)", len(result.Conflicts))
	}

	fmt.Printf("Validation passed: %d active rules, no conflicts found.\n", len(rules))
	return nil
}
