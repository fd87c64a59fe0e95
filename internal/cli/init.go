package cli

import (
	"fmt"

	"github.com/dosewise/dosewise/internal/catalog"
)

type InitCmd struct {
	Force bool `help:"Reinitialize even if storage already exists." default:"false"`
}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		if !c.Force {
			return err
		}
	}
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if err := catalog.Seed(ctx.Store); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	profiles, err := ctx.Store.GetActiveProfiles()
	if err != nil {
		return err
	}
	rules, err := ctx.Store.GetActiveRules()
	if err != nil {
		return err
	}

	fmt.Printf("Initialized dosewise storage at: %s\n", ctx.Store.GetConfigPath())
	fmt.Printf("Seeded catalog: %d profiles, %d rules\n", len(profiles), len(rules))
	return nil
}
