package cli

import (
	"fmt"
	"strings"

	"github.com/dosewise/dosewise/internal/backup"
	"github.com/dosewise/dosewise/internal/catalog"
	"github.com/dosewise/dosewise/internal/keyring"
	"github.com/dosewise/dosewise/internal/utils"
	"github.com/dosewise/dosewise/internal/validation"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	storeReachable := false

	// Check 1: storage reachable
	if err := ctx.Store.Load(); err != nil {
		fmt.Printf("❌ Storage reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Storage reachable: OK\n")
		storeReachable = true
	}

	// Check 2: settings valid
	if storeReachable {
		if err := cmd.checkSettings(ctx); err != nil {
			fmt.Printf("❌ Settings: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Settings: OK\n")
		}
	} else {
		fmt.Printf("⊘ Settings: SKIPPED (storage not reachable)\n")
	}

	// Check 3: catalog present and rules well formed
	if storeReachable {
		if err := cmd.checkCatalog(ctx); err != nil {
			fmt.Printf("❌ Catalog: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Catalog: OK\n")
		}
	} else {
		fmt.Printf("⊘ Catalog: SKIPPED (storage not reachable)\n")
	}

	// Check 4: catalog fingerprint matches the stored one
	if storeReachable {
		if err := cmd.checkFingerprint(ctx); err != nil {
			fmt.Printf("⚠ Catalog fingerprint: WARNING\n")
			fmt.Printf("   %v\n", err)
		} else {
			fmt.Printf("✓ Catalog fingerprint: OK\n")
		}
	} else {
		fmt.Printf("⊘ Catalog fingerprint: SKIPPED (storage not reachable)\n")
	}

	// Check 5: backups present (SQLite only, warning)
	path := ctx.Store.GetConfigPath()
	if !strings.HasPrefix(path, "postgres") && !strings.HasSuffix(path, ".json") {
		mgr := backup.NewManager(path)
		backups, err := mgr.ListBackups()
		if err != nil || len(backups) == 0 {
			fmt.Printf("⚠ Backups present: WARNING\n")
			fmt.Printf("   No backups found; one is created automatically before mutating commands\n")
		} else {
			fmt.Printf("✓ Backups present: OK (%d)\n", len(backups))
		}
	}

	// Check 6: OS keyring availability (informational)
	if keyring.IsAvailable() {
		fmt.Printf("✓ OS keyring: available\n")
	} else {
		fmt.Printf("⚠ OS keyring: not available (Postgres credentials cannot be stored)\n")
	}

	fmt.Println()
	if hasError {
		return fmt.Errorf("diagnostics found problems")
	}
	fmt.Println("All diagnostics passed.")
	return nil
}

func (cmd *DoctorCmd) checkSettings(ctx *Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	if settings.WakeTime != "" && !utils.ValidateTimeFormat(settings.WakeTime) {
		return fmt.Errorf("stored wake time %q is not HH:MM", settings.WakeTime)
	}
	return nil
}

func (cmd *DoctorCmd) checkCatalog(ctx *Context) error {
	profiles, err := ctx.Store.GetActiveProfiles()
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		return fmt.Errorf("no active profiles, run 'dosewise init' to seed the catalog")
	}

	rules, err := ctx.Store.GetActiveRules()
	if err != nil {
		return err
	}

	validator := validation.New()
	if result := validator.ValidateRules(rules); result.HasConflicts() {
		return fmt.Errorf("%d rule conflict(s):\n%s", len(result.Conflicts), result.FormatReport())
	}
	return nil
}

func (cmd *DoctorCmd) checkFingerprint(ctx *Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	if settings.CatalogFingerprint == "" {
		return fmt.Errorf("no catalog fingerprint recorded")
	}

	profiles, err := ctx.Store.GetActiveProfiles()
	if err != nil {
		return err
	}
	rules, err := ctx.Store.GetActiveRules()
	if err != nil {
		return err
	}

	fingerprint, err := catalog.Fingerprint(profiles, rules)
	if err != nil {
		return err
	}
	if fingerprint != settings.CatalogFingerprint {
		return fmt.Errorf("catalog differs from the recorded fingerprint (local edits or a partial import)")
	}
	return nil
}
