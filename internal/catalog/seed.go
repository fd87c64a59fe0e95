package catalog

import (
	"fmt"

	"github.com/dosewise/dosewise/internal/storage"
)

// Seed writes the built-in profiles and rules into the store and records
// the catalog fingerprint in the settings. Existing rows with the same
// canonical name or rule key and version are overwritten.
func Seed(store storage.Provider) error {
	profiles := DefaultProfiles()
	rules := DefaultRules()

	for _, p := range profiles {
		if err := store.PutProfile(p); err != nil {
			return fmt.Errorf("failed to seed profile %s: %w", p.CanonicalName, err)
		}
	}
	for _, r := range rules {
		if err := store.PutRule(r); err != nil {
			return fmt.Errorf("failed to seed rule %s: %w", r.RuleKey, err)
		}
	}

	fingerprint, err := Fingerprint(profiles, rules)
	if err != nil {
		return err
	}

	settings, err := store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	settings.CatalogFingerprint = fingerprint
	if err := store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to record catalog fingerprint: %w", err)
	}

	return nil
}
