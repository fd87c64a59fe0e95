package storage

import (
	"errors"

	"github.com/dosewise/dosewise/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Settings holds the user's day anchors and the fingerprint of the catalog
// that was seeded at init time.
type Settings struct {
	WakeTime           string           `json:"wake_time"`
	Meals              models.MealTimes `json:"meals"`
	CatalogFingerprint string           `json:"catalog_fingerprint,omitempty"`
}

// Provider is the persistence surface for the catalog, settings, and saved
// schedules. Three implementations exist: SQLite (default), Postgres, and a
// plain JSON file.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (Settings, error)
	SaveSettings(Settings) error

	// Catalog profiles
	GetProfile(canonicalName string) (models.ItemProfile, error)
	GetActiveProfiles() ([]models.ItemProfile, error)
	PutProfile(models.ItemProfile) error
	DeactivateProfile(canonicalName string) error

	// Interaction rules. GetActiveRules returns only the highest stored
	// version of each active rule key.
	GetActiveRules() ([]models.InteractionRule, error)
	GetRuleVersions(ruleKey string) ([]models.InteractionRule, error)
	PutRule(models.InteractionRule) error
	DeactivateRule(ruleKey string) error

	// Saved schedules, one per date
	SaveSchedule(models.ScheduleOutput) error
	GetSchedule(date string) (models.ScheduleOutput, error)

	// Utils
	GetConfigPath() string
}

// latestActiveRules keeps only the highest version per rule key. Input rows
// are already filtered to active ones.
func latestActiveRules(rules []models.InteractionRule) []models.InteractionRule {
	latest := make(map[string]models.InteractionRule)
	var order []string
	for _, r := range rules {
		existing, ok := latest[r.RuleKey]
		if !ok {
			order = append(order, r.RuleKey)
			latest[r.RuleKey] = r
			continue
		}
		if r.Version > existing.Version {
			latest[r.RuleKey] = r
		}
	}

	out := make([]models.InteractionRule, 0, len(order))
	for _, key := range order {
		out = append(out, latest[key])
	}
	return out
}
