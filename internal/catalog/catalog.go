// Package catalog ships the built-in item profiles and interaction rules
// used to seed a fresh store. The data is curated upstream; the engine
// never consults it directly and only sees what the caller passes in.
package catalog

import (
	"fmt"
	"sort"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/dosewise/dosewise/internal/models"
)

// DefaultProfiles returns the built-in timing profiles. Callers own the
// returned slice.
func DefaultProfiles() []models.ItemProfile {
	return []models.ItemProfile{
		{
			CanonicalName: "levothyroxine",
			DisplayName:   "Levothyroxine",
			Kind:          models.ItemKindMed,
			Tags:          []models.Tag{models.TagThyroidHormone},
			Timing: models.TimingProfile{
				EmptyStomachPreferred: true,
				BufferBeforeFoodMin:   60,
			},
			Active:  true,
			Version: 1,
		},
		{
			CanonicalName: "ferrous-sulfate",
			DisplayName:   "Iron (Ferrous Sulfate)",
			Kind:          models.ItemKindSupplement,
			Tags:          []models.Tag{models.TagIron, models.TagDivalentCation},
			Timing: models.TimingProfile{
				EmptyStomachPreferred: true,
				BufferBeforeFoodMin:   30,
				Flexible:              true,
			},
			Active:  true,
			Version: 1,
		},
		{
			CanonicalName: "calcium-carbonate",
			DisplayName:   "Calcium Carbonate",
			Kind:          models.ItemKindSupplement,
			Tags:          []models.Tag{models.TagCalcium, models.TagDivalentCation, models.TagAntacid},
			Timing: models.TimingProfile{
				WithFood: true,
				Flexible: true,
			},
			Active:  true,
			Version: 1,
		},
		{
			CanonicalName: "magnesium-glycinate",
			DisplayName:   "Magnesium Glycinate",
			Kind:          models.ItemKindSupplement,
			Tags:          []models.Tag{models.TagMagnesium, models.TagDivalentCation},
			Timing: models.TimingProfile{
				PreferredWindows: []models.TimeWindow{{Start: "20:00", End: "22:00"}},
				Flexible:         true,
			},
			Active:  true,
			Version: 1,
		},
		{
			CanonicalName: "zinc-picolinate",
			DisplayName:   "Zinc Picolinate",
			Kind:          models.ItemKindSupplement,
			Tags:          []models.Tag{models.TagZinc, models.TagDivalentCation},
			Timing: models.TimingProfile{
				WithFood: true,
				Flexible: true,
			},
			Active:  true,
			Version: 1,
		},
		{
			CanonicalName: "omega-3",
			DisplayName:   "Omega-3 Fish Oil",
			Kind:          models.ItemKindSupplement,
			Tags:          []models.Tag{models.TagFatSoluble},
			Timing: models.TimingProfile{
				WithFood: true,
				Flexible: true,
			},
			Active:  true,
			Version: 1,
		},
		{
			CanonicalName: "vitamin-d3",
			DisplayName:   "Vitamin D3",
			Kind:          models.ItemKindSupplement,
			Tags:          []models.Tag{models.TagFatSoluble},
			Timing: models.TimingProfile{
				WithFood: true,
				Flexible: true,
			},
			Active:  true,
			Version: 1,
		},
		{
			CanonicalName: "multivitamin",
			DisplayName:   "Multivitamin",
			Kind:          models.ItemKindSupplement,
			Timing: models.TimingProfile{
				WithFood: true,
				Flexible: true,
			},
			Active:  true,
			Version: 1,
		},
		{
			CanonicalName: "caffeine",
			DisplayName:   "Caffeine",
			Kind:          models.ItemKindSupplement,
			Tags:          []models.Tag{models.TagCaffeine, models.TagStimulant},
			Timing: models.TimingProfile{
				Stimulant:      true,
				AvoidAfterTime: "14:00",
			},
			Active:  true,
			Version: 1,
		},
		{
			CanonicalName: "methylphenidate",
			DisplayName:   "Methylphenidate",
			Kind:          models.ItemKindMed,
			Tags:          []models.Tag{models.TagStimulant},
			Timing: models.TimingProfile{
				Stimulant:      true,
				AvoidAfterTime: "14:00",
			},
			Active:  true,
			Version: 1,
		},
		{
			CanonicalName: "melatonin",
			DisplayName:   "Melatonin",
			Kind:          models.ItemKindSupplement,
			Timing: models.TimingProfile{
				PreferredWindows: []models.TimeWindow{{Start: "21:00", End: "23:00"}},
			},
			Active:  true,
			Version: 1,
		},
		{
			CanonicalName: "ibuprofen",
			DisplayName:   "Ibuprofen",
			Kind:          models.ItemKindMed,
			Tags:          []models.Tag{models.TagNSAID},
			Timing: models.TimingProfile{
				WithFood: true,
				Flexible: true,
			},
			Active:  true,
			Version: 1,
		},
		{
			CanonicalName: "psyllium-husk",
			DisplayName:   "Psyllium Husk",
			Kind:          models.ItemKindSupplement,
			Tags:          []models.Tag{models.TagFiber},
			Timing: models.TimingProfile{
				Flexible: true,
			},
			Active:  true,
			Version: 1,
		},
		{
			CanonicalName: "st-johns-wort",
			DisplayName:   "St. John's Wort",
			Kind:          models.ItemKindSupplement,
			Timing: models.TimingProfile{
				Flexible: true,
			},
			Active:  true,
			Version: 1,
		},
	}
}

// DefaultRules returns the built-in interaction rules. Callers own the
// returned slice.
func DefaultRules() []models.InteractionRule {
	return []models.InteractionRule{
		{
			RuleKey:           "iron-divalent-separation",
			AppliesIfTags:     []models.Tag{models.TagIron},
			ConflictsWithTags: []models.Tag{models.TagDivalentCation},
			Constraint:        models.MinSeparation{Minutes: 120},
			Severity:          models.SeverityHard,
			Confidence:        90,
			Rationale:         "Iron and other divalent cations compete for the same intestinal transporters; taking them together reduces absorption of both.",
			References:        []string{"PMID:2407766"},
			Active:            true,
			Version:           1,
		},
		{
			RuleKey:           "thyroid-divalent-separation",
			AppliesIfTags:     []models.Tag{models.TagThyroidHormone},
			ConflictsWithTags: []models.Tag{models.TagIron, models.TagCalcium, models.TagDivalentCation},
			Constraint:        models.MinSeparation{Minutes: 240},
			Severity:          models.SeverityHard,
			Confidence:        95,
			Rationale:         "Iron and calcium bind levothyroxine in the gut and can markedly reduce its uptake.",
			References:        []string{"PMID:1472942"},
			Active:            true,
			Version:           1,
		},
		{
			RuleKey:           "antacid-med-separation",
			AppliesIfTags:     []models.Tag{models.TagAntacid},
			ConflictsWithTags: []models.Tag{models.TagAnyMed},
			Constraint:        models.MinSeparation{Minutes: 120},
			Severity:          models.SeveritySoft,
			Confidence:        70,
			Rationale:         "Antacids change stomach pH and can alter how other medications dissolve and absorb.",
			Active:            true,
			Version:           1,
		},
		{
			RuleKey:           "fiber-med-separation",
			AppliesIfTags:     []models.Tag{models.TagFiber},
			ConflictsWithTags: []models.Tag{models.TagAnyMed},
			Constraint:        models.MinSeparation{Minutes: 120},
			Severity:          models.SeveritySoft,
			Confidence:        65,
			Rationale:         "Bulk fiber can trap co-ingested medications and slow or reduce their absorption.",
			Active:            true,
			Version:           1,
		},
		{
			RuleKey:       "caffeine-cutoff",
			AppliesIfTags: []models.Tag{models.TagCaffeine},
			Constraint:    models.AvoidAfterTime{Time: "14:00"},
			Severity:      models.SeveritySoft,
			Confidence:    75,
			Rationale:     "Caffeine taken in the afternoon can delay sleep onset.",
			Active:        true,
			Version:       1,
		},
		{
			RuleKey:       "fat-soluble-with-food",
			AppliesIfTags: []models.Tag{models.TagFatSoluble},
			Constraint:    models.WithFoodRequired{},
			Severity:      models.SeveritySoft,
			Confidence:    80,
			Rationale:     "Fat-soluble compounds absorb substantially better with a meal containing fat.",
			Active:        true,
			Version:       1,
		},
		{
			RuleKey:       "nsaid-with-food",
			AppliesIfTags: []models.Tag{models.TagNSAID},
			Constraint:    models.WithFoodRequired{},
			Severity:      models.SeverityHard,
			Confidence:    85,
			Rationale:     "NSAIDs on an empty stomach raise the risk of gastric irritation.",
			Active:        true,
			Version:       1,
		},
		{
			RuleKey:       "thyroid-empty-stomach",
			AppliesIfTags: []models.Tag{models.TagThyroidHormone},
			Constraint:    models.EmptyStomachPreferred{BufferBeforeFoodMin: 60},
			Severity:      models.SeverityHard,
			Confidence:    95,
			Rationale:     "Food, especially coffee and fiber, reduces levothyroxine absorption.",
			Active:        true,
			Version:       1,
		},
		{
			RuleKey:    "sjw-interaction-review",
			AppliesTo:  []string{"st-johns-wort"},
			Constraint: models.Warn{Message: "St. John's Wort induces liver enzymes and interacts with many prescription medications. Review your full medication list with a pharmacist."},
			Severity:   models.SeveritySoft,
			Confidence: 85,
			Active:     true,
			Version:    1,
		},
	}
}

// Fingerprint returns a stable hash of a catalog snapshot, used by the
// doctor command to tell two catalog states apart. Input order does not
// matter; entries are hashed in canonical order.
func Fingerprint(profiles []models.ItemProfile, rules []models.InteractionRule) (string, error) {
	sortedProfiles := make([]models.ItemProfile, len(profiles))
	copy(sortedProfiles, profiles)
	// IDs are assigned at storage time and are not part of the catalog
	// content.
	for i := range sortedProfiles {
		sortedProfiles[i].ID = ""
	}
	sort.Slice(sortedProfiles, func(i, j int) bool {
		return sortedProfiles[i].CanonicalName < sortedProfiles[j].CanonicalName
	})

	sortedRules := make([]models.InteractionRule, len(rules))
	copy(sortedRules, rules)
	for i := range sortedRules {
		sortedRules[i].ID = ""
	}
	sort.Slice(sortedRules, func(i, j int) bool {
		if sortedRules[i].RuleKey != sortedRules[j].RuleKey {
			return sortedRules[i].RuleKey < sortedRules[j].RuleKey
		}
		return sortedRules[i].Version < sortedRules[j].Version
	})

	hash, err := hashstructure.Hash(struct {
		Profiles []models.ItemProfile
		Rules    []models.InteractionRule
	}{sortedProfiles, sortedRules}, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint catalog: %w", err)
	}
	return fmt.Sprintf("%016x", hash), nil
}
