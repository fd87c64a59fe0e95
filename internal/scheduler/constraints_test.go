package scheduler

import (
	"testing"

	"github.com/dosewise/dosewise/internal/models"
)

func resolvedFixture() []ResolvedItem {
	return []ResolvedItem{
		{
			Input: models.ScheduleInputItem{CanonicalName: "ferrous-sulfate", DisplayName: "Iron"},
			Profile: models.ItemProfile{
				CanonicalName: "ferrous-sulfate",
				Kind:          models.ItemKindSupplement,
				Tags:          []models.Tag{models.TagIron, models.TagDivalentCation},
			},
			Matched: true,
		},
		{
			Input: models.ScheduleInputItem{CanonicalName: "calcium-carbonate", DisplayName: "Calcium"},
			Profile: models.ItemProfile{
				CanonicalName: "calcium-carbonate",
				Kind:          models.ItemKindSupplement,
				Tags:          []models.Tag{models.TagCalcium, models.TagDivalentCation},
			},
			Matched: true,
		},
		{
			Input: models.ScheduleInputItem{CanonicalName: "lisinopril", DisplayName: "Lisinopril"},
			Profile: models.ItemProfile{
				CanonicalName: "lisinopril",
				Kind:          models.ItemKindMed,
			},
			Matched: true,
		},
	}
}

func TestBuildConstraints_SeparationBindsDistinctPairsOnce(t *testing.T) {
	// Iron and calcium both carry DIVALENT_CATION, so the rule applies to
	// and conflicts with both. The unordered pair must bind exactly once.
	rule := models.InteractionRule{
		RuleKey:           "divalent-divalent-separation",
		AppliesIfTags:     []models.Tag{models.TagDivalentCation},
		ConflictsWithTags: []models.Tag{models.TagDivalentCation},
		Constraint:        models.MinSeparation{Minutes: 120},
		Severity:          models.SeveritySoft,
		Confidence:        60,
		Active:            true,
	}

	result := buildConstraints(resolvedFixture(), []models.InteractionRule{rule})
	if len(result.constraints) != 1 {
		t.Fatalf("expected one bound constraint for the unordered pair, got %d", len(result.constraints))
	}
	bc := result.constraints[0]
	if !bc.binary() || bc.owner == bc.target {
		t.Errorf("expected a binary constraint between distinct items, got owner=%d target=%d", bc.owner, bc.target)
	}
}

func TestBuildConstraints_AnyMedWildcard(t *testing.T) {
	rule := models.InteractionRule{
		RuleKey:           "iron-any-med-separation",
		AppliesIfTags:     []models.Tag{models.TagIron},
		ConflictsWithTags: []models.Tag{models.TagAnyMed},
		Constraint:        models.MinSeparation{Minutes: 60},
		Severity:          models.SeveritySoft,
		Confidence:        55,
		Active:            true,
	}

	result := buildConstraints(resolvedFixture(), []models.InteractionRule{rule})
	if len(result.constraints) != 1 {
		t.Fatalf("expected the wildcard to match only the med-kind item, got %d constraints", len(result.constraints))
	}
	bc := result.constraints[0]
	if bc.target != 2 {
		t.Errorf("expected lisinopril (med) as the conflict target, got index %d", bc.target)
	}
}

func TestBuildConstraints_UnaryBindsPerApplicableItem(t *testing.T) {
	rule := models.InteractionRule{
		RuleKey:       "divalent-with-food",
		AppliesIfTags: []models.Tag{models.TagDivalentCation},
		Constraint:    models.WithFoodRequired{},
		Severity:      models.SeveritySoft,
		Confidence:    70,
		Active:        true,
	}

	result := buildConstraints(resolvedFixture(), []models.InteractionRule{rule})
	if len(result.constraints) != 2 {
		t.Fatalf("expected the unary rule bound to both tagged items, got %d", len(result.constraints))
	}
	for _, bc := range result.constraints {
		if bc.binary() {
			t.Errorf("expected unary binding, got target %d", bc.target)
		}
	}
}

func TestBuildConstraints_CountsMalformedAndSkipsInactive(t *testing.T) {
	rules := []models.InteractionRule{
		{
			RuleKey:    "nil-constraint",
			AppliesTo:  []string{"ferrous-sulfate"},
			Constraint: nil,
			Active:     true,
		},
		{
			RuleKey:           "inactive",
			AppliesIfTags:     []models.Tag{models.TagIron},
			ConflictsWithTags: []models.Tag{models.TagCalcium},
			Constraint:        models.MinSeparation{Minutes: 120},
			Active:            false,
		},
	}

	result := buildConstraints(resolvedFixture(), rules)
	if len(result.constraints) != 0 {
		t.Errorf("expected no bound constraints, got %d", len(result.constraints))
	}
	if result.malformed != 1 {
		t.Errorf("expected one malformed rule counted, got %d", result.malformed)
	}
}
