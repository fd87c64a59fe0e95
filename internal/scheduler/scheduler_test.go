package scheduler

import (
	"strings"
	"testing"

	"github.com/dosewise/dosewise/internal/models"
)

func findItem(t *testing.T, output models.ScheduleOutput, canonicalName string) models.ScheduledItem {
	t.Helper()
	for _, item := range output.Items {
		if item.CanonicalName == canonicalName {
			return item
		}
	}
	t.Fatalf("item %q not found in schedule", canonicalName)
	return models.ScheduledItem{}
}

func minutesOf(t *testing.T, hhmm string) int {
	t.Helper()
	if len(hhmm) != 5 || hhmm[2] != ':' {
		t.Fatalf("bad time string %q", hhmm)
	}
	h := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	m := int(hhmm[3]-'0')*10 + int(hhmm[4]-'0')
	return h*60 + m
}

func ironCalciumRule() models.InteractionRule {
	return models.InteractionRule{
		RuleKey:           "iron-divalent-separation",
		AppliesIfTags:     []models.Tag{models.TagIron},
		ConflictsWithTags: []models.Tag{models.TagDivalentCation},
		Constraint:        models.MinSeparation{Minutes: 120},
		Severity:          models.SeverityHard,
		Confidence:        90,
		Active:            true,
		Version:           1,
	}
}

func TestGenerateSchedule_EmptyStomachItemAnchorsAtWake(t *testing.T) {
	s := New()

	profiles := []models.ItemProfile{
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
	}
	items := []models.ScheduleInputItem{
		{CanonicalName: "levothyroxine", DisplayName: "Levothyroxine", Dose: "50mcg"},
	}

	output, err := s.GenerateSchedule("2026-03-02", items, profiles, nil, Options{WakeTime: "07:00"})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}

	item := findItem(t, output, "levothyroxine")
	if item.ScheduledTime != "07:00" {
		t.Errorf("expected levothyroxine at 07:00, got %s", item.ScheduledTime)
	}

	foundNote := false
	for _, note := range item.Notes {
		if strings.Contains(strings.ToLower(note), "empty stomach") {
			foundNote = true
		}
	}
	if !foundNote {
		t.Errorf("expected a note mentioning the empty-stomach buffer, got %v", item.Notes)
	}
}

func TestGenerateSchedule_SeparatesIronAndCalcium(t *testing.T) {
	s := New()

	profiles := []models.ItemProfile{
		{
			CanonicalName: "ferrous-sulfate",
			DisplayName:   "Iron",
			Kind:          models.ItemKindSupplement,
			Tags:          []models.Tag{models.TagIron},
			Timing:        models.TimingProfile{Flexible: true},
			Active:        true,
			Version:       1,
		},
		{
			CanonicalName: "calcium-carbonate",
			DisplayName:   "Calcium",
			Kind:          models.ItemKindSupplement,
			Tags:          []models.Tag{models.TagCalcium, models.TagDivalentCation},
			Timing:        models.TimingProfile{Flexible: true},
			Active:        true,
			Version:       1,
		},
	}
	items := []models.ScheduleInputItem{
		{CanonicalName: "ferrous-sulfate", DisplayName: "Iron"},
		{CanonicalName: "calcium-carbonate", DisplayName: "Calcium"},
	}
	rules := []models.InteractionRule{ironCalciumRule()}

	output, err := s.GenerateSchedule("2026-03-02", items, profiles, rules, Options{})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}

	iron := findItem(t, output, "ferrous-sulfate")
	calcium := findItem(t, output, "calcium-carbonate")

	gap := minutesOf(t, iron.ScheduledTime) - minutesOf(t, calcium.ScheduledTime)
	if gap < 0 {
		gap = -gap
	}
	if gap < 120 {
		t.Errorf("expected at least 120 minutes between iron and calcium, got %d (%s vs %s)",
			gap, iron.ScheduledTime, calcium.ScheduledTime)
	}

	if len(output.Warnings) != 0 {
		t.Errorf("expected no warnings for a resolvable conflict, got %v", output.Warnings)
	}
	if len(iron.ConstraintsSatisfied) == 0 {
		t.Errorf("expected the separation constraint marked satisfied on iron")
	}
}

func TestGenerateSchedule_StimulantClampedToCutoff(t *testing.T) {
	s := New()

	profiles := []models.ItemProfile{
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
			CanonicalName: "multivitamin",
			DisplayName:   "Multivitamin",
			Kind:          models.ItemKindSupplement,
			Timing:        models.TimingProfile{WithFood: true, Flexible: true},
			Active:        true,
			Version:       1,
		},
	}
	items := []models.ScheduleInputItem{
		{CanonicalName: "methylphenidate", DisplayName: "Methylphenidate"},
		{CanonicalName: "multivitamin", DisplayName: "Multivitamin"},
	}

	output, err := s.GenerateSchedule("2026-03-02", items, profiles, nil, Options{WakeTime: "07:00"})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}

	stim := findItem(t, output, "methylphenidate")
	food := findItem(t, output, "multivitamin")

	if stim.ScheduledTime != "07:00" {
		t.Errorf("expected stimulant at wake (07:00), got %s", stim.ScheduledTime)
	}
	if minutesOf(t, stim.ScheduledTime) > minutesOf(t, "14:00") {
		t.Errorf("stimulant scheduled after its 14:00 cutoff: %s", stim.ScheduledTime)
	}
	if minutesOf(t, food.ScheduledTime) < minutesOf(t, stim.ScheduledTime) {
		t.Errorf("expected the with-food item (%s) at or after the stimulant (%s)",
			food.ScheduledTime, stim.ScheduledTime)
	}
}

func TestGenerateSchedule_WithFoodLandsOnMealAnchor(t *testing.T) {
	s := New()

	profiles := []models.ItemProfile{
		{
			CanonicalName: "omega-3",
			DisplayName:   "Omega-3",
			Kind:          models.ItemKindSupplement,
			Tags:          []models.Tag{models.TagFatSoluble},
			Timing:        models.TimingProfile{WithFood: true},
			Active:        true,
			Version:       1,
		},
	}
	items := []models.ScheduleInputItem{
		{CanonicalName: "omega-3", DisplayName: "Omega-3"},
	}
	meals := &models.MealTimes{Breakfast: "08:00", Lunch: "12:30"}

	output, err := s.GenerateSchedule("2026-03-02", items, profiles, nil, Options{Meals: meals})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}

	item := findItem(t, output, "omega-3")
	if !item.WithFood {
		t.Errorf("expected with_food to be set")
	}

	slots, err := GetDefaultDaySlots("", meals)
	if err != nil {
		t.Fatalf("GetDefaultDaySlots failed: %v", err)
	}
	got := minutesOf(t, item.ScheduledTime)
	if got != slots.Breakfast && got != slots.Lunch && got != slots.Dinner {
		t.Errorf("expected omega-3 on a meal anchor, got %s", item.ScheduledTime)
	}
}

func TestGenerateSchedule_Confidence(t *testing.T) {
	s := New()

	profiles := []models.ItemProfile{
		{
			CanonicalName: "magnesium-glycinate",
			DisplayName:   "Magnesium",
			Kind:          models.ItemKindSupplement,
			Tags:          []models.Tag{models.TagMagnesium, models.TagDivalentCation},
			Timing: models.TimingProfile{
				PreferredWindows: []models.TimeWindow{{Start: "20:00", End: "22:00"}},
				Flexible:         true,
			},
			Active:  true,
			Version: 1,
		},
	}

	// A single fully specified item scores at least the coverage weight.
	output, err := s.GenerateSchedule("2026-03-02",
		[]models.ScheduleInputItem{{CanonicalName: "magnesium-glycinate", DisplayName: "Magnesium"}},
		profiles, nil, Options{})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}
	if output.OverallConfidence < 70 {
		t.Errorf("expected confidence >= 70 for a fully matched item, got %d", output.OverallConfidence)
	}

	// Any unmatched item keeps the score under the maximum.
	output, err = s.GenerateSchedule("2026-03-02",
		[]models.ScheduleInputItem{
			{CanonicalName: "magnesium-glycinate", DisplayName: "Magnesium"},
			{CanonicalName: "mystery-blend", DisplayName: "Mystery Blend"},
		},
		profiles, nil, Options{})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}
	if output.OverallConfidence >= 100 {
		t.Errorf("expected confidence < 100 with an unmatched item, got %d", output.OverallConfidence)
	}
}

func TestGenerateSchedule_UnmatchedItemGetsDefaultProfile(t *testing.T) {
	s := New()

	output, err := s.GenerateSchedule("2026-03-02",
		[]models.ScheduleInputItem{{CanonicalName: "mystery-blend", DisplayName: "Mystery Blend"}},
		nil, nil, Options{WakeTime: "07:00"})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}

	item := findItem(t, output, "mystery-blend")
	// Flexible default placement is wake + 2h.
	if item.ScheduledTime != "09:00" {
		t.Errorf("expected default flexible placement at 09:00, got %s", item.ScheduledTime)
	}
}

func TestGenerateSchedule_OutputEnvelope(t *testing.T) {
	s := New()

	output, err := s.GenerateSchedule("2026-03-02", nil, nil, nil, Options{})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}

	if output.Date != "2026-03-02" {
		t.Errorf("expected date passed through verbatim, got %s", output.Date)
	}
	if len(output.Items) != 0 || len(output.Warnings) != 0 {
		t.Errorf("expected empty items and warnings for empty input")
	}
	if output.OverallConfidence != 100 {
		t.Errorf("expected vacuous maximum confidence for empty input, got %d", output.OverallConfidence)
	}

	lower := strings.ToLower(output.Disclaimer)
	if output.Disclaimer == "" || !strings.Contains(lower, "not") || !strings.Contains(lower, "medical advice") {
		t.Errorf("disclaimer must state the guidance is not medical advice, got %q", output.Disclaimer)
	}
}

func TestGenerateSchedule_InvalidInput(t *testing.T) {
	s := New()

	if _, err := s.GenerateSchedule("03/02/2026", nil, nil, nil, Options{}); err == nil {
		t.Error("expected error for malformed date, got nil")
	}
	if _, err := s.GenerateSchedule("2026-03-02", nil, nil, nil, Options{WakeTime: "25:99"}); err == nil {
		t.Error("expected error for malformed wake time, got nil")
	}
	if _, err := s.GenerateSchedule("2026-03-02", nil, nil, nil, Options{Meals: &models.MealTimes{Lunch: "noon"}}); err == nil {
		t.Error("expected error for malformed meal override, got nil")
	}
}

func TestGenerateSchedule_UnresolvableConflictWarns(t *testing.T) {
	s := New()

	// Two empty-stomach items are both pinned to wake, so the separation
	// rule cannot be satisfied and must surface as a warning.
	profiles := []models.ItemProfile{
		{
			CanonicalName: "levothyroxine",
			DisplayName:   "Levothyroxine",
			Kind:          models.ItemKindMed,
			Tags:          []models.Tag{models.TagThyroidHormone},
			Timing:        models.TimingProfile{EmptyStomachPreferred: true, BufferBeforeFoodMin: 60},
			Active:        true,
			Version:       1,
		},
		{
			CanonicalName: "ferrous-sulfate",
			DisplayName:   "Iron",
			Kind:          models.ItemKindSupplement,
			Tags:          []models.Tag{models.TagIron, models.TagDivalentCation},
			Timing:        models.TimingProfile{EmptyStomachPreferred: true, BufferBeforeFoodMin: 30},
			Active:        true,
			Version:       1,
		},
	}
	items := []models.ScheduleInputItem{
		{CanonicalName: "levothyroxine", DisplayName: "Levothyroxine"},
		{CanonicalName: "ferrous-sulfate", DisplayName: "Iron"},
	}
	rules := []models.InteractionRule{
		{
			RuleKey:           "thyroid-divalent-separation",
			AppliesIfTags:     []models.Tag{models.TagThyroidHormone},
			ConflictsWithTags: []models.Tag{models.TagDivalentCation},
			Constraint:        models.MinSeparation{Minutes: 240},
			Severity:          models.SeverityHard,
			Confidence:        95,
			Active:            true,
			Version:           1,
		},
	}

	output, err := s.GenerateSchedule("2026-03-02", items, profiles, rules, Options{})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}

	if len(output.Warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %d", len(output.Warnings))
	}
	warning := output.Warnings[0]
	if warning.RuleKey != "thyroid-divalent-separation" {
		t.Errorf("expected the source rule key on the warning, got %s", warning.RuleKey)
	}
	if warning.Severity != models.SeverityHard || warning.Confidence != 95 {
		t.Errorf("expected severity/confidence copied from the rule, got %s/%d", warning.Severity, warning.Confidence)
	}
	if len(warning.AffectedItems) != 2 {
		t.Errorf("expected both display names on the warning, got %v", warning.AffectedItems)
	}

	for _, item := range output.Items {
		for _, violated := range item.ConstraintsViolated {
			for _, satisfied := range item.ConstraintsSatisfied {
				if violated == satisfied {
					t.Errorf("constraint %q appears in both satisfied and violated sets", violated)
				}
			}
		}
		if len(item.ConstraintsViolated) == 0 {
			t.Errorf("expected the violated constraint recorded on %s", item.CanonicalName)
		}
	}
}

func TestGenerateSchedule_WarnRuleAlwaysSurfaces(t *testing.T) {
	s := New()

	profiles := []models.ItemProfile{
		{
			CanonicalName: "st-johns-wort",
			DisplayName:   "St. John's Wort",
			Kind:          models.ItemKindSupplement,
			Timing:        models.TimingProfile{Flexible: true},
			Active:        true,
			Version:       1,
		},
	}
	rules := []models.InteractionRule{
		{
			RuleKey:    "sjw-interaction-review",
			AppliesTo:  []string{"st-johns-wort"},
			Constraint: models.Warn{Message: "St. John's Wort interacts with many prescription medications."},
			Severity:   models.SeveritySoft,
			Confidence: 80,
			Active:     true,
			Version:    1,
		},
	}

	output, err := s.GenerateSchedule("2026-03-02",
		[]models.ScheduleInputItem{{CanonicalName: "st-johns-wort", DisplayName: "St. John's Wort"}},
		profiles, rules, Options{})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}

	if len(output.Warnings) != 1 {
		t.Fatalf("expected the WARN rule to surface, got %d warnings", len(output.Warnings))
	}
	if output.Warnings[0].Message == "" {
		t.Errorf("expected the warn message carried through")
	}
}

func TestGenerateSchedule_SkipsInactiveAndMalformedRules(t *testing.T) {
	s := New()

	profiles := []models.ItemProfile{
		{
			CanonicalName: "ferrous-sulfate",
			DisplayName:   "Iron",
			Kind:          models.ItemKindSupplement,
			Tags:          []models.Tag{models.TagIron},
			Timing:        models.TimingProfile{Flexible: true},
			Active:        true,
			Version:       1,
		},
	}
	inactive := ironCalciumRule()
	inactive.Active = false
	malformed := models.InteractionRule{
		RuleKey:    "broken-rule",
		AppliesTo:  []string{"ferrous-sulfate"},
		Constraint: nil, // unrecognized shape dropped during decode
		Severity:   models.SeverityHard,
		Confidence: 50,
		Active:     true,
		Version:    1,
	}

	output, err := s.GenerateSchedule("2026-03-02",
		[]models.ScheduleInputItem{{CanonicalName: "ferrous-sulfate", DisplayName: "Iron"}},
		profiles, []models.InteractionRule{inactive, malformed}, Options{})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}

	if len(output.Warnings) != 0 {
		t.Errorf("expected no warnings from inactive or malformed rules, got %v", output.Warnings)
	}
	item := findItem(t, output, "ferrous-sulfate")
	if len(item.ConstraintsSatisfied) != 0 || len(item.ConstraintsViolated) != 0 {
		t.Errorf("expected no bound constraints, got satisfied=%v violated=%v",
			item.ConstraintsSatisfied, item.ConstraintsViolated)
	}
}
