package scheduler

import (
	"testing"

	"github.com/dosewise/dosewise/internal/models"
)

func TestGenerateSchedule_LateConflictShiftsEarlierItem(t *testing.T) {
	s := New()

	// A very late wake places both flexible items at 23:00. Shifting the
	// later one out by the deficit would leave the day, so the earlier one
	// moves back instead.
	profiles := []models.ItemProfile{
		{
			CanonicalName: "zinc",
			DisplayName:   "Zinc",
			Kind:          models.ItemKindSupplement,
			Tags:          []models.Tag{models.TagZinc, models.TagDivalentCation},
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
		{CanonicalName: "zinc", DisplayName: "Zinc"},
		{CanonicalName: "calcium-carbonate", DisplayName: "Calcium"},
	}
	rules := []models.InteractionRule{
		{
			RuleKey:           "zinc-calcium-separation",
			AppliesIfTags:     []models.Tag{models.TagZinc},
			ConflictsWithTags: []models.Tag{models.TagCalcium},
			Constraint:        models.MinSeparation{Minutes: 120},
			Severity:          models.SeveritySoft,
			Confidence:        70,
			Active:            true,
			Version:           1,
		},
	}

	output, err := s.GenerateSchedule("2026-03-02", items, profiles, rules, Options{WakeTime: "21:00"})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}

	zinc := findItem(t, output, "zinc")
	calcium := findItem(t, output, "calcium-carbonate")
	gap := minutesOf(t, zinc.ScheduledTime) - minutesOf(t, calcium.ScheduledTime)
	if gap < 0 {
		gap = -gap
	}
	if gap < 120 {
		t.Errorf("expected 120 minute separation, got %d (%s vs %s)", gap, zinc.ScheduledTime, calcium.ScheduledTime)
	}
	for _, item := range output.Items {
		if minutesOf(t, item.ScheduledTime) > 23*60+59 {
			t.Errorf("item %s scheduled past the end of the day: %s", item.CanonicalName, item.ScheduledTime)
		}
	}
}

func TestGenerateSchedule_CutoffTruncatesShiftAndRecordsViolation(t *testing.T) {
	s := New()

	// The stimulant is pinned between wake and its cutoff; the second item
	// is movable but its own cutoff truncates the needed shift.
	profiles := []models.ItemProfile{
		{
			CanonicalName: "caffeine",
			DisplayName:   "Caffeine",
			Kind:          models.ItemKindSupplement,
			Tags:          []models.Tag{models.TagCaffeine, models.TagStimulant},
			Timing:        models.TimingProfile{Stimulant: true, EmptyStomachPreferred: true},
			Active:        true,
			Version:       1,
		},
		{
			CanonicalName: "theanine",
			DisplayName:   "L-Theanine",
			Kind:          models.ItemKindSupplement,
			Timing:        models.TimingProfile{Flexible: true, AvoidAfterTime: "09:30"},
			Active:        true,
			Version:       1,
		},
	}
	items := []models.ScheduleInputItem{
		{CanonicalName: "caffeine", DisplayName: "Caffeine"},
		{CanonicalName: "theanine", DisplayName: "L-Theanine"},
	}
	rules := []models.InteractionRule{
		{
			RuleKey:            "caffeine-theanine-separation",
			AppliesIfTags:      []models.Tag{models.TagCaffeine},
			ConflictsWithNames: []string{"theanine"},
			Constraint:         models.MinSeparation{Minutes: 360},
			Severity:           models.SeveritySoft,
			Confidence:         40,
			Active:             true,
			Version:            1,
		},
	}

	output, err := s.GenerateSchedule("2026-03-02", items, profiles, rules, Options{WakeTime: "07:00"})
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}

	theanine := findItem(t, output, "theanine")
	if minutesOf(t, theanine.ScheduledTime) > minutesOf(t, "09:30") {
		t.Errorf("expected theanine clamped to its 09:30 cutoff, got %s", theanine.ScheduledTime)
	}
	if len(output.Warnings) != 1 {
		t.Fatalf("expected the truncated separation to surface as a warning, got %d", len(output.Warnings))
	}
	if len(theanine.ConstraintsViolated) == 0 {
		t.Errorf("expected the violated constraint recorded on theanine")
	}
}

func TestComputeConfidence(t *testing.T) {
	cases := []struct {
		name           string
		matched, total int
		satisfied, all int
		want           int
	}{
		{"all matched no rules", 2, 2, 0, 0, 100},
		{"half coverage no rules", 1, 2, 0, 0, 65},
		{"full coverage half satisfied", 2, 2, 1, 2, 85},
		{"nothing matched nothing satisfied", 0, 3, 0, 2, 0},
		{"empty input", 0, 0, 0, 0, 100},
	}

	for _, tc := range cases {
		if got := computeConfidence(tc.matched, tc.total, tc.satisfied, tc.all); got != tc.want {
			t.Errorf("%s: computeConfidence(%d,%d,%d,%d) = %d, want %d",
				tc.name, tc.matched, tc.total, tc.satisfied, tc.all, got, tc.want)
		}
	}
}
