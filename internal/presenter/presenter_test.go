package presenter

import (
	"strings"
	"testing"

	"github.com/dosewise/dosewise/internal/constants"
	"github.com/dosewise/dosewise/internal/models"
)

func TestBandFor(t *testing.T) {
	cases := []struct {
		confidence int
		want       Band
	}{
		{100, BandHigh},
		{80, BandHigh},
		{79, BandModerate},
		{60, BandModerate},
		{59, BandLow},
		{0, BandLow},
	}
	for _, tc := range cases {
		if got := BandFor(tc.confidence); got != tc.want {
			t.Errorf("BandFor(%d) = %q, want %q", tc.confidence, got, tc.want)
		}
	}
}

func TestVerbFor(t *testing.T) {
	if got := VerbFor(models.SeverityHard, 95); got != "should" {
		t.Errorf("hard high-confidence verb = %q, want %q", got, "should")
	}
	if got := VerbFor(models.SeverityHard, 70); got != "may need to" {
		t.Errorf("hard moderate-confidence verb = %q, want %q", got, "may need to")
	}
	if got := VerbFor(models.SeveritySoft, 95); got != "may need to" {
		t.Errorf("soft high-confidence verb = %q, want %q", got, "may need to")
	}
}

func TestWarningLineNamesItems(t *testing.T) {
	line := WarningLine(models.ScheduleWarning{
		RuleKey:       "iron-calcium-separation",
		Severity:      models.SeverityHard,
		Confidence:    90,
		Message:       "Iron and calcium compete for absorption.",
		AffectedItems: []string{"Iron", "Calcium"},
	})
	if !strings.Contains(line, "Iron and Calcium") {
		t.Errorf("warning line missing affected items: %q", line)
	}
	if !strings.Contains(line, "should") {
		t.Errorf("warning line missing hard verb: %q", line)
	}
}

func TestRenderScheduleIncludesDisclaimer(t *testing.T) {
	out := RenderSchedule(models.ScheduleOutput{
		Date:              "2026-03-01",
		OverallConfidence: 100,
		Disclaimer:        constants.Disclaimer,
		Items: []models.ScheduledItem{
			{
				CanonicalName: "vitamin-d3",
				DisplayName:   "Vitamin D3",
				Dose:          "2000 IU",
				ScheduledTime: "07:30",
				SlotLabel:     models.SlotMorning,
				WithFood:      true,
			},
		},
	})
	for _, want := range []string{"2026-03-01", "Vitamin D3 2000 IU", "07:30", "(with food)", constants.Disclaimer} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered schedule missing %q", want)
		}
	}
}

func TestRenderScheduleEmpty(t *testing.T) {
	out := RenderSchedule(models.ScheduleOutput{
		Date:              "2026-03-01",
		OverallConfidence: 100,
		Disclaimer:        constants.Disclaimer,
	})
	if !strings.Contains(out, "Nothing to schedule") {
		t.Errorf("empty schedule not reported: %q", out)
	}
}
