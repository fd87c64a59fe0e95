// Package presenter turns the engine's structured output into user-facing
// text: confidence bands, severity phrasing, and a rendered timetable. It
// consumes the schedule verbatim and holds no solver logic.
package presenter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dosewise/dosewise/internal/constants"
	"github.com/dosewise/dosewise/internal/models"
)

// Band is the coarse presentation classification of a confidence score.
type Band string

const (
	BandHigh     Band = "high"
	BandModerate Band = "moderate"
	BandLow      Band = "low"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	hardWarningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)

	softWarningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))

	disclaimerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// BandFor classifies a 0-100 confidence score.
func BandFor(confidence int) Band {
	switch {
	case confidence >= constants.HighConfidenceMin:
		return BandHigh
	case confidence >= constants.ModerateConfidenceMin:
		return BandModerate
	default:
		return BandLow
	}
}

// VerbFor picks the phrasing strength for a warning: only high-confidence
// hard rules earn the stronger verb.
func VerbFor(severity models.Severity, confidence int) string {
	if severity == models.SeverityHard && BandFor(confidence) == BandHigh {
		return "should"
	}
	return "may need to"
}

// WarningLine renders one warning as a single user-facing sentence.
func WarningLine(w models.ScheduleWarning) string {
	subject := "This schedule"
	if len(w.AffectedItems) > 0 {
		subject = strings.Join(w.AffectedItems, " and ")
	}
	return fmt.Sprintf("%s %s be reviewed: %s", subject, VerbFor(w.Severity, w.Confidence), w.Message)
}

// RenderSchedule renders the full timetable for terminal output.
func RenderSchedule(output models.ScheduleOutput) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Dosing schedule for %s", output.Date)))
	b.WriteString(fmt.Sprintf("  (confidence: %d%%, %s)\n\n", output.OverallConfidence, BandFor(output.OverallConfidence)))

	if len(output.Items) == 0 {
		b.WriteString("Nothing to schedule.\n")
	}

	for _, item := range output.Items {
		food := ""
		if item.WithFood {
			food = " (with food)"
		}
		name := item.DisplayName
		if item.Dose != "" {
			name = fmt.Sprintf("%s %s", item.DisplayName, item.Dose)
		}
		b.WriteString(fmt.Sprintf("%s  %-12s %s%s\n",
			timeStyle.Render(item.ScheduledTime), item.SlotLabel, name, food))
		for _, note := range item.Notes {
			b.WriteString("       " + noteStyle.Render(note) + "\n")
		}
	}

	if len(output.Warnings) > 0 {
		b.WriteString("\n" + titleStyle.Render("Warnings") + "\n")
		for _, warning := range output.Warnings {
			style := softWarningStyle
			if warning.Severity == models.SeverityHard {
				style = hardWarningStyle
			}
			b.WriteString(style.Render("! "+WarningLine(warning)) + "\n")
		}
	}

	b.WriteString("\n" + disclaimerStyle.Render(output.Disclaimer) + "\n")

	return b.String()
}
