package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dosewise/dosewise/internal/models"
	"github.com/dosewise/dosewise/internal/presenter"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleStyle.Render(m.title()),
		confidenceStyle.Render(fmt.Sprintf("confidence: %d%% (%s)",
			m.schedule.OverallConfidence,
			presenter.BandFor(m.schedule.OverallConfidence))),
	)

	sections := []string{header, ""}

	if len(m.schedule.Items) == 0 {
		sections = append(sections, "Nothing to schedule.")
	} else {
		sections = append(sections, m.table.View())
	}

	if m.showDetails {
		if item := m.selectedItem(); item != nil {
			sections = append(sections, "", m.viewDetails(*item))
		}
	}

	if len(m.schedule.Warnings) > 0 {
		sections = append(sections, "", m.viewWarnings())
	}

	sections = append(sections,
		"",
		disclaimerStyle.Render(m.schedule.Disclaimer),
		"",
		m.help.View(m.keys),
	)

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) viewDetails(item models.ScheduledItem) string {
	var b strings.Builder

	name := item.DisplayName
	if item.Dose != "" {
		name += " " + item.Dose
	}
	b.WriteString(detailTitleStyle.Render(name))
	b.WriteString("\n")

	for _, note := range item.Notes {
		b.WriteString(noteStyle.Render("  " + note))
		b.WriteString("\n")
	}
	for _, c := range item.ConstraintsSatisfied {
		b.WriteString(fmt.Sprintf("  ✓ %s\n", c))
	}
	for _, c := range item.ConstraintsViolated {
		b.WriteString(softWarningStyle.Render(fmt.Sprintf("  ✗ %s", c)))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewWarnings() string {
	var b strings.Builder
	b.WriteString(detailTitleStyle.Render("Warnings"))
	b.WriteString("\n")
	for _, w := range m.schedule.Warnings {
		line := "! " + presenter.WarningLine(w)
		if w.Severity == models.SeverityHard {
			b.WriteString(hardWarningStyle.Render(line))
		} else {
			b.WriteString(softWarningStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
