package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dosewise/dosewise/internal/models"
)

type Model struct {
	schedule    models.ScheduleOutput
	table       table.Model
	keys        KeyMap
	help        help.Model
	showDetails bool
	quitting    bool
	width       int
	height      int
}

func NewModel(schedule models.ScheduleOutput) Model {
	columns := []table.Column{
		{Title: "Time", Width: 7},
		{Title: "Item", Width: 24},
		{Title: "Dose", Width: 12},
		{Title: "Slot", Width: 16},
		{Title: "Food", Width: 10},
	}

	rows := make([]table.Row, 0, len(schedule.Items))
	for _, item := range schedule.Items {
		food := ""
		if item.WithFood {
			food = "with food"
		}
		rows = append(rows, table.Row{
			item.ScheduledTime,
			item.DisplayName,
			item.Dose,
			string(item.SlotLabel),
			food,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return Model{
		schedule: schedule,
		table:    t,
		keys:     DefaultKeyMap(),
		help:     help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// selectedItem returns the item under the cursor, or nil when the
// schedule is empty.
func (m Model) selectedItem() *models.ScheduledItem {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.schedule.Items) {
		return nil
	}
	return &m.schedule.Items[idx]
}

func (m Model) title() string {
	return fmt.Sprintf("Dosing schedule for %s", m.schedule.Date)
}
