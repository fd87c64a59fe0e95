package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dosewise/dosewise/internal/presenter"
	"github.com/dosewise/dosewise/internal/storage"
	"github.com/dosewise/dosewise/internal/tui"
)

type DayCmd struct {
	Date string `arg:"" optional:"" help:"Date to show (YYYY-MM-DD or 'today')." default:"today"`
	JSON bool   `help:"Print the saved schedule as JSON."`
	TUI  bool   `help:"Open the schedule in an interactive viewer."`
}

func (c *DayCmd) Run(ctx *Context) error {
	date, err := ResolveDate(c.Date)
	if err != nil {
		return err
	}

	output, err := ctx.Store.GetSchedule(date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no saved schedule for %s, run 'dosewise schedule' first", date)
		}
		return err
	}

	if c.JSON {
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode schedule: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if c.TUI {
		p := tea.NewProgram(tui.NewModel(output), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("failed to run viewer: %w", err)
		}
		return nil
	}

	fmt.Print(presenter.RenderSchedule(output))
	return nil
}
