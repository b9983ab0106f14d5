package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flexpos/pkg/scenario"
)

// playCommand creates the play command for exploring a scenario
// interactively.
func (c *CLI) playCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "play [scenario.toml]",
		Short: "Move an anchor around the terminal and watch the overlay follow",
		Long: `Move an anchor around the terminal and watch the overlay follow.

The terminal is the viewport. Each character cell is 10×20 viewport pixels,
and resizing the terminal resizes the viewport.

Keys:
  arrows, hjkl   move the anchor
  + / -          grow or shrink the overlay (re-applies the last position)
  p f L g        toggle push, flexible dimensions, lock, grow-after-open
  r              toggle right-to-left
  x              hide the anchor
  space          apply
  q              quit

Without a scenario a built-in dropdown is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return c.runPlay(cmd.Context(), path)
		},
	}
}

func (c *CLI) runPlay(ctx context.Context, path string) error {
	sc := scenario.Sample()
	if path != "" {
		var err error
		if sc, err = loadScenario(path); err != nil {
			return err
		}
	}

	m, err := NewPlayModel(sc)
	if err != nil {
		return fmt.Errorf("create positioner: %w", err)
	}
	c.Logger.Debug("starting playground", "scenario", sc.Name, "positions", len(sc.Positions))

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run playground: %w", err)
	}
	return nil
}
