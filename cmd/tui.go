package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tastemaker/internal/shared"
	"github.com/desertthunder/tastemaker/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI runs the pipeline inside the interactive terminal view.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/tastemaker-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	opts, err := r.pipelineOptions(cmd)
	if err != nil {
		return err
	}

	engine, closeDB, err := r.pipelineEngine(!cmd.Bool("no-save"))
	if err != nil {
		return err
	}
	defer closeDB()

	model := ui.NewModel(ctx, engine, opts)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if res := model.Result(); res != nil && res.RunID != "" {
		r.writePlain("✓ Recorded run %s\n", res.RunID)
	}
	return model.Err()
}
