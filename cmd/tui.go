package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/taskr/internal/session"
	"github.com/desertthunder/taskr/internal/shared"
	"github.com/desertthunder/taskr/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive task manager.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.config.Log.Level)
	r.SetLogger(fileLogger)

	if err := r.open(ctx); err != nil {
		return err
	}

	model := ui.NewModel(ctx, r.session, r.syncer, shared.WithLogger(r.logger, "component", "ui"))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := r.session.Subscribe(func(snap session.Snapshot) {
		p.Send(ui.SessionChanged(snap))
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
