package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"askchat/cmd/askchat/chat"
	"askchat/cmd/askchat/ui"
	"askchat/internal/logging"
)

// shutdownGrace bounds how long exit waits for a cancelled request.
const shutdownGrace = 2 * time.Second

// runInteractiveChat runs the full-screen chat until the user quits or ctx
// is cancelled.
func runInteractiveChat(ctx context.Context) error {
	styles := ui.DefaultStyles()
	if cfg.UI.Theme != "" {
		styles = ui.NewStyles(ui.ThemeFor(cfg.UI.Theme))
	}

	client := newClient(cfg)
	model := chat.New(chat.Options{
		Asker:          client,
		Modes:          cfg.Modes,
		ModeIndex:      cfg.ModeIndex(),
		Styles:         styles,
		Endpoint:       client.Endpoint(),
		RenderMarkdown: cfg.UI.RenderMarkdown,
		StripMarkup:    cfg.UI.StripMarkup,
		Context:        ctx,
	})
	defer model.Shutdown()

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}

	logging.UI("starting interactive chat")
	final, err := tea.NewProgram(model, opts...).Run()
	if m, ok := final.(chat.Model); ok {
		select {
		case <-m.Shutdown():
		case <-time.After(shutdownGrace):
			logging.UI("in-flight request did not settle within %s", shutdownGrace)
		}
		logging.UI("chat closed: %d entries", m.Transcript().Len())
	}

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logging.BootError("chat UI failed: %v", err)
		return fmt.Errorf("chat UI failed: %w", err)
	}
	return nil
}
