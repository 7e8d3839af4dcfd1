package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"askchat/internal/askclient"
	"askchat/internal/config"
)

const replPrompt = "You: "

// replCmd is the line-mode chat
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Chat line by line without the full-screen interface",
	Long: `Reads queries from a line editor and prints each answer below it.

Type 'exit' or 'quit' to leave and '/mode <name>' to switch modes.`,
	Args: cobra.NoArgs,
	RunE: runREPLCommand,
}

// lineReader is the part of *readline.Instance the loop needs.
type lineReader interface {
	Readline() (string, error)
}

type repl struct {
	in          lineReader
	out         io.Writer
	ask         askclient.AskFunc
	modes       []string
	mode        string
	stripMarkup bool
}

func runREPLCommand(cmd *cobra.Command, args []string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     filepath.Join(config.DefaultConfigDir(), "repl_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to start line editor: %w", err)
	}
	defer rl.Close()

	r := &repl{
		in:          rl,
		out:         rl.Stdout(),
		ask:         newClient(cfg).Ask,
		modes:       cfg.Modes,
		mode:        cfg.DefaultMode,
		stripMarkup: cfg.UI.StripMarkup,
	}
	return r.run(commandContext(cmd))
}

func (r *repl) run(ctx context.Context) error {
	fmt.Fprintln(r.out, "askchat (line mode)")
	fmt.Fprintln(r.out, "Type 'exit' or 'quit' to leave, '/mode <name>' to switch mode.")
	fmt.Fprintf(r.out, "Mode selected: %s\n\n", r.mode)

	for {
		line, err := r.in.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if strings.TrimSpace(line) == "" {
				fmt.Fprintln(r.out, "Goodbye!")
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		case err != nil:
			return fmt.Errorf("failed to read input: %w", err)
		}

		query := strings.TrimSpace(line)
		switch {
		case strings.EqualFold(query, "exit"), strings.EqualFold(query, "quit"):
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		case query == "":
			fmt.Fprintln(r.out, "Query cannot be empty.")
			fmt.Fprintln(r.out)
			continue
		case query == "/mode" || strings.HasPrefix(query, "/mode "):
			r.switchMode(strings.TrimSpace(strings.TrimPrefix(query, "/mode")))
			continue
		}

		r.askOnce(ctx, query)
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (r *repl) askOnce(ctx context.Context, query string) {
	req := askclient.Request{Query: query, Mode: r.mode}
	resp, err := r.ask(ctx, req)

	fmt.Fprintln(r.out)
	if err != nil {
		logger.Debug("REPL ask failed", zap.Error(err))
		writeError(r.out, err)
	} else {
		writeAnswer(r.out, req.Mode, resp, r.stripMarkup)
	}
	writeDivider(r.out)
}

func (r *repl) switchMode(name string) {
	switch {
	case name == "":
		fmt.Fprintf(r.out, "Mode: %s (available: %s)\n\n", r.mode, strings.Join(r.modes, ", "))
	case !slices.Contains(r.modes, name):
		fmt.Fprintf(r.out, "Unknown mode %q (available: %s)\n\n", name, strings.Join(r.modes, ", "))
	default:
		r.mode = name
		fmt.Fprintf(r.out, "Mode selected: %s\n\n", r.mode)
	}
}
