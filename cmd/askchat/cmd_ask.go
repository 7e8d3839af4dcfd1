package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"askchat/internal/askclient"
)

var errEmptyQuery = errors.New("query cannot be empty")

// askCmd sends one query and prints the answer
var askCmd = &cobra.Command{
	Use:   "ask [query...]",
	Short: "Ask a single question and print the answer",
	Long: `Posts one query to the answer service and prints the response in the
same shape as the chat transcript.

Example:
  askchat ask --mode detailed "What happened to NVDA today?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := joinArgs(args)
	if query == "" {
		return errEmptyQuery
	}

	req := askclient.Request{Query: query, Mode: cfg.DefaultMode}
	logger.Debug("Asking",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("mode", req.Mode),
		zap.Int("query_len", len(query)))

	out := cmd.OutOrStdout()
	resp, err := newClient(cfg).Ask(commandContext(cmd), req)
	if err != nil {
		logger.Warn("Ask failed", zap.Error(err))
		writeError(out, err)
		return reportedError{err}
	}

	writeAnswer(out, req.Mode, resp, cfg.UI.StripMarkup)
	return nil
}
