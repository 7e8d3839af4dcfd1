package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"askchat/internal/askclient"
	"askchat/internal/config"
	"askchat/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	endpoint   string
	mode       string
	timeout    time.Duration

	// Resolved configuration
	cfg *config.Config

	// Logger for the line-oriented commands
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "askchat",
	Short: "askchat - terminal chat client for an /ask answer service",
	Long: `askchat posts questions to an /ask answer service and shows the
answers, with their sources, in a scrolling transcript.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}

		if err := logging.Initialize(cfg.Logging.Options()); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		logging.Boot("askchat starting: endpoint=%s mode=%s", cfg.Endpoint, cfg.DefaultMode)
		logging.BootDebug("config: timeout=%q theme=%q markdown=%v strip_markup=%v alt_screen=%v",
			cfg.Timeout, cfg.UI.Theme, cfg.UI.RenderMarkdown, cfg.UI.StripMarkup, cfg.UI.AltScreen)

		// The interactive UI owns the terminal; it logs to files only.
		if cmd == cmd.Root() {
			logger = zap.NewNop()
			return nil
		}
		logger, err = newLogger(verbose)
		if err != nil {
			logging.BootError("failed to initialize logger: %v", err)
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch interactive chat
		return runInteractiveChat(commandContext(cmd))
	},
}

func init() {
	registerFlags(rootCmd)

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(replCmd)
}

func registerFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: "+config.DefaultConfigPath()+")")
	cmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "Full URL of the ask route")
	cmd.PersistentFlags().StringVarP(&mode, "mode", "m", "", "Response mode sent with each query")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-request timeout (0 waits indefinitely)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// reportedError wraps an error that has already been shown to the user.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

// loadConfig resolves configuration: defaults, then .env, config file and
// ASKCHAT_* variables, then flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		c.Endpoint = endpoint
	}
	if flags.Changed("mode") {
		c.DefaultMode = mode
	}
	if flags.Changed("timeout") {
		c.Timeout = timeout.String()
	}
	if verbose {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}

	if err := c.Validate(); err != nil {
		logging.ConfigWarn("rejecting configuration: %v", err)
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

func newClient(c *config.Config) *askclient.Client {
	return askclient.New(c.Endpoint, askclient.WithTimeout(c.GetTimeout()))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
