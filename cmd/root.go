package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ins2doi/internal/config"
	"ins2doi/internal/games"
	"ins2doi/internal/logging"
	"ins2doi/internal/session"
)

var (
	cfgFile     string
	logLevel    string
	plainOutput bool

	sess     *session.Session
	closeLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:           "ins2doi",
	Short:         "ins2doi - patch, unlock and firewall Insurgency 2 and Day of Infamy",
	Long:          "ins2doi finds Insurgency 2 and Day of Infamy installs, applies the bundled BattlEye patch, swaps the anti-cheat launcher and manages firewall rules for known rogue servers.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if sess != nil {
			sess.Logger.Error("command failed", zap.Error(err))
		}
		closeLog()
		fmt.Fprintln(os.Stderr, errorLine(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ins2doi.yaml in the user config dir or working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false, "print progress as plain lines instead of the interactive view")
}

// loadConfig reads the config and applies flag overrides before validation,
// so a bad --log-level falls back like a bad file value does.
func loadConfig(file, levelOverride string) (*config.Config, []error, error) {
	cfg, err := config.Load(file)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if levelOverride != "" {
		cfg.LogLevel = levelOverride
	}
	return cfg, cfg.Validate(), nil
}

func setup(ctx context.Context) error {
	cfg, problems, err := loadConfig(cfgFile, logLevel)
	if err != nil {
		return err
	}

	if !plainOutput && !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		plainOutput = true
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = logging.DefaultFile()
	}
	opts := logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: logFile}
	if plainOutput {
		// the interactive view owns the terminal otherwise
		opts.Console = os.Stderr
	}
	logger, closeFn, err := logging.New(opts)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	closeLog = closeFn

	for _, p := range problems {
		logger.Warn("config adjusted", zap.Error(p))
	}
	logger.Debug("starting", zap.String("version", version), zap.String("log_file", logFile))

	if ctx == nil {
		ctx = context.Background()
	}
	sess = session.New(ctx, cfg, logger, games.Default())
	return nil
}
