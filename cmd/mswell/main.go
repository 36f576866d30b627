package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mswell/internal/config"
	"mswell/internal/logging"
	"mswell/internal/repository/sqlite"
	"mswell/internal/service"

	"github.com/spf13/cobra"
)

// app holds what every subcommand needs once the config is loaded
type app struct {
	cfg     *config.Config
	cfgPath string
	logger  logging.Logger
	repo    *sqlite.Repository
	svc     *service.WellService
}

var (
	cfgFile  string
	dbPath   string
	logLevel string

	state = &app{}

	rootCmd = &cobra.Command{
		Use:   "mswell",
		Short: "Multi-segment well topology tool",
		Long: `mswell reads multi-segment well decks (WELSEGS, WSEGSICD and WSEGVALV
records in YAML form), finalizes the segment tree and keeps restart
checkpoints in a SQLite database.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: search $MSWELL_CONFIG, ./mswell.yaml, ~/.config/mswell/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "checkpoint database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(importCmd, showCmd, listCmd, restoreCmd, deleteCmd, watchCmd)
	cobra.OnFinalize(teardown)
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		state.cfg, state.cfgPath, err = config.LoadFromPath(cfgFile)
	} else {
		state.cfg, state.cfgPath, err = config.Load()
	}
	if err != nil {
		return err
	}
	if dbPath != "" {
		state.cfg.Database.Path = dbPath
	}
	if logLevel != "" {
		state.cfg.Logging.Level = logLevel
	}
	if err := state.cfg.Validate(); err != nil {
		return err
	}

	ctx, logger := logging.WithRunID(cmd.Context(), logging.New(state.cfg.LoggerConfig()))
	cmd.SetContext(ctx)
	state.logger = logger.With(logging.String("command", cmd.Name()))
	state.logger.Debug(ctx, "config loaded", logging.String("path", state.cfgPath), logging.String("summary", state.cfg.Summary()))

	state.repo, err = sqlite.New(state.cfg.Database.Path)
	if err != nil {
		return err
	}
	state.svc = service.NewWellService(state.repo, service.NewEventBus(), state.logger, state.cfg.DeckOptions())
	return nil
}

func teardown() {
	if state.repo == nil {
		return
	}
	if err := state.repo.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: close database:", err)
	}
	state.repo = nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
