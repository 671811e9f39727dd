package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mashrufaorc/posephase/internal/config"
	"github.com/mashrufaorc/posephase/internal/store"
)

// commandContext carries the persistent flag values and lazily opened
// resources shared by the subcommands.
type commandContext struct {
	configFlag  *string
	dbFlag      *string
	verboseFlag *bool

	cfg    *config.Config
	logger *slog.Logger
}

func newCommandContext(configFlag, dbFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{configFlag: configFlag, dbFlag: dbFlag, verboseFlag: verboseFlag}
}

// ensureConfig loads the config file once; without --config the defaults
// apply.
func (c *commandContext) ensureConfig() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg := config.Default()
	if *c.configFlag != "" {
		loaded, err := config.Load(*c.configFlag)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	c.cfg = &cfg
	return cfg, nil
}

// ensureLogger builds the process logger once. Verbose drops the level to
// debug.
func (c *commandContext) ensureLogger() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	level := slog.LevelInfo
	if *c.verboseFlag {
		level = slog.LevelDebug
	}
	c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return c.logger
}

// openStore opens the SQLite store at the --db path. The caller closes it.
func (c *commandContext) openStore() (*store.Store, error) {
	if *c.dbFlag == "" {
		return nil, fmt.Errorf("--db is required for this command")
	}
	return store.NewStore(*c.dbFlag)
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var dbFlag string
	var verboseFlag bool

	ctx := newCommandContext(&configFlag, &dbFlag, &verboseFlag)

	rootCmd := &cobra.Command{
		Use:           "posephase",
		Short:         "Exercise analysis over recorded pose streams",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Threshold config file (TOML)")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "SQLite database path")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newReplayCommand(ctx))
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newMetricsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
