package main

import (
	"fmt"
	"os"

	"github.com/aretw0/agentry"
	"github.com/aretw0/agentry/internal/cli"
	"github.com/aretw0/agentry/internal/logging"
	"github.com/aretw0/agentry/pkg/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agentry",
	Short: "Agentry runs supervised, interruptible units of concurrent work",
	Long: `Agentry is a runtime for state-machine driven agents, mailbox actors,
supervision trees and time-limited routines. This tool runs the reference
scenarios and exposes the runtime metrics.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "agentry.yaml", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringArray("set", nil, "Configuration override as key=value (repeatable)")
	rootCmd.PersistentFlags().Bool("quiet", false, "Skip the banner")
}

// loadConfig resolves the configuration from the file and the flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	pairs, _ := cmd.Flags().GetStringArray("set")
	overrides, err := config.ParseOverrides(pairs)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Apply(overrides); err != nil {
		return cfg, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}

// newRuntime builds the runtime for a command.
func newRuntime(cmd *cobra.Command) (*agentry.Runtime, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	logger := logging.New(cfg.Level())
	rt := agentry.New(
		agentry.WithConfig(cfg),
		agentry.WithLogger(logger),
		agentry.WithLifecycleHooks(cli.DebugHooks(logger)),
	)
	return rt, cfg, nil
}
