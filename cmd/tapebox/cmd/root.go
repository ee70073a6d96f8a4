/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/tapebox/pkg/config"
	"github.com/ssargent/tapebox/pkg/di"
	"github.com/ssargent/tapebox/pkg/tape"
)

type contextKey string

const (
	storeKey  contextKey = "store"
	configKey contextKey = "config"

	// commands carrying this annotation run without a loaded config or store
	skipSetupAnnotation = "tapebox/skip-setup"
)

var container *di.Container

// SetContainer injects the dependency container used by all commands
func SetContainer(c *di.Container) {
	container = c
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tapebox",
		Short: "TapeBox - a virtual cassette for BASIC programs",
		Long: `TapeBox stores named programs on a single binary tape file.

Programs are appended to the tape, removed by tombstoning their header and
recovered by flipping the tombstone back. Deleted slots are reused by later
saves when they are large enough.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default "+config.GetDefaultConfigPath()+")")
	rootCmd.PersistentFlags().StringP("tape", "t", "", "Tape file (default "+tape.DefaultTapeFile+")")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newSaveCmd(),
		newLoadCmd(),
		newRemoveCmd(),
		newRecoverCmd(),
		newDumpCmd(),
		newListCmd(),
		newStatsCmd(),
		newInitCmd(),
		newServeCmd(),
		newShellCmd(),
	)
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration, applies flag overrides and opens the tape
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipSetupAnnotation] == "true" {
		return nil
	}
	if container == nil {
		return fmt.Errorf("dependency container not initialized")
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.ConfigureLogging(cfg.Logging, cmd.ErrOrStderr()); err != nil {
		return err
	}

	store, err := container.OpenStore(cfg.StoreConfig())
	if err != nil {
		return fmt.Errorf("failed to open tape: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, storeKey, store)
	cmd.SetContext(ctx)
	return nil
}

// resolveConfig reads the config named by --config, or the default config
// when it exists, and applies the persistent flag overrides
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	switch {
	case configPath != "":
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case config.ConfigExists(config.GetDefaultConfigPath()):
		loaded, err := config.LoadConfig(config.GetDefaultConfigPath())
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		cfg = config.DefaultConfig()
	}

	if cmd.Flags().Changed("tape") {
		cfg.TapeFile, _ = cmd.Flags().GetString("tape")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func storeFrom(cmd *cobra.Command) (*tape.Store, error) {
	store, ok := cmd.Context().Value(storeKey).(*tape.Store)
	if !ok {
		return nil, fmt.Errorf("store not found in context")
	}
	return store, nil
}

func configFrom(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey).(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}
