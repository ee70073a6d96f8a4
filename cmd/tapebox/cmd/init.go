/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/tapebox/pkg/config"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a TapeBox configuration file",
		Long: `Create a configuration file with default settings and a generated API key
for the REST server.

Examples:
  tapebox init
  tapebox init --config ./tapebox.yaml --tape ./programs.bin
  tapebox init --force`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetupAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			tapeFile, _ := cmd.Flags().GetString("tape")
			force, _ := cmd.Flags().GetBool("force")
			printKey, _ := cmd.Flags().GetBool("print-key")

			if configPath == "" {
				configPath = config.GetDefaultConfigPath()
			}

			out := cmd.OutOrStdout()
			if config.ConfigExists(configPath) && !force {
				fmt.Fprintf(out, "Configuration already exists at %s. Use --force to overwrite.\n", configPath)
				return nil
			}

			cfg, err := config.BootstrapConfig(configPath, tapeFile)
			if err != nil {
				return fmt.Errorf("failed to bootstrap config: %w", err)
			}

			fmt.Fprintf(out, "Configuration created at %s\n", configPath)
			fmt.Fprintf(out, "Tape file: %s\n", cfg.TapeFile)
			if printKey {
				fmt.Fprintf(out, "API key: %s\n", cfg.Server.APIKey)
			} else {
				fmt.Fprintf(out, "API key saved in %s\n", configPath)
			}
			fmt.Fprintf(out, "\nYou can now start the server with:\n  tapebox serve --config %s\n", configPath)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing configuration")
	cmd.Flags().Bool("print-key", false, "Print the generated API key")
	return cmd
}
