/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/tapebox/pkg/api"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the TapeBox REST API server over the configured tape.

Programs are served under /api/v1/programs and Prometheus metrics under
/metrics. Requests must carry X-API-Key when an API key is configured.

Examples:
  tapebox serve
  tapebox serve --port 9000 --bind 0.0.0.0 --api-key mysecretkey`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storeFrom(cmd)
			if err != nil {
				return err
			}
			cfg := configFrom(cmd)

			serverConfig := api.ServerConfig{
				Port:   cfg.Server.Port,
				Bind:   cfg.Server.Bind,
				APIKey: cfg.Server.APIKey,
			}
			if cmd.Flags().Changed("port") {
				serverConfig.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("bind") {
				serverConfig.Bind, _ = cmd.Flags().GetString("bind")
			}
			if cmd.Flags().Changed("api-key") {
				serverConfig.APIKey, _ = cmd.Flags().GetString("api-key")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			starter := container.GetServerFactory().CreateServerStarter()
			if err := starter.StartServer(ctx, store, serverConfig); err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	cmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
	cmd.Flags().String("api-key", "", "API key required in X-API-Key (empty disables auth)")
	return cmd
}
