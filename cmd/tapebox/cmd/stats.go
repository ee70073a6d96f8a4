package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show tape statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			if err := validateFormat(format); err != nil {
				return err
			}
			store, err := storeFrom(cmd)
			if err != nil {
				return err
			}

			stats, err := store.Stats()
			if err != nil {
				return fmt.Errorf("failed to read tape stats: %w", err)
			}
			return outputStats(cmd.OutOrStdout(), format, store.Path(), stats)
		},
	}

	cmd.Flags().StringP("format", "f", formatTable, "Output format (table, json)")
	return cmd
}
