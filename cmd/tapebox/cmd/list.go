package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List active programs in tape order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			if err := validateFormat(format); err != nil {
				return err
			}
			store, err := storeFrom(cmd)
			if err != nil {
				return err
			}

			programs, err := store.List()
			if err != nil {
				return fmt.Errorf("failed to list programs: %w", err)
			}
			return outputPrograms(cmd.OutOrStdout(), format, programs)
		},
	}

	cmd.Flags().StringP("format", "f", formatTable, "Output format (table, json)")
	return cmd
}
