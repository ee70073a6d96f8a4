package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "recover <name>",
		Aliases: []string{"restore"},
		Short:   "Recover a deleted program",
		Long: `Recover the first entry on the tape with the given name if it is
deleted. Nothing happens when that entry is still active.

Example:
  tapebox recover HELLO`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storeFrom(cmd)
			if err != nil {
				return err
			}

			name := args[0]
			recovered, err := store.Recover(name)
			if err != nil {
				return fmt.Errorf("failed to recover program: %w", err)
			}
			if !recovered {
				fmt.Fprintf(cmd.OutOrStdout(), "Program %q not found or not deleted.\n", name)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Program %q was recovered.\n", name)
			return nil
		},
	}
}
