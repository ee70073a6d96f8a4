package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Mark a program as deleted",
		Long: `Tombstone the first active program with the given name. The bytes stay
on the tape until a later save reuses the slot, so the program can be
recovered.

Example:
  tapebox remove HELLO`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storeFrom(cmd)
			if err != nil {
				return err
			}

			name := args[0]
			removed, err := store.Remove(name)
			if err != nil {
				return fmt.Errorf("failed to remove program: %w", err)
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Program %q not found.\n", name)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Program %q was marked as deleted.\n", name)
			return nil
		},
	}
}
