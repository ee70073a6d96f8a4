package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ssargent/tapebox/pkg/tape"
)

func newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <name>",
		Short: "Load a program by name",
		Long: `Load the first active program with the given name.

Example:
  tapebox load HELLO
  tapebox load HELLO --raw > hello.bas`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storeFrom(cmd)
			if err != nil {
				return err
			}
			raw, _ := cmd.Flags().GetBool("raw")

			name := args[0]
			data, err := store.Load(name)
			if errors.Is(err, tape.ErrProgramNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "Program %q not found.\n", name)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to load program: %w", err)
			}

			if raw {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Program %q loaded: %s\n", name, data)
			return nil
		},
	}

	cmd.Flags().Bool("raw", false, "Print only the program data")
	return cmd
}
