package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> <data...>",
		Short: "Save or update a program on the tape",
		Long: `Save a program to the tape. Remaining arguments are joined with spaces
to form the program data. Names are not required to be unique; loads always
return the first active program with a name.

Example:
  tapebox save HELLO 'PRINT "HELLO"'`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storeFrom(cmd)
			if err != nil {
				return err
			}

			name := args[0]
			data := strings.Join(args[1:], " ")
			if err := store.SaveOrUpdate(name, []byte(data)); err != nil {
				return fmt.Errorf("failed to save program: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Program %q saved to tape.\n", name)
			return nil
		},
	}
}
