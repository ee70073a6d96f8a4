package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/tapebox/pkg/tape"
)

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Display the debug representation of the tape",
		Long: `Print one line per tape item. With --out the dump is written to a file
instead; an empty --out uses the dump_file setting.

Examples:
  tapebox dump
  tapebox dump --out debug_output.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storeFrom(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("out") {
				out, _ := cmd.Flags().GetString("out")
				if out == "" {
					out = configFrom(cmd).DumpFile
				}
				return dumpToFile(cmd.OutOrStdout(), store, out)
			}

			dump, err := store.DebugDump()
			if err != nil {
				return fmt.Errorf("failed to dump tape: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dump)
			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "", "Write the dump to this file")
	return cmd
}

func dumpToFile(w io.Writer, store *tape.Store, path string) error {
	if path == "" {
		path = tape.DefaultDumpFile
	}
	if err := store.DumpToFile(path); err != nil {
		return fmt.Errorf("failed to write dump: %w", err)
	}
	fmt.Fprintf(w, "Debug representation saved to %s.\n", path)
	return nil
}
