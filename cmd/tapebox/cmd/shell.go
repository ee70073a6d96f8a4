package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ssargent/tapebox/pkg/tape"
)

const shellMenu = `
Options:
1. Save or update program to tape
2. Load program by name
3. Remove program
4. Restore program
5. Display debug representation
6. Dump debug representation to file
7. Exit`

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Operate the tape from an interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storeFrom(cmd)
			if err != nil {
				return err
			}
			sh := &shell{
				store:    store,
				in:       bufio.NewScanner(cmd.InOrStdin()),
				out:      cmd.OutOrStdout(),
				dumpFile: configFrom(cmd).DumpFile,
			}
			return sh.run()
		},
	}
}

// shell drives the numbered menu until the user exits or input ends
type shell struct {
	store    *tape.Store
	in       *bufio.Scanner
	out      io.Writer
	dumpFile string
}

func (sh *shell) run() error {
	for {
		fmt.Fprintln(sh.out, shellMenu)
		choice, ok := sh.ask("Enter your choice: ")
		if !ok {
			return sh.in.Err()
		}

		var err error
		switch strings.TrimSpace(choice) {
		case "1":
			err = sh.save()
		case "2":
			err = sh.load()
		case "3":
			err = sh.remove()
		case "4":
			err = sh.restore()
		case "5":
			err = sh.display()
		case "6":
			err = sh.dump()
		case "7":
			fmt.Fprintln(sh.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(sh.out, "Invalid choice. Please try again.")
		}
		if err == io.EOF {
			return sh.in.Err()
		}
		if err != nil {
			fmt.Fprintf(sh.out, "Error: %v\n", err)
		}
	}
}

// ask prints prompt and reads one line; ok is false at end of input
func (sh *shell) ask(prompt string) (string, bool) {
	fmt.Fprint(sh.out, prompt)
	if !sh.in.Scan() {
		fmt.Fprintln(sh.out)
		return "", false
	}
	return sh.in.Text(), true
}

func (sh *shell) askName(prompt string) (string, error) {
	name, ok := sh.ask(prompt)
	if !ok {
		return "", io.EOF
	}
	return name, nil
}

func (sh *shell) save() error {
	name, err := sh.askName("Enter program name: ")
	if err != nil {
		return err
	}
	data, ok := sh.ask("Enter program data: ")
	if !ok {
		return io.EOF
	}
	if err := sh.store.SaveOrUpdate(name, []byte(data)); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Program %q saved to tape.\n", name)
	return nil
}

func (sh *shell) load() error {
	name, err := sh.askName("Enter program name to load: ")
	if err != nil {
		return err
	}
	data, err := sh.store.Load(name)
	if errors.Is(err, tape.ErrProgramNotFound) {
		fmt.Fprintf(sh.out, "Program %q not found.\n", name)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Program %q loaded: %s\n", name, data)
	return nil
}

func (sh *shell) remove() error {
	name, err := sh.askName("Enter program name to remove: ")
	if err != nil {
		return err
	}
	removed, err := sh.store.Remove(name)
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintf(sh.out, "Program %q was marked as deleted.\n", name)
	} else {
		fmt.Fprintf(sh.out, "Program %q not found.\n", name)
	}
	return nil
}

func (sh *shell) restore() error {
	name, err := sh.askName("Enter program name to recover: ")
	if err != nil {
		return err
	}
	recovered, err := sh.store.Recover(name)
	if err != nil {
		return err
	}
	if recovered {
		fmt.Fprintf(sh.out, "Program %q was recovered.\n", name)
	} else {
		fmt.Fprintf(sh.out, "Program %q not found or not deleted.\n", name)
	}
	return nil
}

func (sh *shell) display() error {
	dump, err := sh.store.DebugDump()
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.out, dump)
	return nil
}

func (sh *shell) dump() error {
	prompt := fmt.Sprintf("Enter filename for debug output (default is %s): ", sh.defaultDumpFile())
	path, ok := sh.ask(prompt)
	if !ok {
		return io.EOF
	}
	if strings.TrimSpace(path) == "" {
		path = sh.defaultDumpFile()
	}
	return dumpToFile(sh.out, sh.store, path)
}

func (sh *shell) defaultDumpFile() string {
	if sh.dumpFile == "" {
		return tape.DefaultDumpFile
	}
	return sh.dumpFile
}
