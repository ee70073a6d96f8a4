package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ssargent/tapebox/pkg/tape"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, formatTable, formatJSON)
	}
}

// outputPrograms displays the active programs
func outputPrograms(w io.Writer, format string, programs []tape.ProgramInfo) error {
	if format == formatJSON {
		if programs == nil {
			programs = []tape.ProgramInfo{}
		}
		return outputJSON(w, programs)
	}

	if len(programs) == 0 {
		fmt.Fprintln(w, "No programs on tape.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCATION\tNAME\tLENGTH\tSAVED\tOFFSET")
	for _, p := range programs {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\n", p.Location, p.Name, p.Length, p.Timestamp.UTC().Format(time.RFC3339), p.Offset)
	}
	return tw.Flush()
}

// outputStats displays tape statistics
func outputStats(w io.Writer, format string, path string, stats *tape.Stats) error {
	if format == formatJSON {
		return outputJSON(w, stats)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Tape:\t%s\n", path)
	fmt.Fprintf(tw, "Programs:\t%d\n", stats.Programs)
	fmt.Fprintf(tw, "Deleted:\t%d\n", stats.Tombstones)
	fmt.Fprintf(tw, "Fillers:\t%d\n", stats.Fillers)
	fmt.Fprintf(tw, "Next location:\t%d\n", stats.NextLocation)
	fmt.Fprintf(tw, "File size:\t%d bytes\n", stats.FileSize)
	if stats.Truncated {
		fmt.Fprintf(tw, "Warning:\tunrecognized data after byte %d\n", stats.ParsedBytes)
	}
	return tw.Flush()
}

func outputJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
