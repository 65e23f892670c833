package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"socio-dash/internal/dataset"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

func validateOutputFormat(output string) error {
	switch output {
	case "", formatTable, formatJSON, formatCSV:
		return nil
	}
	return fmt.Errorf("unsupported output format %q: use 'table', 'json' or 'csv'", output)
}

// getOutputFormat returns the --output flag as given, possibly empty.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

// resolveFormat picks the explicit --output, else table when w is a
// terminal, else fallback.
func resolveFormat(cmd *cobra.Command, w io.Writer, fallback string) string {
	if f := getOutputFormat(cmd); f != "" {
		return f
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // fd fits in int
		return formatTable
	}
	return fallback
}

func printTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		_, _ = fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

// writeTable renders a dataset table in the given format.
func writeTable(w io.Writer, format string, t *dataset.Table) error {
	switch format {
	case formatJSON:
		cols := t.Columns()
		out := make([]map[string]dataset.Value, t.Len())
		for i := range out {
			row := make(map[string]dataset.Value, len(cols))
			for c, name := range cols {
				row[name] = t.At(i, c)
			}
			out[i] = row
		}
		return printJSON(w, out)
	case formatCSV:
		return dataset.WriteCSV(w, t)
	default:
		rows := make([][]string, t.Len())
		for i := range rows {
			cells := t.Row(i)
			rows[i] = make([]string, len(cells))
			for c, v := range cells {
				rows[i][c] = v.Text()
			}
		}
		return printTable(w, t.Columns(), rows)
	}
}
