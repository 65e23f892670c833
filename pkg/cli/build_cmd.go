package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"socio-dash/internal/app"
)

func newBuildCmd(rt *runtime) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run the pipeline and write the combined table",
		Long:  "Fetches and normalizes the three sources, joins them on (iso3, time) and writes the combined table. CSV unless --output says otherwise.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(cmd.Context(), app.Deps{Cfg: rt.cfg, Logger: rt.logger})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out) //nolint:gosec // path comes from the operator
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close() //nolint:errcheck
				w = f
			}
			format := getOutputFormat(cmd)
			if format == "" {
				format = formatCSV
			}
			if err := writeTable(w, format, a.Result.Combined); err != nil {
				return fmt.Errorf("write combined table: %w", err)
			}
			if out != "" {
				rt.logger.Info("combined table written", "path", out, "rows", a.Result.Combined.Len())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Write to this file instead of stdout")
	return cmd
}
