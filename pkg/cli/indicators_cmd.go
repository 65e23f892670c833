package cli

import (
	"github.com/spf13/cobra"

	"socio-dash/internal/app"
)

func newIndicatorsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "indicators",
		Short: "List the plottable indicators after validation against the combined table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(cmd.Context(), app.Deps{Cfg: rt.cfg, Logger: rt.logger})
			if err != nil {
				return err
			}
			specs := a.Registry.Specs()
			w := cmd.OutOrStdout()
			if resolveFormat(cmd, w, formatTable) == formatJSON {
				return printJSON(w, specs)
			}
			rows := make([][]string, 0, len(specs))
			for _, s := range specs {
				rows = append(rows, []string{s.Column, s.Label, s.Unit})
			}
			return printTable(w, []string{"COLUMN", "LABEL", "UNIT"}, rows)
		},
	}
}
