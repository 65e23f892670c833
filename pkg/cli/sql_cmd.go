package cli

import (
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2" // registers the duckdb driver
	"github.com/spf13/cobra"

	"socio-dash/internal/app"
	"socio-dash/internal/engine"
)

func newSQLCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "sql QUERY",
		Short: "Run a read-only SQL query against the combined table",
		Long:  fmt.Sprintf("Loads the combined table into an in-memory DuckDB table named %q and runs one read-only statement against it.", engine.TableName),
		Example: `  socio-dash sql 'SELECT iso3, avg(spending) FROM combined GROUP BY iso3 ORDER BY 2 DESC LIMIT 10'
  socio-dash sql -o json 'SUMMARIZE combined'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := sql.Open("duckdb", "")
			if err != nil {
				return fmt.Errorf("open duckdb: %w", err)
			}
			defer db.Close() //nolint:errcheck

			a, err := app.New(cmd.Context(), app.Deps{Cfg: rt.cfg, Logger: rt.logger, DuckDB: db})
			if err != nil {
				return err
			}
			t, err := a.Mirror.Query(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			return writeTable(w, resolveFormat(cmd, w, formatTable), t)
		},
	}
}
