// Package cli implements the socio-dash command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"socio-dash/internal/app"
	"socio-dash/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == formatJSON {
			_ = printJSON(os.Stdout, map[string]any{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// runtime is the state the root command resolves before any subcommand
// runs.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	var (
		envFile string
		output  string
		rt      runtime
	)

	rootCmd := &cobra.Command{
		Use:           "socio-dash",
		Short:         "Socioeconomic dashboard",
		Long:          "Builds the combined demographics, economic and health-spending table and serves it as a dashboard.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(output); err != nil {
				return err
			}
			if err := config.LoadDotEnv(envFile); err != nil {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			rt.cfg = cfg
			rt.logger = app.NewLogger(cfg, cmd.ErrOrStderr())
			for _, w := range cfg.Warnings {
				rt.logger.Warn("config", "warning", w)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "KEY=VALUE file to load; existing environment variables win")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format (table, json, csv); defaults to table on a terminal")

	rootCmd.AddCommand(newServeCmd(&rt))
	rootCmd.AddCommand(newBuildCmd(&rt))
	rootCmd.AddCommand(newIndicatorsCmd(&rt))
	rootCmd.AddCommand(newSQLCmd(&rt))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// No config needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			if getOutputFormat(cmd) == formatJSON {
				return printJSON(cmd.OutOrStdout(), map[string]string{"version": version, "commit": commit})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "socio-dash version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
