package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"socio-dash/internal/app"
)

func newServeCmd(rt *runtime) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Build the combined table and serve the dashboard and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("listen") {
				rt.cfg.ListenAddr = listen
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer cancel()

			a, err := app.New(ctx, app.Deps{Cfg: rt.cfg, Logger: rt.logger})
			if err != nil {
				return err
			}
			return app.Serve(ctx, a, rt.cfg, rt.logger)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides LISTEN_ADDR)")
	return cmd
}
