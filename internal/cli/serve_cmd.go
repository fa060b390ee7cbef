package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/planboard/internal/api"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planning REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = app.Serve.Listen
			}
			logger := app.logger()
			srv := api.NewServer(app.Planning, logger)

			listenErr := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", listen)
				listenErr <- srv.Listen(listen)
			}()

			wait := gfshutdown.GracefulShutdown(
				cmd.Context(),
				app.Serve.ShutdownTimeout,
				map[string]gfshutdown.Operation{
					"http": func(ctx context.Context) error {
						logger.Info("graceful shutdown initiated")
						return srv.Shutdown(ctx)
					},
				},
			)

			select {
			case err := <-listenErr:
				if err != nil {
					return fmt.Errorf("listening on %s: %w", listen, err)
				}
				return nil
			case code := <-wait:
				if code != 0 {
					return fmt.Errorf("shutdown finished with exit code %d", code)
				}
				logger.Info("server stopped")
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config)")

	return cmd
}
