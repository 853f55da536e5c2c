package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/opsfabric/premise/internal/server"
	"github.com/opsfabric/premise/pkg/configuration"
	"github.com/opsfabric/premise/pkg/logging"
	"github.com/opsfabric/premise/pkg/metrics"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			logger := conf.Logger()

			if conf.OpenTelemetry.Enabled {
				cleanup := logging.SetupTracing(
					context.Background(),
					conf.OpenTelemetry.ServiceName,
					conf.OpenTelemetry.TempoURL,
				)
				defer cleanup()
			}

			app, pool, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if conf.Prometheus.Enabled {
				app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
			}

			serverInstance, err := server.Default(&server.DefaultOptions{
				Logger:        logger,
				Configuration: conf,
				Application:   app,
				Pool:          pool,
			})
			if err != nil {
				return err
			}
			logger.Infof("listening on %s", conf.Origin)
			return serverInstance.Start(conf.SocketAddress)
		},
	}
}
