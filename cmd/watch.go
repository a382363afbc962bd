package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dashu-baba/docker-service-manager/internal/metrics"
	"github.com/dashu-baba/docker-service-manager/internal/monitor"
	"github.com/dashu-baba/docker-service-manager/internal/render"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

const shutdownTimeout = 5 * time.Second

func newWatchCmd(o *rootOptions) *cobra.Command {
	var (
		interval    time.Duration
		full        bool
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Produce health reports periodically until interrupted",
		Long: `Produce a health report every --interval and log a summary of each.
With --metrics-addr the latest report is also exported as Prometheus gauges
on /metrics and as JSON on /status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := o.env(cmd)
			cfg := a.Config
			if !cmd.Flags().Changed("interval") {
				interval = cfg.WatchInterval()
			}
			if !cmd.Flags().Changed("full") {
				full = cfg.Watch.Full
			}
			if !cmd.Flags().Changed("metrics-addr") {
				metricsAddr = cfg.Watch.MetricsAddr
			}

			logger := a.Logger()
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			exporter := metrics.NewExporter()
			serveErr := make(chan error, 1)
			if metricsAddr != "" {
				srv := &http.Server{Addr: metricsAddr, Handler: exporter.Mux(), ReadHeaderTimeout: 5 * time.Second}
				go func() {
					logger.Info().Str("addr", metricsAddr).Msg("starting metrics server")
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						serveErr <- err
						cancel()
					}
				}()
				defer func() {
					sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer scancel()
					_ = srv.Shutdown(sctx)
				}()
			}

			printed := monitor.ObserverFunc(func(r *types.HealthReport) {
				render.Summary(a.Out, r)
			})
			err := monitor.NewLoop(a.Reporter, interval, full, logger, exporter, printed).Run(ctx)

			select {
			case serr := <-serveErr:
				return fmt.Errorf("metrics server: %w", serr)
			default:
			}
			return failed(err)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", monitor.DefaultInterval, "time between reports")
	cmd.Flags().BoolVar(&full, "full", false, "produce full reports instead of quick ones")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9323")
	return cmd
}
