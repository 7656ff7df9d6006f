package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vireo-dev/vireo/internal/config"
	"github.com/vireo-dev/vireo/internal/inspect"
	"github.com/vireo-dev/vireo/pkg/instrument"
	"github.com/vireo-dev/vireo/pkg/vireo"
)

func inspectCmd() *cobra.Command {
	var (
		addr        string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Serve the dependency graph inspector and metrics",
		Long: `Serve the engine inspector over HTTP.

The inspector exposes:

  GET /graph    dependency graph snapshot as JSON
  GET /events   WebSocket stream of engine events

When metrics are enabled, a Prometheus /metrics endpoint is served on a
second address. Addresses come from vireo.json and can be overridden
with flags. This command drives a demo workload so the endpoints have
something to show; embed inspect.NewServer in your own process to
inspect real state.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if errors.Is(err, config.ErrNotFound) {
				cfg = config.New()
			} else if err != nil {
				return err
			}

			if addr != "" {
				cfg.Inspector.Addr = addr
			}
			if metricsAddr != "" {
				cfg.Metrics.Addr = metricsAddr
			}

			srv := inspect.NewServer()
			defer vireo.Observe(srv)()

			if cfg.Metrics.Enabled {
				reg := prometheus.NewRegistry()
				m := instrument.NewMetrics(
					instrument.WithRegistry(reg),
					instrument.WithNamespace(cfg.Metrics.Namespace),
				)
				defer vireo.Observe(m)()

				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
					slog.Info("metrics listening", "addr", cfg.Metrics.Addr)
					if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
						slog.Error("metrics server failed", "error", err)
					}
				}()
			}

			stopDemo := startDemoWorkload()
			defer stopDemo()

			success("inspector listening on http://%s", cfg.Inspector.Addr)
			info("graph:  http://%s/graph", cfg.Inspector.Addr)
			info("events: ws://%s/events", cfg.Inspector.Addr)

			return http.ListenAndServe(cfg.Inspector.Addr, srv.Handler())
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", fmt.Sprintf("Inspector address (default %q)", config.DefaultInspectorAddr))
	cmd.Flags().StringVarP(&metricsAddr, "metrics-addr", "m", "", fmt.Sprintf("Metrics address (default %q)", config.DefaultMetricsAddr))

	return cmd
}
