package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newHealthCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe the adapter hub",
		Long:  `Probes GET /health once and prints the report with every breaker state. With --watch, keeps probing in the background until interrupted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			watch, _ := cmd.Flags().GetBool("watch")
			if watch {
				return e.watchHealth(cmd)
			}

			status := e.client.CheckHealth(cmd.Context())
			if err := printJSON(cmd.OutOrStdout(), status); err != nil {
				return err
			}
			if !status.System.Healthy() {
				return fmt.Errorf("hub unhealthy: %s", status.System.Error)
			}
			return nil
		},
	}

	cmd.Flags().Bool("watch", false, "Keep probing until interrupted")
	cmd.Flags().Duration("interval", 0, "Probe interval (overrides ADAPTER_HEALTH_INTERVAL)")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while watching, e.g. :9090")
	return cmd
}

func (e *env) watchHealth(cmd *cobra.Command) error {
	ctx := cmd.Context()

	interval, _ := cmd.Flags().GetDuration("interval")
	if interval <= 0 {
		interval = e.cfg.Health.Interval
	}

	var srv *http.Server
	serverErrors := make(chan error, 1)
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", e.metrics.Handler())
		srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		go func() {
			e.logger.Info("serving metrics", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErrors <- err
			}
		}()
	}

	if err := e.client.StartHealthMonitoring(interval); err != nil {
		return err
	}
	defer e.client.StopHealthMonitoring()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErrors:
		runErr = fmt.Errorf("metrics server: %w", err)
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			e.logger.Warn("metrics server shutdown", zap.Error(err))
		}
	}

	if report, ok := e.client.LastHealthReport(); ok {
		if err := printJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	}
	return runErr
}
