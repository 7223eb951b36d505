package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/khanglvm/paloma/internal/config"
	"github.com/khanglvm/paloma/internal/knowledge"
	"github.com/khanglvm/paloma/internal/maintenance"
	"github.com/khanglvm/paloma/internal/rpc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the 'serve' command running the JSON-RPC server.
func NewServeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the assistant as a JSON-RPC server (stdio transport)",
		Long: `Start the paloma JSON-RPC server using stdio transport.

Requests are read one per line from stdin and answered on stdout:
  • chat/ask           - Answer a question
  • chat/feedback      - Record feedback on an answer
  • learning/insights  - Summary of what was learned
  • learning/profile   - Personalization state of a user
  • learning/export    - Full dump of the learning state
  • knowledge/search   - Search the knowledge base

Logs go to stderr. When server.metricsAddr is set, Prometheus metrics are
served on /metrics. Learned state is swept on server.maintenanceSpec.`,
		Example: `  # Run directly
  paloma serve

  # One request
  echo '{"jsonrpc":"2.0","id":1,"method":"chat/ask","params":{"query":"TVA"}}' | paloma serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, opts)
		},
	}

	return cmd
}

// runServe serves until stdin closes or ctx is cancelled.
func runServe(ctx context.Context, cmd *cobra.Command, opts *globalOptions) error {
	rt, err := openRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := rt.cfg

	if cfg.Server.MaintenanceSpec != "" {
		sched, err := maintenance.NewScheduler(cfg.Server.MaintenanceSpec)
		if err != nil {
			return err
		}
		sched.RegisterTask(maintenance.RetentionTask{Learning: rt.learning})
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop(shutdownTimeout)
	}

	if cfg.Knowledge.Watch && cfg.Knowledge.CatalogPath != "" {
		w, err := knowledge.NewWatcher(rt.kb, config.ExpandPath(cfg.Knowledge.CatalogPath))
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			w.Stop()
			return err
		}
		defer w.Stop()
	}

	if cfg.Server.MetricsAddr != "" {
		metricsSrv := startMetricsServer(cfg.Server.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("metrics server shutdown failed")
			}
		}()
	}

	srv := rpc.NewServer(rt.generator, rt.kb)
	log.Info().Str("config", rt.cfgPath).Msg("paloma server started")

	err = srv.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info().Msg("shutdown complete")
	return nil
}

// startMetricsServer serves /metrics on addr in the background.
func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	log.Info().Str("addr", addr).Msg("metrics server listening")

	return srv
}
