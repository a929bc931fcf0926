package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/agentry"
	httpAdapter "github.com/aretw0/agentry/internal/adapters/http"
	"github.com/aretw0/agentry/internal/cli"
	"github.com/aretw0/agentry/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Serve runtime metrics while a supervisor runs",
	Long:  `Starts a long-running supervision tree and exposes /health, /info and /metrics over HTTP until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, cfg, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		addr := cfg.Metrics.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}
		if rt.Metrics() == nil {
			// Serving makes no sense without collectors.
			cfg.Metrics.Enabled = true
			rt = agentry.New(
				agentry.WithConfig(cfg),
				agentry.WithLogger(rt.Logger()),
				agentry.WithMetrics(observability.NewMetrics(cfg.Metrics.Namespace)),
			)
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           httpAdapter.NewHandler(rt, agentry.Version),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := cli.SignalContext(cmd.Context())
		defer stop()

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Serving agentry metrics on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Keep workers churning so the metrics move.
		load := make(chan error, 1)
		go func() {
			_, err := cli.Supervise(ctx, rt, 4, int(^uint(0)>>1), 50*time.Millisecond)
			load <- err
		}()

		select {
		case err := <-serverErrors:
			stop()
			<-load
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			fmt.Printf("\nStart shutdown... Signal: %v\n", cli.Signal(ctx))
		}

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
			_ = srv.Close()
		}
		if err := <-load; err != nil {
			rt.Logger().Warn("supervisor ended with error", "err", err)
		}
		fmt.Println("Agentry server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":2112", "Listen address")
}
