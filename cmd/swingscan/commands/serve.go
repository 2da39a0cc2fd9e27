package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/swingscan/internal/api"
	"github.com/wonny/swingscan/internal/api/handlers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the REST and WebSocket API.

Endpoints:
  GET  /health               - Health check
  POST /api/scans            - Run a scan {"symbols": [...], "top_n": 10}
  GET  /api/scans            - Stored scan summaries (?limit=N)
  GET  /api/scans/latest     - Latest report
  GET  /api/scans/{id}       - One report
  GET  /api/scans/{id}/csv   - Report as CSV
  GET  /ws/scan              - Scan with live progress (?symbols=a,b&top_n=N)
  GET  /metrics              - Prometheus metrics

Example:
  go run ./cmd/swingscan serve
  go run ./cmd/swingscan serve --port 8080 --with-scheduler`,
	RunE: runServe,
}

var (
	servePort          string
	serveWithScheduler bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API port (default $PORT)")
	serveCmd.Flags().BoolVar(&serveWithScheduler, "with-scheduler", false, "also run the scheduled jobs")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.close()

	if servePort != "" {
		a.cfg.Port = servePort
	}
	log := a.log

	h := api.Handlers{
		Scan:   handlers.NewScanHandler(a.service, a.repo, log),
		Stream: handlers.NewStreamHandler(a.service, a.cfg.AllowedOrigins, log),
	}
	if a.db != nil {
		h.Database = a.db
	}
	router := api.NewRouter(h, a.metrics, log)
	server := api.New(a.cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	if serveWithScheduler {
		s, err := a.newScheduler()
		if err != nil {
			return err
		}
		s.Start()
		defer s.Stop()
	}

	PrintSuccess(fmt.Sprintf("Server running on http://localhost:%s", a.cfg.Port))
	PrintInfo("Press Ctrl+C to stop")

	// Wait for interrupt signal or a failed listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
