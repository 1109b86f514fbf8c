package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/leadscan/internal/api"
	"github.com/wonny/leadscan/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Load the price table once and serve it over HTTP.

Endpoints:
  GET  /health         - Health check
  GET  /               - Dashboard (filter form + result table)
  GET  /ws             - Interactive websocket session
  GET  /api/symbols    - Symbols and date coverage
  GET  /api/analysis   - Run the pipeline (start, end, symbols, top_n, order, stop_loss, mover, side)

Example:
  go run ./cmd/leadscan api
  go run ./cmd/leadscan api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== leadscan API Server ===")

	// 1. Load config, logger and price table
	app, err := bootstrap(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}
	cfg, log := app.cfg, app.log

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Rate limiter (Redis when enabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	limiter := api.NewLimiter(redisClient, cfg.RateLimitPerMinute)

	// 3. Router and server
	router := api.NewRouter(app.pipeline, cfg.Pipeline, limiter, log)
	server := api.New(cfg, log, router)

	// 4. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /")
	fmt.Println("  GET  /ws")
	fmt.Println("  GET  /api/symbols")
	fmt.Println("  GET  /api/analysis")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a failed listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
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
