package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Siddhant-K-code/simplify/pkg/cache"
	"github.com/Siddhant-K-code/simplify/pkg/metrics"
	"github.com/Siddhant-K-code/simplify/pkg/server"
	"github.com/Siddhant-K-code/simplify/pkg/telemetry"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the Simplify HTTP API server",
	Long: `Starts an HTTP API server for sentence simplification.

Example:
  simplify api --port 8080
  simplify api --api-keys key1,key2 --no-cache

The server exposes:
  POST /v1/simplify  - Simplify one sentence
  POST /v1/batch     - Simplify many sentences (SSE with Accept: text/event-stream)
  POST /v1/explain   - Per-stage trace for one sentence
  GET  /v1/levels    - Compression levels
  GET  /v1/rules     - Active rule tables
  GET  /health       - Health check
  GET  /metrics      - Prometheus metrics`,
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().IntP("port", "p", 8080, "HTTP server port")
	apiCmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	apiCmd.Flags().String("api-keys", "", "Comma-separated list of valid API keys (or use SIMPLIFY_AUTH_API_KEYS)")
	apiCmd.Flags().Bool("no-cache", false, "disable the result cache")
	apiCmd.Flags().Bool("no-metrics", false, "disable the /metrics endpoint")

	_ = viper.BindPFlag("server.port", apiCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", apiCmd.Flags().Lookup("host"))
}

func runAPI(cmd *cobra.Command, args []string) error {
	apiKeysStr, _ := cmd.Flags().GetString("api-keys")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	noMetrics, _ := cmd.Flags().GetBool("no-metrics")

	cfg, s, logger, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	apiKeys := cfg.Auth.APIKeys
	if apiKeysStr != "" {
		apiKeys = strings.Split(apiKeysStr, ",")
	}

	ctx := context.Background()

	tracer, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Tracing.Enabled,
		Exporter:    cfg.Telemetry.Tracing.Exporter,
		Endpoint:    cfg.Telemetry.Tracing.Endpoint,
		SampleRate:  cfg.Telemetry.Tracing.SampleRate,
		ServiceName: "simplify",
		Insecure:    cfg.Telemetry.Tracing.Insecure,
	})
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracer.Shutdown(shutdownCtx)
	}()

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithTracer(tracer),
	}
	if !noMetrics {
		opts = append(opts, server.WithMetrics(metrics.New()))
	}
	cacheOn := cfg.Cache.Enabled && !noCache
	if cacheOn {
		c := cache.NewMemoryCache(cacheConfig(cfg))
		defer c.Close()
		opts = append(opts, server.WithCache(c, cfg.Cache.TTL))
	}

	srv := server.New(s, server.Config{
		APIKeys:      apiKeys,
		MaxBatchSize: cfg.Server.MaxBatchSize,
		Workers:      cfg.Batch.Workers,
	}, opts...)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		fmt.Fprintln(os.Stderr, "\nShutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("server shutdown error")
		}
		close(done)
	}()

	// Start server
	fmt.Printf("Simplify API server starting on %s\n", addr)
	fmt.Printf("  Level: %d (%s)\n", s.Level(), s.Rules().Label(s.Level()))
	fmt.Printf("  Auth: %v\n", srv.HasAuth())
	fmt.Printf("  Cache: %v\n", cacheOn)
	fmt.Printf("  Tracing: %v\n", cfg.Telemetry.Tracing.Enabled)
	fmt.Println()
	fmt.Println("Endpoints:")
	fmt.Printf("  POST http://%s/v1/simplify\n", addr)
	fmt.Printf("  POST http://%s/v1/batch\n", addr)
	fmt.Printf("  POST http://%s/v1/explain\n", addr)
	fmt.Printf("  GET  http://%s/v1/levels\n", addr)
	fmt.Printf("  GET  http://%s/health\n", addr)
	if !noMetrics {
		fmt.Printf("  GET  http://%s/metrics\n", addr)
	}
	fmt.Println()

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	fmt.Println("Server stopped")
	return nil
}
