package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crxaudit/crxaudit-cli/internal/api"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP API",
	Long: `Start an HTTP server exposing the analysis pipeline:

  POST /api/v1/analyze   upload a .crx/.zip package, receive the analysis JSON
  GET  /api/v1/healthz   liveness probe`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := stringFlagOrConfig(cmd.Flags(), "addr", cliConfig.Serve.Addr)
		authToken := stringFlagOrConfig(cmd.Flags(), "auth-token", cliConfig.Serve.AuthToken)
		rateLimit := intFlagOrConfig(cmd.Flags(), "rate-limit", cliConfig.Serve.RateLimit)
		rateBurst := intFlagOrConfig(cmd.Flags(), "rate-burst", cliConfig.Serve.RateBurst)
		shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

		apiLogger, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("init server logger: %w", err)
		}
		defer func() { _ = apiLogger.Sync() }()

		server := &http.Server{
			Addr: addr,
			Handler: api.NewServer(api.Config{
				AuthToken: authToken,
				Logger:    apiLogger,
				RateLimit: rateLimit,
				RateBurst: rateBurst,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Infow("api server listening", "addr", addr, "auth", authToken != "")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case sig := <-quit:
			logger.Infow("shutting down", "signal", sig.String())
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Infow("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().String("auth-token", "", "require this X-Auth-Token on analyze requests (empty disables auth)")
	serveCmd.Flags().Int("rate-limit", defaultServeRateLimit, "requests per second per client IP (0 disables)")
	serveCmd.Flags().Int("rate-burst", defaultServeRateLimit*2, "rate limiter burst size")
	serveCmd.Flags().Duration("shutdown-timeout", 15*time.Second, "how long to wait for in-flight requests on shutdown")
}
