package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/jengzang/patroliq-backend-go/internal/api"
	"github.com/jengzang/patroliq-backend-go/internal/config"
	"github.com/jengzang/patroliq-backend-go/internal/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Float64("rate-limit", 20, "requests per second per client, 0 disables")
	serveCmd.Flags().Int("rate-burst", 40, "rate limiter burst size")
	bindFlags(serveCmd, false, map[string]string{
		config.KeyRateLimitRPS:   "rate-limit",
		config.KeyRateLimitBurst: "rate-burst",
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, db, err := setup(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.UsesDefaultSecret() {
		slog.Warn("JWT_SECRET is not set; registry writes accept tokens signed with the placeholder secret")
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := api.SetupRouter(cfg, db, observability.NewMetrics())
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Port, "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
