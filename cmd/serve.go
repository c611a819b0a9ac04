package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/runcalcs/runscout/internal/api"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newServeCmd creates the 'serve' subcommand: an HTTP service exposing the
// jobs behind POST endpoints, for platforms that trigger work via HTTP.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service exposing the jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			logger := appInstance.Logger

			races, err := appInstance.RaceJob()
			if err != nil {
				return fmt.Errorf("build race job: %w", err)
			}
			articles, err := appInstance.ArticleJob()
			if err != nil {
				return fmt.Errorf("build article job: %w", err)
			}
			tips, err := appInstance.TipJob(cmd.Context())
			if err != nil {
				return fmt.Errorf("build tip job: %w", err)
			}

			apiKey := ""
			if appInstance.Config.Auth.Enabled {
				apiKey = appInstance.Config.Auth.APIKey
			}
			server := api.NewServer(api.Config{APIKey: apiKey}, races, articles, tips, logger.Named("api"))

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", appInstance.Config.Server.Port),
				Handler:           server.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				logger.Info("http server started", zap.Int("port", appInstance.Config.Server.Port))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server error", zap.Error(err))
					stop()
				}
			}()

			<-ctx.Done()
			logger.Info("shutdown initiated")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		},
	}
}
