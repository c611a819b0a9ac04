// Package cmd defines and implements the CLI commands for the runscout
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/runcalcs/runscout/internal/app"
	"github.com/runcalcs/runscout/internal/config"
	"github.com/spf13/cobra"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType struct{}

var appKey appKeyType

// newApp is the application factory. It is a variable so tests can replace
// it with a fake factory.
var newApp = func(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(ctx, cfg)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runscout",
		Short: "Marathon race crawler, running-news crawler, and daily-tip generator",
		Long: `runscout collects the data behind the runcalcs website: it crawls
seed pages for marathon race listings and running-news articles, merges them
into canonical JSON snapshots in object storage, and generates a daily
running tip via the OpenAI API.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(*app.App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; env vars with prefix RUNSCOUT override)")

	cmd.AddCommand(newCrawlRacesCmd())
	cmd.AddCommand(newCrawlArticlesCmd())
	cmd.AddCommand(newTipCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

func resolveApp(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
