package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newCrawlRacesCmd creates the 'crawl-races' subcommand: one crawl of the
// race seed pages followed by one snapshot write.
func newCrawlRacesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl-races",
		Short: "Crawl the race seed pages and refresh the marathon snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			j, err := appInstance.RaceJob()
			if err != nil {
				return fmt.Errorf("build race job: %w", err)
			}

			summary, err := j.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("run race job: %w", err)
			}

			appInstance.Logger.Info("race crawl finished",
				zap.String("run_id", summary.RunID),
				zap.Int("stored", summary.Stored),
				zap.String("key", summary.Key))
			return nil
		},
	}
}

// newCrawlArticlesCmd creates the 'crawl-articles' subcommand.
func newCrawlArticlesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl-articles",
		Short: "Crawl the news seed pages and refresh the article snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			j, err := appInstance.ArticleJob()
			if err != nil {
				return fmt.Errorf("build article job: %w", err)
			}

			summary, err := j.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("run article job: %w", err)
			}

			appInstance.Logger.Info("article crawl finished",
				zap.String("run_id", summary.RunID),
				zap.Int("stored", summary.Stored),
				zap.String("key", summary.Key))
			return nil
		},
	}
}
