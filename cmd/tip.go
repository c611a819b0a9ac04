package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newTipCmd creates the 'tip' subcommand: generate today's running tip and
// store it under a dated key.
func newTipCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "tip",
		Short: "Generate today's running tip and store it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			j, err := appInstance.TipJob(cmd.Context())
			if err != nil {
				return fmt.Errorf("build tip job: %w", err)
			}

			summary, err := j.Run(cmd.Context(), category)
			if err != nil {
				return fmt.Errorf("run tip job: %w", err)
			}

			appInstance.Logger.Info("tip generated",
				zap.String("run_id", summary.RunID),
				zap.String("key", summary.Key))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "tip category (random when omitted or unknown)")
	return cmd
}
