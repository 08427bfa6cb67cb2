package cli

import (
	"fmt"

	"essaylens/internal/backend"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the analysis service is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		logger := getLoggerFromContext(cmd.Context())
		client := newBackend(cfg, logger)

		resp, err := client.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("analysis service at %s is unavailable: %s: %w",
				cfg.Backend.BaseURL, backend.Describe(err), err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Backend:     %s\n", cfg.Backend.BaseURL)
		fmt.Fprintf(out, "Status:      %s\n", resp.Status)
		if resp.Version != "" {
			fmt.Fprintf(out, "Version:     %s\n", resp.Version)
		}
		if resp.Environment != "" {
			fmt.Fprintf(out, "Environment: %s\n", resp.Environment)
		}
		return nil
	},
}
