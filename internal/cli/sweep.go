package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sweepMaxAge time.Duration

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete old job records",
	Long: `Delete job records older than the retention age, whatever state
they are in. Stuck jobs from crashed runs go with them.

Examples:
  loreline sweep
  loreline sweep --max-age 1h`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().DurationVar(&sweepMaxAge, "max-age", 0, "retention age (default from config)")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	maxAge := sweepMaxAge
	if maxAge <= 0 {
		maxAge = cfg.JobMaxAge
	}

	n, err := getLedger().Sweep(context.Background(), maxAge)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	fmt.Printf("Removed %d job(s) older than %s\n", n, maxAge)
	return nil
}
