package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs <job-id>",
	Short: "Inspect a processing job",
	Long: `Show status, progress, and outcome for a job.

Examples:
  loreline jobs 4fd1c9e2-7b43-4c1e-9a93-1f2a5cbb0f11`,
	Args: cobra.ExactArgs(1),
	RunE: runJobs,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	job, err := getLedger().Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}

	fmt.Printf("Job: %s\n", job.ID)
	fmt.Printf("  Owner: %s\n", job.OwnerID)
	fmt.Printf("  Source: %s\n", job.SourceRef)
	fmt.Printf("  Status: %s\n", job.Status)
	fmt.Printf("  Progress: %d%% (%s)\n", job.Progress, job.Stage)
	fmt.Printf("  Created: %s\n", job.CreatedAt.Format(time.RFC3339))
	fmt.Printf("  Updated: %s\n", job.UpdatedAt.Format(time.RFC3339))
	if job.Error != "" {
		fmt.Printf("  Error: %s\n", job.Error)
	}
	if len(job.Result) > 0 {
		fmt.Printf("\nResult:\n%s\n", job.Result)
	}
	return nil
}
