package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/loreline/loreline/internal/extract"
	"github.com/loreline/loreline/internal/models"
)

var ingestNoWait bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <source-ref>",
	Short: "Process a source into structured notes",
	Long: `Submit a source (video URL, article URL, or bare video ID) for
processing. The job runs through extraction and synthesis and stores a
structured document for the owner.

Examples:
  loreline ingest https://www.youtube.com/watch?v=dQw4w9WgXcQ
  loreline ingest https://example.com/blog/post --owner alice
  loreline ingest dQw4w9WgXcQ --no-wait`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestNoWait, "no-wait", false, "submit the job and exit without waiting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	sourceRef := args[0]

	runner, err := getRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	fmt.Printf("Source type: %s\n", extract.DetectSourceType(sourceRef))

	job, err := runner.Submit(ctx, ownerID, sourceRef)
	if err != nil {
		return fmt.Errorf("submit job: %w", err)
	}
	fmt.Printf("Job %s queued\n", job.ID)

	if ingestNoWait {
		fmt.Printf("Check it later with: loreline jobs %s\n", job.ID)
		return nil
	}

	final, err := waitForJob(ctx, job.ID)
	if err != nil {
		return err
	}

	if final.Status == models.JobStatusFailed {
		return fmt.Errorf("job failed: %s", final.Error)
	}

	var doc models.StructuredDocument
	if err := json.Unmarshal(final.Result, &doc); err != nil {
		return fmt.Errorf("decode job result: %w", err)
	}
	fmt.Printf("\n✓ %s (%s)\n", doc.Title, doc.ContentType)
	fmt.Printf("  %s\n", doc.Overview)
	fmt.Printf("  Document: %s\n", doc.ID)
	return nil
}

// waitForJob polls the ledger until the job reaches a terminal state,
// printing stage changes as they happen.
func waitForJob(ctx context.Context, jobID string) (*models.Job, error) {
	ledger := getLedger()
	lastStage := ""
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		job, err := ledger.Get(ctx, jobID)
		if err != nil {
			return nil, fmt.Errorf("poll job: %w", err)
		}
		if job.Stage != lastStage {
			fmt.Printf("  [%3d%%] %s\n", job.Progress, job.Stage)
			lastStage = job.Stage
		}
		if job.Status.IsTerminal() {
			return job, nil
		}
	}
}
