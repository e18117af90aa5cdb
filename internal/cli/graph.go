package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/loreline/loreline/internal/knowledge"
)

var graphFormat string

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build or inspect the owner's knowledge graph",
}

var graphBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the knowledge graph from all stored documents",
	Long: `Condense every document the owner has and reduce them into a
topic graph. Each rebuild bumps the stored graph version. The rebuild is
tracked as a job so it can be inspected afterwards.

Examples:
  loreline graph build --owner alice`,
	RunE: runGraphBuild,
}

var graphShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored knowledge graph",
	Long: `Print the owner's knowledge graph. A staleness warning appears
when documents were added after the last build.

Examples:
  loreline graph show --owner alice
  loreline graph show --format yaml`,
	RunE: runGraphShow,
}

func init() {
	graphShowCmd.Flags().StringVar(&graphFormat, "format", "json", "output format (json or yaml)")
	graphCmd.AddCommand(graphBuildCmd)
	graphCmd.AddCommand(graphShowCmd)
	rootCmd.AddCommand(graphCmd)
}

func runGraphBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	ledger := getLedger()

	job, err := ledger.Create(ctx, ownerID, "graph-rebuild")
	if err != nil {
		return fmt.Errorf("create rebuild job: %w", err)
	}
	fmt.Printf("Rebuild job %s\n", job.ID)

	builder, err := getBuilder(ctx, func(percent int, stage string) {
		fmt.Printf("  [%3d%%] %s\n", percent, stage)
		if err := ledger.Advance(ctx, job.ID, percent, stage); err != nil {
			logger.Warn("progress update failed", "job_id", job.ID, "error", err)
		}
	})
	if err != nil {
		return err
	}

	graph, err := builder.Rebuild(ctx, ownerID)
	if err != nil {
		_ = ledger.Fail(ctx, job.ID, "Could not rebuild the knowledge graph. Please try again.")
		return fmt.Errorf("rebuild graph: %w", err)
	}
	if graph.IsEmpty() {
		_ = ledger.Complete(ctx, job.ID, nil)
		fmt.Println("No documents to build a graph from")
		return nil
	}

	result, err := json.Marshal(graph)
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	if err := ledger.Complete(ctx, job.ID, result); err != nil {
		logger.Warn("could not complete rebuild job", "job_id", job.ID, "error", err)
	}

	fmt.Printf("Knowledge graph v%d built from %d document(s)\n", graph.Version, graph.SourceCount)
	fmt.Printf("  Topics: %d\n", len(graph.Topics))
	fmt.Printf("  Connections: %d\n", len(graph.Connections))
	return nil
}

func runGraphShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	graph, stale, err := knowledge.Status(ctx, backend, backend, ownerID)
	if err != nil {
		return fmt.Errorf("get graph: %w", err)
	}
	if stale {
		fmt.Fprintln(os.Stderr, "Note: documents were added since the last build; run 'loreline graph build' to refresh")
	}

	switch graphFormat {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(graph)
	case "json":
		return printJSON(graph)
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", graphFormat)
	}
}
