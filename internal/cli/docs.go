package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs [document-id]",
	Short: "List or inspect stored documents",
	Long: `List the owner's documents, or print one document as JSON.

Examples:
  loreline docs --owner alice
  loreline docs 7c1b2a90-0f3e-4d2b-b7aa-332211445566`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocs,
}

func init() {
	rootCmd.AddCommand(docsCmd)
}

func runDocs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if len(args) == 1 {
		return showDocument(ctx, args[0])
	}
	return listDocuments(ctx)
}

func listDocuments(ctx context.Context) error {
	docs, err := backend.ListDocumentsByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	if len(docs) == 0 {
		fmt.Println("No documents found")
		return nil
	}

	fmt.Printf("%-38s %-12s %s\n", "ID", "TYPE", "TITLE")
	fmt.Println("--------------------------------------------------------------------------")
	for _, doc := range docs {
		fmt.Printf("%-38s %-12s %s\n", doc.ID, doc.ContentType, doc.Title)
	}
	return nil
}

func showDocument(ctx context.Context, id string) error {
	doc, err := backend.GetDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	return printJSON(doc)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
