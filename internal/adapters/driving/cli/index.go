package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the document index",
	Long: `Rebuild the similarity index over all uploaded PDFs and report its size.

The index is normally built on the first question after an upload. Run this
to check that every document can be read and embedded.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if indexer == nil {
		return errNotConfigured
	}

	indexer.Invalidate()
	ready, err := indexer.EnsureReady(cmd.Context())
	if err != nil {
		return err
	}
	if !ready {
		cmd.Println(domain.MessageNoDocuments)
		return nil
	}

	stats := indexer.Stats()
	cmd.Printf("Indexed %d documents (%d chunks)\n", stats.Documents, stats.Chunks)
	for _, name := range stats.Skipped {
		cmd.Printf("  skipped: %s\n", name)
	}
	return nil
}
