package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage uploaded PDFs and summaries",
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded PDFs",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsAddCmd = &cobra.Command{
	Use:   "add [file...]",
	Short: "Upload PDF files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDocumentsAdd,
}

var documentsRemoveCmd = &cobra.Command{
	Use:   "remove [filename]",
	Short: "Delete an uploaded PDF or summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsRemove,
}

var documentsSummaries bool

func init() {
	documentsListCmd.Flags().BoolVar(&documentsSummaries, "summaries", false, "use the generated summaries folder")
	documentsRemoveCmd.Flags().BoolVar(&documentsSummaries, "summaries", false, "use the generated summaries folder")
	documentsCmd.AddCommand(documentsListCmd, documentsAddCmd, documentsRemoveCmd)
	rootCmd.AddCommand(documentsCmd)
}

func selectedFolder() domain.Folder {
	if documentsSummaries {
		return domain.FolderDownloads
	}
	return domain.FolderUploads
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errNotConfigured
	}

	docs, err := documentService.List(cmd.Context(), selectedFolder())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for _, d := range docs {
		cmd.Printf("  %-40s %10s  %s\n", d.Filename, d.FormatSize(), d.ModTime.Format("2006-01-02 15:04"))
	}
	return nil
}

func runDocumentsAdd(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured
	}

	var errs []error
	for _, path := range args {
		doc, err := uploadFile(cmd, path)
		if err != nil {
			cmd.PrintErrf("  %s: %v\n", path, err)
			errs = append(errs, err)
			continue
		}
		cmd.Printf("Uploaded %s (%s)\n", doc.Filename, doc.FormatSize())
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d uploads failed", len(errs), len(args))
	}
	return nil
}

func uploadFile(cmd *cobra.Command, path string) (domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Document{}, err
	}
	defer f.Close()
	return documentService.Upload(cmd.Context(), filepath.Base(path), f)
}

func runDocumentsRemove(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured
	}

	name := args[0]
	err := documentService.Delete(cmd.Context(), selectedFolder(), name)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: file not found", name)
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	cmd.Printf("Deleted %s\n", name)
	return nil
}
