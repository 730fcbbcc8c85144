package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	webserver "github.com/custodia-labs/pdfiq/internal/adapters/driving/http"
	"github.com/custodia-labs/pdfiq/internal/logger"
)

var (
	serveAddr   string
	serveWarmup bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web interface",
	Long: `Start the PDF-IQ web interface.

Pages:
  /          upload and list PDFs
  /chat      ask questions about the uploaded documents
  /admin     manage uploads and summaries (requires 'pdfiq admin hash-password')

The server stops gracefully on Ctrl+C.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings, 0.0.0.0:5050)")
	serveCmd.Flags().BoolVar(&serveWarmup, "warmup", false, "build the index before the first question")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if askService == nil || documentService == nil || memoryService == nil || settingsService == nil {
		return errNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	addr := settings.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server, err := webserver.NewServer(&webserver.Ports{
		Ask:       askService,
		Documents: documentService,
		Memory:    memoryService,
		Indexer:   indexer,
	}, webserver.Config{
		Addr:           addr,
		SecretKey:      settings.Server.SecretKey,
		MaxUploadBytes: settings.Server.MaxUploadBytes,
		Admin:          settings.Admin,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if settings.Storage.Watch {
		startWatcher(ctx)
	}
	if serveWarmup && indexer != nil {
		go warmup(ctx)
	}

	return server.Run(ctx)
}

// startWatcher runs the uploads watcher until ctx is done.
func startWatcher(ctx context.Context) {
	if watchUploads == nil {
		return
	}
	go func() {
		if err := watchUploads(ctx); err != nil {
			logger.Warn("upload watcher stopped: %v", err)
		}
	}()
}

func warmup(ctx context.Context) {
	ready, err := indexer.EnsureReady(ctx)
	switch {
	case err != nil:
		logger.Warn("index warmup failed: %v", err)
	case !ready:
		logger.Info("index warmup skipped: no documents")
	default:
		stats := indexer.Stats()
		logger.Info("index ready: %d documents, %d chunks", stats.Documents, stats.Chunks)
	}
}
