// Package cli provides the pdfiq command line interface.
// Services are injected by main through SetServices or SetBootstrap.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfiq/internal/core/ports/driving"
	"github.com/custodia-labs/pdfiq/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// Command annotations controlling how much of the application is built.
const (
	annotationBootstrap = "bootstrap"
	bootstrapNone       = "none"
	bootstrapSettings   = "settings"
)

var errNotConfigured = errors.New("services not configured")

// Services holds the driving ports the commands use.
type Services struct {
	Ask       driving.AskService
	Documents driving.DocumentService
	Memory    driving.MemoryService
	Indexer   driving.Indexer
	Settings  driving.SettingsService

	// Watch blocks until ctx is done, invalidating the index whenever
	// the uploads folder changes. Optional.
	Watch func(ctx context.Context) error
}

// BootstrapOptions describes what a command needs built.
type BootstrapOptions struct {
	// ConfigDir overrides the default ~/.pdfiq.
	ConfigDir string

	// SettingsOnly skips AI providers, storage and the index.
	SettingsOnly bool
}

// Bootstrap builds the services for a command. The returned function
// releases them.
type Bootstrap func(ctx context.Context, opts BootstrapOptions) (*Services, func() error, error)

var (
	askService      driving.AskService
	documentService driving.DocumentService
	memoryService   driving.MemoryService
	indexer         driving.Indexer
	settingsService driving.SettingsService
	watchUploads    func(ctx context.Context) error

	bootstrap     Bootstrap
	closeServices func() error
)

var (
	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "pdfiq",
	Short: "Chat with your PDF documents",
	Long: `PDF-IQ answers questions about uploaded PDF documents.

Upload PDFs through the web interface or 'pdfiq documents add', then ask
questions in the browser, the terminal chat or with 'pdfiq ask'. Answers
are grounded in the most relevant passages and can include download links
for the original file or a generated summary PDF.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.pdfiq)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the services used by all commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	askService = s.Ask
	documentService = s.Documents
	memoryService = s.Memory
	indexer = s.Indexer
	settingsService = s.Settings
	watchUploads = s.Watch
}

// SetBootstrap registers the function that builds services on demand.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	mode := cmd.Annotations[annotationBootstrap]
	if bootstrap == nil || mode == bootstrapNone {
		return nil
	}
	if settingsService != nil && (mode == bootstrapSettings || askService != nil) {
		return nil
	}

	services, closer, err := bootstrap(cmd.Context(), BootstrapOptions{
		ConfigDir:    configDir,
		SettingsOnly: mode == bootstrapSettings,
	})
	if err != nil {
		return err
	}
	SetServices(services)
	closeServices = closer
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	defer logger.Sync() //nolint:errcheck // stderr sync fails on some terminals

	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}
