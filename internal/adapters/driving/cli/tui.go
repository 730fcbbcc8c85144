package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfiq/internal/adapters/driving/tui"
)

var tuiSession string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Chat with your documents in the terminal",
	Long: `Launch the interactive terminal chat.

Controls:
  Enter        - Ask the typed question
  Ctrl+L       - Clear conversation memory
  PgUp/PgDn    - Scroll the transcript
  Esc, Ctrl+C  - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiSession, "session", "s", "", "continue an existing session")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := newTUIApp(cmd)
	if err != nil {
		return err
	}

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func newTUIApp(cmd *cobra.Command) (*tui.App, error) {
	app, err := tui.NewApp(&tui.Ports{
		Ask:       askService,
		Documents: documentService,
		Memory:    memoryService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create TUI: %w", err)
	}

	return app.
		WithContext(cmd.Context()).
		WithSession(tuiSession).
		WithDownloadBase(serverURL()), nil
}
