package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

// DefaultCLISession is the conversation used by 'pdfiq ask'.
const DefaultCLISession = "cli"

var (
	askSession string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the uploaded documents",
	Long: `Answer a question from the uploaded PDFs.

Questions in the same --session share conversation memory, so follow-up
questions can refer to earlier answers.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", DefaultCLISession, "conversation session id")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errNotConfigured
	}

	question := strings.Join(args, " ")
	result, err := askService.Ask(cmd.Context(), askSession, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(result.Response)
	printDownloads(cmd, result.Downloads)
	return nil
}

func printDownloads(cmd *cobra.Command, d domain.Downloads) {
	if d.IsEmpty() {
		return
	}
	base := serverURL()
	cmd.Println()
	if d.Original != "" {
		cmd.Printf("Original: %s%s\n", base, d.Original)
	}
	if d.Summary != "" {
		cmd.Printf("Summary:  %s%s\n", base, d.Summary)
	}
}

// serverURL returns the web server's base URL for download links.
func serverURL() string {
	addr := domain.DefaultAddr
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil && settings.Server.Addr != "" {
			addr = settings.Server.Addr
		}
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	addr = strings.Replace(addr, "0.0.0.0", "localhost", 1)
	return "http://" + addr
}
