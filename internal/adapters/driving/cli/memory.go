package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect and clear conversation memory",
}

var memoryClearCmd = &cobra.Command{
	Use:   "clear [session]",
	Short: "Forget a session's conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runMemoryClear,
}

var memoryStatsCmd = &cobra.Command{
	Use:   "stats [session]",
	Short: "Show how many turns a session holds",
	Args:  cobra.ExactArgs(1),
	RunE:  runMemoryStats,
}

var memorySessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List sessions holding conversation memory",
	Args:  cobra.NoArgs,
	RunE:  runMemorySessions,
}

func init() {
	memoryCmd.AddCommand(memoryClearCmd, memoryStatsCmd, memorySessionsCmd)
	rootCmd.AddCommand(memoryCmd)
}

func runMemoryClear(cmd *cobra.Command, args []string) error {
	if memoryService == nil {
		return errNotConfigured
	}
	if err := memoryService.Clear(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to clear memory: %w", err)
	}
	cmd.Printf("Cleared conversation memory for %s\n", args[0])
	return nil
}

func runMemoryStats(cmd *cobra.Command, args []string) error {
	if memoryService == nil {
		return errNotConfigured
	}
	stats, err := memoryService.Stats(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to read memory: %w", err)
	}
	cmd.Printf("%s: %d/%d turns\n", args[0], stats.Count, stats.MaxSize)
	return nil
}

func runMemorySessions(cmd *cobra.Command, _ []string) error {
	if memoryService == nil {
		return errNotConfigured
	}
	ids, err := memoryService.Sessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		cmd.Println("No sessions.")
		return nil
	}
	for _, id := range ids {
		cmd.Println(id)
	}
	return nil
}
