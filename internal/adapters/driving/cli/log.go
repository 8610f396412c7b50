package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent sync history",
	Long:  `Shows the most recent sync log entries for a retailer, newest first.`,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Maximum number of entries to show")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, _ []string) error {
	if syncLogs == nil {
		return errors.New("sync log store not configured")
	}

	owner, err := resolveOwner()
	if err != nil {
		return err
	}

	entries, err := syncLogs.List(cmd.Context(), owner, logLimit)
	if err != nil {
		return fmt.Errorf("reading sync log: %w", err)
	}

	if len(entries) == 0 {
		cmd.Printf("No sync history for retailer %s.\n", owner)
		return nil
	}

	cmd.Printf("Sync history for retailer %s\n\n", owner)
	for _, entry := range entries {
		status := "ok"
		if !entry.Success {
			status = "FAILED"
		}
		cmd.Printf("  %s  %-10s %-16s %-6s %s\n",
			entry.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			entry.Resource, entry.Operation, status,
			formatDuration(entry.Duration))
		cmd.Printf("      processed %d (added %d, updated %d)\n",
			entry.Processed, entry.Added, entry.Updated)
		if entry.ErrorMessage != "" {
			cmd.Printf("      error: %s\n", entry.ErrorMessage)
		}
	}

	return nil
}
