package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status and cache counts",
	Long: `Shows, for each resource type, when it was last synchronised,
how many items the last pass processed and how many records the local
cache holds.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if syncRunner == nil || cacheStore == nil {
		return errors.New("services not configured")
	}

	owner, err := resolveOwner()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	states, err := syncRunner.Status(ctx, owner)
	if err != nil {
		return fmt.Errorf("reading sync status: %w", err)
	}

	byResource := make(map[domain.ResourceType]domain.SyncState, len(states))
	for _, state := range states {
		byResource[state.Resource] = state
	}

	cmd.Printf("Sync status for retailer %s\n\n", owner)
	cmd.Printf("  %-10s %-22s %-12s %s\n", "RESOURCE", "LAST SYNC", "LAST COUNT", "CACHED")

	for _, resource := range domain.AllResourceTypes() {
		lastSync := "never"
		lastCount := "-"
		if state, ok := byResource[resource]; ok {
			if !state.LastSyncAt.IsZero() {
				lastSync = state.LastSyncAt.Local().Format("2006-01-02 15:04:05")
				lastCount = fmt.Sprintf("%d", state.ItemsSynced)
			}
			if state.InProgress {
				lastSync += " (running)"
			}
		}

		count, err := cacheStore.Count(ctx, owner, resource)
		if err != nil {
			return fmt.Errorf("counting %s: %w", resource, err)
		}

		cmd.Printf("  %-10s %-22s %-12s %d\n", resource, lastSync, lastCount, count)
	}

	needs, err := syncRunner.NeedsInitialSync(ctx, owner)
	if err != nil {
		return fmt.Errorf("checking sync history: %w", err)
	}
	if needs {
		cmd.Println("\nInitial sync incomplete. Run 'kvsync sync' to bootstrap the cache.")
	}

	return nil
}

// formatDuration renders a duration compactly for table output.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
