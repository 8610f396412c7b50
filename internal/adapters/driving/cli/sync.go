package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
)

var syncFull bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise retailer data into the local cache",
	Long: `Pulls products, customers, orders and invoices from KiotViet into
the local cache.

The first sync for a retailer is a full bootstrap. Later runs are
incremental: only records modified since each resource type's last
successful sync are fetched. Use --full to force a bootstrap pass.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "Force a full sync instead of an incremental one")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncRunner == nil {
		return errors.New("sync service not configured")
	}

	owner, err := resolveOwner()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	full := syncFull
	if !full {
		needs, err := syncRunner.NeedsInitialSync(ctx, owner)
		if err != nil {
			return fmt.Errorf("checking sync history: %w", err)
		}
		if needs {
			cmd.Printf("No complete sync history for %s, running a full sync.\n", owner)
			full = true
		}
	}

	run := syncRunner.RunIncrementalSync
	label := "Incremental sync"
	if full {
		run = syncRunner.RunFullSync
		label = "Full sync"
	}

	cmd.Printf("%s for retailer %s...\n", label, owner)

	if useProgressBar() {
		err = runSyncWithProgressBar(ctx, owner, run)
	} else {
		cancel := syncRunner.Subscribe(plainProgress(cmd, owner))
		defer cancel()
		err = run(ctx, owner)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Retailer %s synchronised successfully.\n", owner)
	return nil
}

// useProgressBar reports whether the interactive progress bar should be
// shown. Verbose mode prints to stderr and would fight the bar.
func useProgressBar() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && !flagVerbose
}

// plainProgress returns a subscriber that prints step transitions for
// non-interactive output (pipes, CI).
func plainProgress(cmd *cobra.Command, ownerID string) func(domain.ProgressSnapshot) {
	var lastStep = -1
	return func(snap domain.ProgressSnapshot) {
		if snap.OwnerID != ownerID {
			return
		}
		if snap.Done {
			cmd.Printf("[%3.0f%%] %s\n", snap.OverallProgress, snap.Message)
			return
		}
		if snap.StepIndex != lastStep {
			lastStep = snap.StepIndex
			cmd.Printf("[%3.0f%%] step %d/%d: %s\n",
				snap.OverallProgress, snap.StepIndex+1, snap.TotalSteps, snap.Message)
		}
	}
}

// syncFunc is the orchestrator entry point a sync command runs.
type syncFunc func(ctx context.Context, ownerID string) error
