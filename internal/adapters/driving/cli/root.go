// Package cli provides the command-line interface for kvsync.
// Commands are thin: they resolve the target retailer, call into the
// core services through driving ports and format the result.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	configfile "github.com/lamdong-labs/kvsync-cli/internal/adapters/driven/config/file"
	"github.com/lamdong-labs/kvsync-cli/internal/adapters/driven/storage/sqlite"
	"github.com/lamdong-labs/kvsync-cli/internal/connectors/kiotviet"
	"github.com/lamdong-labs/kvsync-cli/internal/core/ports/driven"
	"github.com/lamdong-labs/kvsync-cli/internal/core/ports/driving"
	"github.com/lamdong-labs/kvsync-cli/internal/core/services"
	"github.com/lamdong-labs/kvsync-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	flagVerbose   bool
	flagRetailer  string
	flagConfigDir string
	flagDataDir   string
)

// Wired services, initialised once per invocation.
var (
	store       *sqlite.Store
	configStore driven.ConfigStore
	cacheStore  driven.CacheStore
	syncLogs    driven.SyncLogStore
	syncRunner  driving.SyncRunner
)

var rootCmd = &cobra.Command{
	Use:   "kvsync",
	Short: "Synchronise KiotViet store data into a local cache",
	Long: `kvsync keeps a local cache of a KiotViet retailer's products,
customers, orders and invoices.

Configure credentials once with 'kvsync auth set', then run 'kvsync sync'
to pull data. The first sync bootstraps the cache; later syncs only fetch
records modified since the last successful run.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		if cmd.Name() == "version" {
			return nil
		}
		return initServices()
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(
		&flagVerbose, "verbose", "v", false, "Enable verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(
		&flagRetailer, "retailer", "", "Retailer to operate on (defaults to default_retailer from config)")
	rootCmd.PersistentFlags().StringVar(
		&flagConfigDir, "config-dir", "", "Config directory (defaults to ~/.kvsync)")
	rootCmd.PersistentFlags().StringVar(
		&flagDataDir, "data-dir", "", "Data directory (defaults to ~/.kvsync/data)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command under a caller-provided context,
// so Ctrl-C cancels a running sync cleanly.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// initServices wires adapters into core services. Called once per
// invocation from the root command's PersistentPreRunE.
func initServices() error {
	cfg, err := configfile.NewConfigStore(flagConfigDir)
	if err != nil {
		return err
	}
	configStore = cfg

	store, err = sqlite.NewStore(flagDataDir)
	if err != nil {
		return err
	}
	cacheStore = store.CacheStore()
	syncLogs = store.SyncLogStore()

	factory := kiotviet.NewFactory(configStore)
	reconciler := services.NewReconciler(cacheStore)
	reporter := services.NewProgressReporter()
	syncRunner = services.NewSyncOrchestrator(
		factory, reconciler, store.SyncStateStore(), syncLogs, reporter)

	return nil
}

// resolveOwner determines which retailer a command operates on: the
// --retailer flag wins, otherwise the configured default.
func resolveOwner() (string, error) {
	if flagRetailer != "" {
		return flagRetailer, nil
	}
	if def := configStore.GetString("default_retailer"); def != "" {
		return def, nil
	}
	return "", errors.New("no retailer specified: pass --retailer or run 'kvsync auth set' first")
}
