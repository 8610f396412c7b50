// Command kvsync synchronises KiotViet store data into a local cache.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lamdong-labs/kvsync-cli/internal/adapters/driving/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
