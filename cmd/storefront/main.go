// cmd/storefront/main.go
package main

import (
	"context"
	"os"

	"storefront/internal/cli"
	"storefront/internal/util"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		util.GetLogger().Error("Command failed", "error", err)
		cancel()
		os.Exit(1)
	}
}
