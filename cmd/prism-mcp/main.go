// Command prism-mcp is the MCP front end over the core pipeline: it
// exposes a single prism_query tool over stdio.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prism-dev/prism/internal/config"
	"github.com/prism-dev/prism/internal/mcpserver"
	"github.com/prism-dev/prism/internal/router"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	engine, cleanup, err := config.BuildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	avail := router.StaticAvailability{router.ProviderLocal: false, router.ProviderCloudFree: false}
	srv := mcpserver.New(engine, avail)
	return srv.Serve(context.Background())
}
