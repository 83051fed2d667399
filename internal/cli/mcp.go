package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prism-dev/prism/internal/config"
	"github.com/prism-dev/prism/internal/mcpserver"
	"github.com/prism-dev/prism/internal/router"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server exposing prism_query over stdio",
	Long: `Start the Model Context Protocol server so coding assistants can call
prism_query directly instead of shipping whole files as context.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
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
