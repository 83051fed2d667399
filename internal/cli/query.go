package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prism-dev/prism/internal/config"
	"github.com/prism-dev/prism/internal/pipeline"
	"github.com/prism-dev/prism/internal/router"
)

var currentFileFlag string

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a natural-language question against the indexed codebase",
	Long: `Query runs the full pipeline: detect intent, search the vector store,
score and select chunks within budget, compress them, and pick the
cheapest model tier able to answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVar(&currentFileFlag, "current-file", "", "file the user currently has open, for scope and proximity")
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

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

	answer, err := engine.Answer(context.Background(), question, pipeline.QueryContext{CurrentFile: currentFileFlag}, avail)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "query %s: intent=%s scope=%s complexity=%.2f model=%s (%s)\n",
		answer.QueryID, answer.Intent.Type, answer.Intent.Scope, answer.Complexity.Score, answer.Model.Model, answer.Model.Reason)

	for _, c := range answer.Chunks {
		fmt.Printf("--- %s (%s) ---\n%s\n", c.FilePath, c.Name, c.Content)
	}
	return nil
}
