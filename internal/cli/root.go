package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd is the base command for the prism CLI, a thin peripheral front
// end over internal/pipeline.
var rootCmd = &cobra.Command{
	Use:   "prism",
	Short: "PRISM - token-efficient context assembly for code LLMs",
	Long: `PRISM indexes a codebase, scores and compresses the chunks relevant to a
natural-language question, and routes the question to the cheapest model
tier that can answer it.`,
}

// Execute runs the root command. Called once by cmd/prism/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (not read: commands load .prism/config.yml under the working directory, or under the indexed path for index)")
}
