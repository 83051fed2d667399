package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/prism-dev/prism/internal/config"
	"github.com/prism-dev/prism/internal/indexer"
)

var quietFlag bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a codebase into the vector store",
	Long: `Index walks a directory, parses source files into chunks, embeds them,
and upserts them into the vector store. No previous index is carried
between runs, so every run parses and re-embeds every discovered file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "disable the progress bar")
}

func runIndex(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	cfg, err := config.NewLoader(root).Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	engine, cleanup, err := config.BuildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	disc, err := indexer.NewDiscovery(nil, indexer.DefaultMaxFileSize)
	if err != nil {
		return fmt.Errorf("failed to compile exclude patterns: %w", err)
	}

	var files []indexer.FileInput
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		lang, ok := indexer.DetectLanguage(rel)
		if !ok {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			log.Printf("warning: failed to read %s: %v", rel, err)
			return nil
		}
		if skip, reason := disc.ShouldSkip(rel, info, content); skip {
			log.Printf("skipping %s: %s", rel, reason)
			return nil
		}
		files = append(files, indexer.FileInput{
			Path:         rel,
			Content:      content,
			Language:     lang,
			LastModified: info.ModTime().UnixMilli(),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", root, err)
	}

	var bar *progressbar.ProgressBar
	if !quietFlag {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Indexing files"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
		)
	}

	ix := indexer.New(cfg.Chunking.MaxLines)
	report, _, err := indexer.Reindex(context.Background(), ix, engine.Store, engine.Embedder, files, nil)
	if bar != nil {
		bar.Add(len(files))
		fmt.Println()
	}
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	fmt.Printf("run %s: added=%d changed=%d removed=%d skipped=%d tombstoned=%d\n",
		report.RunID, report.Added, report.Changed, report.Removed, report.Skipped, report.Tombstoned)
	for _, f := range report.Failed {
		fmt.Printf("  parse errors: %s\n", f)
	}
	return nil
}
