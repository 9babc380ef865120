package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Yates-Labs/mentor/internal/ingest"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	resetStore bool
	dataPaths  []string
	watch      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load documents into the vector store",
	Long: `Load PDF, CSV, Excel, NDJSON and text files, split them into chunks and
store the chunks that are not yet in the vector store.

Chunk IDs are derived from the source path, page and position, so running
ingest again over unchanged files adds nothing. Use --reset to rebuild the
store from scratch after editing files.

Examples:
  mentor ingest
  mentor ingest --reset
  mentor ingest --data-paths ./books --data-paths ./surveys.csv
  mentor ingest --watch`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&resetStore, "reset", false, "Clear the vector store before ingesting")
	ingestCmd.Flags().StringArrayVar(&dataPaths, "data-paths", nil, "Files or directories to ingest (default from config)")
	ingestCmd.Flags().BoolVar(&watch, "watch", false, "Keep running and ingest files as they are created or changed")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths := dataPaths
	if len(paths) == 0 {
		paths = cfg.Ingest.DataPaths
	}

	ingestor, loader, store, err := buildIngestor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	var (
		headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F780FF")).Bold(true)
		numberStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6")).Bold(true)
		warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
		successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
	)

	result, err := ingestor.Ingest(ctx, paths, resetStore)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("Ingestion complete"))
	fmt.Printf("  Documents loaded: %s\n", numberStyle.Render(fmt.Sprint(result.Documents)))
	fmt.Printf("  Chunks:           %s\n", numberStyle.Render(fmt.Sprint(result.Chunks)))
	fmt.Printf("  Already stored:   %s\n", numberStyle.Render(fmt.Sprint(result.Stats.Existing)))
	fmt.Printf("  Added:            %s\n", numberStyle.Render(fmt.Sprint(result.Stats.Added)))
	if result.Stats.Stale > 0 {
		fmt.Println(warningStyle.Render(fmt.Sprintf(
			"  %d stored chunks differ from their files; run with --reset to refresh them", result.Stats.Stale)))
	}
	for _, loadErr := range multierr.Errors(result.LoadErrors) {
		fmt.Println(warningStyle.Render("  warning: " + loadErr.Error()))
	}

	if !watch {
		return nil
	}

	watcher := ingest.NewWatcher(paths, loader.Supports,
		ingest.WithWatcherLogger(logger.Named("watcher")))
	fmt.Println(successStyle.Render("✓ Watching for changes (Ctrl+C to stop)"))

	return watcher.Run(ctx, func(ctx context.Context, path string) {
		res, err := ingestor.Ingest(ctx, []string{path}, false)
		if err != nil {
			logger.Error("failed to ingest changed file", zap.String("path", path), zap.Error(err))
			return
		}
		logger.Info("ingested changed file",
			zap.String("path", path),
			zap.Int("added", res.Stats.Added),
			zap.Int("stale", res.Stats.Stale))
	})
}
