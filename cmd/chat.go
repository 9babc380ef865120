package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Yates-Labs/mentor/internal/chat"
	"github.com/Yates-Labs/mentor/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive mentor conversation",
	Long: `Start an interactive conversation with the mentor. The last few exchanges
are remembered for context during the session.

Type 'quit', 'exit' or 'q' (or press Ctrl+C) to leave. Every question and
answer is appended to the audit log.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	audit, err := logging.OpenAudit(cfg.Audit.Path)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer audit.Close()
	logger.Debug("audit session started", zap.String("session", audit.SessionID()), zap.String("path", cfg.Audit.Path))

	pipeline, store, err := buildPipeline(ctx, cfg, logger, audit)
	if err != nil {
		return err
	}
	defer store.Close()

	session := chat.NewSession(pipeline, cfg.Memory.HistorySize, chat.WithLogger(logger.Named("chat")))
	return session.Run(ctx)
}
