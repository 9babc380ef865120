package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Yates-Labs/mentor/internal/logging"
	"github.com/Yates-Labs/mentor/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the mentor over an HTTP JSON API",
	Long: `Serve the mentor over HTTP.

Endpoints:
  POST /api/chat   {"question": "...", "history": [{"question": "...", "answer": "..."}]}
  GET  /healthz

Clients keep the conversation history; only the most recent turns are used.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, e.g. localhost:8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
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

	pipeline, store, err := buildPipeline(ctx, cfg, logger, audit)
	if err != nil {
		return err
	}
	defer store.Close()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr()
	}

	srv := server.NewServer(pipeline, addr, cfg.Memory.HistorySize, logger.Named("server"))
	return srv.Run(ctx)
}
