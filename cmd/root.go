package cmd

import (
	"fmt"
	"os"

	"github.com/Yates-Labs/mentor/internal/config"
	"github.com/Yates-Labs/mentor/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "mentor",
	Short: "Mentor - a supportive study mentor grounded in your own library",
	Long: `Mentor answers student questions with a local language model, grounding
its advice in passages retrieved from the documents you ingest.

It is a supportive college mentor, not a mental health professional. Messages
containing crisis language are answered with crisis resources only.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and builds the diagnostic logger.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if debug {
		cfg.Debug = true
	}

	logger, err := logging.NewLogger(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}
