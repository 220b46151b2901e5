package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"research/config"
)

var (
	cfgFile     string
	cfg         *config.Config
	rootDir     string
	storeFormat string
	storePath   string
	logger      *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "research",
	Short: "Research assistant vector store - index saved sources and search them semantically",
	Long: `research keeps an embedding index of saved research sources per user and
ranks them by cosine similarity against a query. The index is a single file
loaded into memory at startup and rewritten after every change.

Example usage:
  research upsert d1 -u alice -t "Paper A" --text "about graphs"
  research search -u alice -q "graphs"
  research import ./notes -u alice
  research serve`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if storeFormat != "" {
			cfg.Store.Format = storeFormat
		}
		if storePath != "" {
			cfg.Store.Path = storePath
		}

		logger = newLogger(cfg.Logging)
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./research.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&storeFormat, "format", "", "store format: json, bolt, sqlite, memory (default from config)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "store path (default from config)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

// newLogger builds the process logger. Logs go to stderr so command output
// on stdout stays machine-readable.
func newLogger(lc config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(lc.Level)}
	if strings.EqualFold(lc.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
