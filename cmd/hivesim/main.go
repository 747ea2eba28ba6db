// Command hivesim runs the hive settlement economy and its observation tools.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talgya/hive-economy/internal/config"
)

var configPath string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hivesim",
		Short: "Hive settlement economy simulation",
		Long: `hivesim runs a frame-sliced settlement economy: houses supply workers,
producers turn inputs into outputs, buildings level up as research and
resources allow, and roads connect everything back to the obelisk.

Examples:
  hivesim run --config hivesim.yaml
  hivesim catalog
  hivesim watch --url http://localhost:8080
  hivesim runs`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./hivesim.yaml or ./configs/hivesim.yaml)")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newCatalogCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newRunsCommand())

	return rootCmd
}

// loadConfig reads the config and installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(cfg.Logging))
	return cfg, nil
}

func newLogger(lc config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(lc.Level)}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
