package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/hive-economy/internal/watch"
)

func newWatchCommand() *cobra.Command {
	var (
		apiURL   string
		interval time.Duration
		once     bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll a running hivesim and print settlement health",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			observer := watch.NewObserver(apiURL)

			// The server may still be generating its world.
			slog.Info("waiting for hivesim API...", "url", apiURL)
			if err := observer.WaitForAPI(ctx, watch.DefaultBackoff()); err != nil {
				return err
			}

			if err := watchOnce(ctx, observer); err != nil || once {
				return err
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := watchOnce(ctx, observer); err != nil {
						slog.Warn("observe failed", "error", err)
					}
				case <-ctx.Done():
					fmt.Println("Watch stopped.")
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&apiURL, "url", envOrDefault("HIVE_API_URL", "http://localhost:8080"), "hivesim API base URL")
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Poll interval")
	cmd.Flags().BoolVar(&once, "once", false, "Print one sample and exit")
	return cmd
}

func watchOnce(ctx context.Context, observer *watch.Observer) error {
	sample, err := observer.Observe(ctx)
	if err != nil {
		return err
	}
	return watch.Render(os.Stdout, sample, watch.Triage(sample))
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
