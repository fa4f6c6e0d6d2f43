package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/event-planner/internal/config"
	"github.com/iliyamo/event-planner/internal/logging"
	"github.com/iliyamo/event-planner/internal/queue"
)

var logPath string

var consumeCmd = &cobra.Command{
	Use:   "consume-activity",
	Short: "Appends activity events from RabbitMQ to a log file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if cfg.RabbitURL == "" {
			return errors.New("RABBITMQ_URL is required")
		}
		if logPath == "" {
			logPath = cfg.ActivityLog
		}
		logger := logging.New(cfg.LogLevel, os.Stdout)
		logger.Info("consuming activity", "queue", cfg.ActivityQueue, "log", logPath)

		err = queue.StartActivityConsumer(cmd.Context(), queue.ConsumerConfig{
			URL:     cfg.RabbitURL,
			Queue:   cfg.ActivityQueue,
			LogPath: logPath,
		}, logger)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	consumeCmd.Flags().StringVar(&logPath, "log", "", "activity log file (defaults to ACTIVITY_LOG)")
	rootCmd.AddCommand(consumeCmd)
}
