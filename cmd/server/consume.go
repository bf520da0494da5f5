package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/secondhand-bookstore/internal/config"
	"github.com/iliyamo/secondhand-bookstore/internal/log"
	"github.com/iliyamo/secondhand-bookstore/internal/queue"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Append marketplace events from RabbitMQ to the event log",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.LoadBroker()
		log.Init(cfg.Log)
		defer log.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Info("event consumer started",
			zap.String("queue", cfg.EventQueue), zap.String("file", cfg.EventLogFile))
		err := queue.NewConsumer(cfg.RabbitURL, cfg.EventQueue, cfg.EventLogFile).Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}
