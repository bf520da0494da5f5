package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/secondhand-bookstore/internal/config"
	"github.com/iliyamo/secondhand-bookstore/internal/database"
	"github.com/iliyamo/secondhand-bookstore/internal/handler"
	"github.com/iliyamo/secondhand-bookstore/internal/log"
	"github.com/iliyamo/secondhand-bookstore/internal/queue"
	"github.com/iliyamo/secondhand-bookstore/internal/repository"
	"github.com/iliyamo/secondhand-bookstore/internal/router"
	"github.com/iliyamo/secondhand-bookstore/internal/service"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log.Init(cfg.Log)
		defer log.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg config.Config) error {
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("schema applied")
	}

	var pub service.Publisher = queue.Nop{}
	if cfg.EventsEnabled {
		pub = queue.NewPublisher(cfg.RabbitURL, cfg.EventQueue)
	}
	if cfg.ConsumerEnabled {
		c := queue.NewConsumer(cfg.RabbitURL, cfg.EventQueue, cfg.EventLogFile)
		go func() {
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("event consumer stopped", zap.Error(err))
			}
		}()
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; response cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	svc := service.New(
		service.NewSQLStore(db),
		repository.NewGenreRepo(cfg.GenresFile),
		service.Options{DefaultImage: cfg.DefaultImage, Publisher: pub},
	)
	e := router.New(handler.New(svc, cfg.QueryTimeout), router.Deps{
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		PublicDir: cfg.PublicDir,
	})

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}
