package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/secondhand-bookstore/internal/config"
	"github.com/iliyamo/secondhand-bookstore/internal/database"
	"github.com/iliyamo/secondhand-bookstore/internal/log"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the books, postings and submissions tables if missing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log.Init(cfg.Log)
		defer log.Sync()

		db, err := database.Open(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("schema applied")
		return nil
	},
}
