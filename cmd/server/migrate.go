package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/config"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/db"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the session store schema to the configured database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Store.Kind == config.StoreMemory {
			return errors.New("store.kind is memory; nothing to migrate")
		}
		sqlDB, err := db.Open(cmd.Context(), cfg.SQLDriver(), cfg.Store.DSN)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		applied, err := db.RunMigrations(cmd.Context(), sqlDB, migrationsDir)
		for _, name := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
		}
		return err
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "directory with .sql migrations (default: embedded)")
}
