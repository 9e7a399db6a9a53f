package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ricirt/sender-queue/internal/config"
	"github.com/ricirt/sender-queue/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the bundled schema (development and tests)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := db.Migrate(cfg.Database.ConnString()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "database migrations applied")
		return nil
	},
}
