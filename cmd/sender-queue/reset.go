package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ricirt/sender-queue/internal/config"
	"github.com/ricirt/sender-queue/internal/listfile"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove the list file so the next run queries the metadata view again",
	Long: `Removes the list file, including a completed one. Pending entries in it are
lost; the next run regenerates the list from the configured date range.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := listfile.New(cfg.Sender.ListFile).Reset(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", cfg.Sender.ListFile)
		return nil
	},
}
