package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "sender-queue",
	Short: "Feed historical metadata into the sender queue",
	Long: `Generates a list of metadata records from the metadata view and feeds it
into the sender queue table a bounded batch at a time. Meant to be run
periodically; progress is kept in the list file between runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runJob,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.ini", "path to the configuration file")
	rootCmd.AddCommand(runCmd, statusCmd, resetCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "sender-queue: %v\n", err)
		os.Exit(1)
	}
}
