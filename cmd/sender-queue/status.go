package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ricirt/sender-queue/internal/config"
	"github.com/ricirt/sender-queue/internal/db"
	"github.com/ricirt/sender-queue/internal/listfile"
	"github.com/ricirt/sender-queue/internal/repository"
)

const statusTimeout = 10 * time.Second

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the list file state and the current queue depth",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		state, err := describeList(listfile.New(cfg.Sender.ListFile))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "list file:   %s\n", cfg.Sender.ListFile)
		fmt.Fprintf(out, "state:       %s\n", state)

		ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
		defer cancel()
		writeDepth(ctx, out, cfg)
		return nil
	},
}

// describeList summarises the list file in one line.
func describeList(list *listfile.Store) (string, error) {
	exists, err := list.Exists()
	if err != nil {
		return "", err
	}
	if !exists {
		return "missing (next run queries the metadata view)", nil
	}

	complete, err := list.IsComplete()
	if err != nil {
		return "", err
	}
	if complete {
		return "complete", nil
	}

	n, err := list.Len()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "empty (next run sends the notification)", nil
	}
	return fmt.Sprintf("%d pending", n), nil
}

// writeDepth prints the queue depth, or why it could not be read.
func writeDepth(ctx context.Context, out io.Writer, cfg *config.Config) {
	fmt.Fprintf(out, "trigger:     %d\n", cfg.Sender.CountLimitTrigger)

	pool, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintf(out, "queue depth: unavailable (%v)\n", err)
		return
	}
	defer pool.Close()

	depth, err := repository.NewPgQueueItemRepository(pool).CountBySender(ctx, cfg.Sender.SenderID)
	if err != nil {
		fmt.Fprintf(out, "queue depth: unavailable (%v)\n", err)
		return
	}
	fmt.Fprintf(out, "queue depth: %d\n", depth)
}
