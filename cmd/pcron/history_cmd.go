package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gustaebel/pcron/internal/history"
)

// newHistoryCmd prints the most recent recorded runs of a job directly
// from history.db, without needing the daemon to be running.
func newHistoryCmd() *cobra.Command {
	var dir string
	var limit int
	cmd := &cobra.Command{
		Use:   "history <job>",
		Short: "List recent recorded runs of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			hist, err := history.Open(filepath.Join(abs, "history.db"))
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer func() { _ = hist.Close() }()

			records, err := hist.Recent(context.Background(), args[0], limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Printf("no recorded runs for %q\n", args[0])
				return nil
			}
			for _, r := range records {
				status := fmt.Sprintf("exit=%d", r.ExitCode)
				if r.Conflict != "" {
					status = "conflict=" + r.Conflict
				}
				fmt.Printf("%s  %-12s trigger=%-10s pid=%-8d duration=%-10s %s\n",
					r.StartedAt.Local().Format("2006-01-02 15:04:05"),
					r.InstanceID, r.Trigger, r.PID, r.FinishedAt.Sub(r.StartedAt), status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "working directory containing history.db")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")
	return cmd
}
