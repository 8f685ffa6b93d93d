package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

func newDaemonCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Daemonize: detach, write pcron.pid, redirect output to logfile.txt, and run",
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			return daemonize(abs)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "working directory (crontab.ini, state.db, jobs/, ...)")
	return cmd
}
