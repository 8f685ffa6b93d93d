package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gustaebel/pcron/internal/crontab"
)

func newValidateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse crontab.ini and report errors without starting the scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			res, err := crontab.Load(abs)
			if err != nil {
				return err
			}
			fmt.Printf("crontab.ini is valid: %d job(s), %d startup job(s)\n", len(res.Jobs), len(res.Startup))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "working directory containing crontab.ini")
	return cmd
}
