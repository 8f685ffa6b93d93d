package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gustaebel/pcron/internal/template"
)

func newInitCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a skeleton crontab.ini and environment.sh into --dir",
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			return initWorkingDir(abs)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "working directory to initialize")
	return cmd
}

func initWorkingDir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	g := template.NewGenerator()
	crontabPath := filepath.Join(dir, "crontab.ini")
	if _, err := os.Stat(crontabPath); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", crontabPath)
	}
	if err := os.WriteFile(crontabPath, []byte(g.Skeleton()), 0o640); err != nil {
		return fmt.Errorf("write crontab.ini: %w", err)
	}

	envPath := filepath.Join(dir, "environment.sh")
	if _, err := os.Stat(envPath); err != nil {
		if err := os.WriteFile(envPath, []byte(template.EnvironmentSkeleton), 0o640); err != nil {
			return fmt.Errorf("write environment.sh: %w", err)
		}
	}

	fmt.Printf("initialized pcron working directory at %s\n", dir)
	return nil
}
