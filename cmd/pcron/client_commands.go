package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// newReloadCmd, newDumpCmd, and newStopCmd are the signal-sending
// client side of pcron: each locates the running daemon via its
// pcron.pid and raises the matching signal, rather than talking to the
// daemon directly.
func newReloadCmd() *cobra.Command {
	return newSignalCmd("reload", "Ask the running daemon to re-read crontab.ini (SIGHUP)", syscall.SIGHUP)
}

func newStopCmd() *cobra.Command {
	return newSignalCmd("stop", "Ask the running daemon to shut down (SIGTERM)", syscall.SIGTERM)
}

// newDumpCmd sends SIGUSR1, which makes the daemon write a status dump
// into its structured log, then prints whatever new lines appeared in
// logfile.txt in response.
func newDumpCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Ask the running daemon to log a status dump (SIGUSR1) and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			logPath := filepath.Join(abs, "logfile.txt")
			before, _ := os.Stat(logPath)
			var beforeSize int64
			if before != nil {
				beforeSize = before.Size()
			}

			if err := sendSignal(abs, syscall.SIGUSR1); err != nil {
				return err
			}

			time.Sleep(200 * time.Millisecond)
			f, err := os.Open(logPath)
			if err != nil {
				fmt.Println("sent SIGUSR1; no logfile.txt found to read the dump back from")
				return nil
			}
			defer func() { _ = f.Close() }()

			if _, err := f.Seek(beforeSize, io.SeekStart); err != nil {
				return err
			}
			tail, err := io.ReadAll(f)
			if err != nil {
				return err
			}
			os.Stdout.Write(bytes.TrimLeft(tail, "\n"))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "working directory containing pcron.pid and logfile.txt")
	return cmd
}

func newSignalCmd(use, short string, sig syscall.Signal) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			if err := sendSignal(abs, sig); err != nil {
				return err
			}
			fmt.Printf("sent %s to daemon in %s\n", sig, abs)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "working directory containing pcron.pid")
	return cmd
}
