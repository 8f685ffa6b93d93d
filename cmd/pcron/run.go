package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gustaebel/pcron/internal/crontab"
	"github.com/gustaebel/pcron/internal/history"
	"github.com/gustaebel/pcron/internal/logger"
	"github.com/gustaebel/pcron/internal/metrics"
	"github.com/gustaebel/pcron/internal/scheduler"
	"github.com/gustaebel/pcron/internal/server"
)

func newRunCmd() *cobra.Command {
	var dir string
	var logFile string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler in the foreground until INT/TERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForeground(dir, logFile)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "working directory (crontab.ini, state.db, jobs/, ...)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this rotated file instead of stderr (set by daemonize)")
	return cmd
}

// runForeground builds the scheduler's dependencies: resolve the log
// level from crontab.ini, open the optional history store, register
// metrics, and start the optional HTTP status server alongside the
// main loop. Signal handling (INT/TERM/HUP/USR1/CHLD) lives entirely
// inside Scheduler.Run via internal/signalbus; this function only
// decides what to wire in before handing control to it.
func runForeground(dir, logFile string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve --dir: %w", err)
	}

	level := slog.LevelInfo
	if res, err := crontab.Load(abs); err == nil {
		level = parseLogLevel(res.LogLevel)
	}
	log := logger.New(logger.Config{Path: logFile}, level)

	var hist *history.Store
	if h, err := history.Open(filepath.Join(abs, "history.db")); err != nil {
		log.Warn("job history disabled", "error", err)
	} else {
		hist = h
		defer func() { _ = hist.Close() }()
	}
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Warn("metrics registration failed", "error", err)
	}

	sched := scheduler.New(scheduler.Options{Dir: abs, History: hist, Log: log})
	sched.Load()

	var httpSrv *server.Server
	if cfg := sched.ServerConfig(); cfg.Enabled {
		httpSrv = server.New(cfg.Addr, sched)
		go func() {
			log.Info("http status server listening", "addr", cfg.Addr)
			if err := httpSrv.ListenAndServe(); err != nil {
				log.Error("http status server exited", "error", err)
			}
		}()
		defer func() { _ = httpSrv.Shutdown(context.Background()) }()
	}

	return sched.Run(context.Background())
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "quiet":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
