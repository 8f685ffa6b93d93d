// Package server exposes a read-only HTTP status surface for
// monitoring tooling that cannot send the daemon a signal: a
// Prometheus scrape target and a JSON rendering of the same dump
// SIGUSR1 writes to the log. It is additive instrumentation, never a
// control surface — there is no endpoint that starts, stops, or
// reconfigures a job.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gustaebel/pcron/internal/scheduler"
)

// Snapshotter is the one Scheduler method the server depends on, kept
// as an interface so handlers can be tested against a fake.
type Snapshotter interface {
	Snapshot() scheduler.DumpReport
}

// Server wraps a gin engine and the http.Server serving it.
type Server struct {
	engine *gin.Engine
	http   *http.Server
}

// New builds a Server bound to addr. sched provides the /jobs snapshot;
// /metrics serves the process-wide Prometheus registry internal/metrics
// registers collectors against.
func New(addr string, sched Snapshotter) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/jobs", func(c *gin.Context) {
		c.JSON(http.StatusOK, sched.Snapshot())
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		engine: r,
		http: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// ListenAndServe blocks serving HTTP until Shutdown is called, at which
// point it returns http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests
// up to ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
