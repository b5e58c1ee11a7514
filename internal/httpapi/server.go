// Package httpapi expone la superficie de health/status del gate para
// probes de liveness/readiness y tooling operacional.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/litegate/internal/detect"
	"github.com/dropDatabas3/litegate/internal/election"
)

// Server arma el router de status. Todos los campos menos Detector son
// opcionales; Voting es nil con elección estática.
type Server struct {
	NodeID    string
	Election  string // "static" | "voting"
	MountPath string
	Detector  detect.RoleDetector
	URLs      *detect.URLResolver
	Voting    *election.Voting
}

// Router construye el http.Handler con middlewares y rutas.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(withAccessLog)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Run levanta el servidor y lo apaga limpio cuando ctx se cancela.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
