// Package server exposes a read-only HTTP API for inspecting a loaded
// step graph.
//
// Endpoints:
//
//	GET /healthz        liveness probe
//	GET /graph          graph snapshot as JSON
//	GET /graph.dot      graph snapshot in DOT form
//	GET /steps/{final}  ordered steps leading up to final
//	GET /connections    strongly connected components
//
// Every handler only reads from the graph, so a single Sequencer can
// serve concurrent requests without locking.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/distkit/distkit/pkg/errors"
	"github.com/distkit/distkit/pkg/graph"
	"github.com/distkit/distkit/pkg/sequencer"
)

// shutdownTimeout bounds how long a cancelled server waits for in-flight
// requests to drain.
const shutdownTimeout = 5 * time.Second

// Server serves the inspection API for a single step graph.
type Server struct {
	seq    *sequencer.Sequencer
	logger *log.Logger
	srv    *http.Server
}

// New creates a Server for the given graph. A nil logger discards all
// output.
func New(seq *sequencer.Sequencer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{seq: seq, logger: logger}
}

// Handler returns the router with all API routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph", s.handleGraph)
	r.Get("/graph.dot", s.handleGraphDOT)
	r.Get("/steps/{final}", s.handleSteps)
	r.Get("/connections", s.handleConnections)
	return r
}

// ListenAndServe serves the API on addr until ctx is cancelled or the
// listener fails. On cancellation, in-flight requests are drained before
// returning.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	s.logger.Info("serving inspection API", "addr", ln.Addr().String(), "steps", s.seq.StepCount(), "edges", s.seq.EdgeCount())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// logRequests emits one structured log line per completed request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleGraph(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := graph.Write(s.seq, w); err != nil {
		s.logger.Error("encoding graph failed", "error", err)
	}
}

func (s *Server) handleGraphDOT(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	fmt.Fprintln(w, s.seq.Dot())
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	final := chi.URLParam(r, "final")
	steps, err := s.seq.GetSteps(final)
	if err != nil {
		s.writeError(w, http.StatusNotFound, errors.New(errors.ErrCodeStepNotFound, "unknown step: %q", final))
		return
	}
	s.writeJSON(w, http.StatusOK, stepsResponse{Final: final, Steps: steps})
}

func (s *Server) handleConnections(w http.ResponseWriter, _ *http.Request) {
	components := s.seq.StrongConnections()
	if components == nil {
		components = [][]string{}
	}
	s.writeJSON(w, http.StatusOK, components)
}

type stepsResponse struct {
	Final string   `json:"final"`
	Steps []string `json:"steps"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err *errors.Error) {
	s.writeJSON(w, status, errorResponse{Code: string(err.Code), Message: err.Message})
}
