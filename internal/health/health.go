// Package health exposes liveness and readiness HTTP probes.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/metaswap/swapr/internal/logger"
)

// Probe reports whether one dependency is usable right now.
type Probe func(ctx context.Context) error

// report is the /health response body.
type report struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime"`
	Probes    map[string]string `json:"probes,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// Server serves /live, /ready and /health on its own port.
type Server struct {
	port    int
	version string
	started time.Time
	log     logger.LoggerInterface

	mu     sync.RWMutex
	probes map[string]Probe

	server *http.Server
}

// NewServer creates a health server; Start binds the port.
func NewServer(port int, version string, log logger.LoggerInterface) *Server {
	return &Server{
		port:    port,
		version: version,
		started: time.Now(),
		log:     log,
		probes:  make(map[string]Probe),
	}
}

// RegisterProbe adds a named readiness probe.
func (s *Server) RegisterProbe(name string, p Probe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probes[name] = p
}

// Start begins serving in the background. Binding failures surface through
// the logger; the probes are operational convenience, not a hard dependency.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Warn(context.Background(), "health server stopped", "error", err.Error())
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) snapshot() map[string]Probe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	probes := make(map[string]Probe, len(s.probes))
	for name, p := range s.probes {
		probes[name] = p
	}
	return probes
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	for name, probe := range s.snapshot() {
		if err := probe(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "not ready: %s", name)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rep := report{
		Status:    "ok",
		Version:   s.version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Probes:    make(map[string]string),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK
	for name, probe := range s.snapshot() {
		if err := probe(ctx); err != nil {
			rep.Status = "degraded"
			rep.Probes[name] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		rep.Probes[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(rep)
}
