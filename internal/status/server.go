// Package status serves live run progress over HTTP so long screening runs
// can be watched without tailing logs.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/screener/internal/batch"
	"github.com/JaimeStill/screener/internal/compare"
	"github.com/JaimeStill/screener/pkg/lifecycle"
	"github.com/JaimeStill/screener/pkg/middleware"
	"github.com/JaimeStill/screener/pkg/pagination"
)

// ProgressSource reports statistics and results as of the last committed batch.
type ProgressSource interface {
	Progress() batch.Stats
	Results() []compare.DualResult
}

// Snapshot is the /progress response body.
type Snapshot struct {
	RunID     string      `json:"run_id"`
	StartedAt time.Time   `json:"started_at"`
	Elapsed   string      `json:"elapsed"`
	Stats     batch.Stats `json:"stats"`
}

// Server exposes /healthz, /readyz, /progress and /results for one run.
type Server struct {
	http            *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
	runID           string
	started         time.Time
	source          ProgressSource
	ready           lifecycle.ReadinessChecker
	pages           pagination.Config
}

// New creates a status server for the run identified by runID.
func New(cfg *Config, runID string, source ProgressSource, ready lifecycle.ReadinessChecker, logger *slog.Logger) *Server {
	s := &Server{
		logger:          logger.With("system", "status"),
		shutdownTimeout: cfg.ShutdownTimeoutDuration(),
		runID:           runID,
		started:         time.Now(),
		source:          source,
		ready:           ready,
		pages:           cfg.Pagination,
	}

	mw := middleware.New()
	mw.Use(middleware.Recover(s.logger))
	mw.Use(middleware.Logger(s.logger))
	mw.Use(middleware.CORS(&cfg.CORS))

	s.http = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      mw.Apply(s.routes()),
		ReadTimeout:  cfg.ReadTimeoutDuration(),
		WriteTimeout: cfg.WriteTimeoutDuration(),
	}
	return s
}

// Handler returns the server's middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start binds the listener during startup and registers a shutdown hook.
// Binding happens in the startup hook so a taken port fails the run early.
func (s *Server) Start(lc *lifecycle.Coordinator) {
	lc.OnStartup(func() error {
		ln, err := net.Listen("tcp", s.http.Addr)
		if err != nil {
			return err
		}

		go func() {
			s.logger.Info("status listening", "addr", ln.Addr().String())
			if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("status server error", "error", err)
			}
		}()
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("status shutdown error", "error", err)
		} else {
			s.logger.Info("status shutdown complete")
		}
	})
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /progress", s.handleProgress)
	mux.HandleFunc("GET /results", s.handleResults)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil && !s.ready.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Snapshot{
		RunID:     s.runID,
		StartedAt: s.started,
		Elapsed:   time.Since(s.started).Round(time.Second).String(),
		Stats:     s.source.Progress(),
	})
}

// handleResults pages through committed results. Optional filters:
// priority (LOW, MEDIUM, HIGH) and disagreements=true.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var priority compare.Priority
	if v := q.Get("priority"); v != "" {
		priority = compare.Priority(strings.ToUpper(v))
		if !slices.Contains(compare.Priorities(), priority) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown priority " + v})
			return
		}
	}

	onlyDisagreements := false
	if v := q.Get("disagreements"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid disagreements flag " + v})
			return
		}
		onlyDisagreements = b
	}

	results := slices.DeleteFunc(s.source.Results(), func(res compare.DualResult) bool {
		if priority != "" && res.Priority != priority {
			return true
		}
		return onlyDisagreements && res.Agreement
	})

	req := pagination.PageRequestFromQuery(q, s.pages)
	writeJSON(w, http.StatusOK, pagination.Slice(results, req))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
