package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hamed0406/healthcheck/internal/domain"
	"github.com/hamed0406/healthcheck/internal/repo"
)

const (
	shutdownTimeout    = 5 * time.Second
	streamWriteTimeout = 5 * time.Second
	redacted           = "***"
)

// AvailabilityReader exposes cumulative per-domain counters.
type AvailabilityReader interface {
	Snapshot() []domain.DomainSummary
}

type Server struct {
	Logger       *zap.Logger
	Availability AvailabilityReader
	Reports      repo.ReportStore
	Endpoints    []domain.Endpoint
	Hub          *Hub
}

func NewServer(l *zap.Logger, av AvailabilityReader, reports repo.ReportStore, eps []domain.Endpoint, hub *Hub) *Server {
	if hub == nil {
		hub = NewHub(l)
	}
	return &Server{Logger: l, Availability: av, Reports: reports, Endpoints: eps, Hub: hub}
}

var streamUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(u.Host), strings.TrimSpace(r.Host))
	},
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/availability", s.handleAvailability)
		r.Get("/endpoints", s.handleEndpoints)
		r.Get("/rounds/latest", s.handleLatest)
		r.Get("/rounds", s.handleRecent)
		r.Get("/stream", s.handleStream)
	})
	return r
}

// ListenAndServe serves the router until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("api_listen", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.Logger.Info("api_stopped")
	return nil
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Availability.Snapshot())
}

func (s *Server) handleEndpoints(w http.ResponseWriter, r *http.Request) {
	out := make([]domain.Endpoint, 0, len(s.Endpoints))
	for _, ep := range s.Endpoints {
		out = append(out, redact(ep))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Reports.Latest(r.Context())
	if errors.Is(err, repo.ErrNoReport) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no completed round yet"})
		return
	}
	if err != nil {
		s.Logger.Warn("latest_report_error", zap.Error(err))
		http.Error(w, "latest error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	reps, err := s.Reports.Recent(r.Context(), limit)
	if err != nil {
		s.Logger.Warn("recent_reports_error", zap.Error(err))
		http.Error(w, "recent error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reps)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	reports, unsubscribe := s.Hub.subscribe()
	defer unsubscribe()

	if rep, err := s.Reports.Latest(r.Context()); err == nil {
		if err := writeStream(conn, rep); err != nil {
			return
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case rep := <-reports:
			if err := writeStream(conn, rep); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writeStream(conn *websocket.Conn, rep domain.Report) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(rep)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// redact hides header values, which often carry credentials.
func redact(ep domain.Endpoint) domain.Endpoint {
	if len(ep.Headers) == 0 {
		return ep
	}
	h := make(map[string]string, len(ep.Headers))
	for k := range ep.Headers {
		h[k] = redacted
	}
	ep.Headers = h
	return ep
}
