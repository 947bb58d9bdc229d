// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/pelota/internal/domain/model"
	"github.com/okian/pelota/internal/domain/types"
	"github.com/okian/pelota/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SessionDependencies
	RankingsDependencies
	RankDependencies
	PlayerDependencies
	ReportDependencies
	StreamDependencies
}

// StreamDependencies serves the live tuning update stream.
type StreamDependencies interface {
	Subscribe(w http.ResponseWriter, r *http.Request)
}

// Entry mirrors the read shape returned by ranking queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	sessionsHandler  *SessionsHandler
	rankingsHandler  *RankingsHandler
	rankHandler      *RankHandler
	playerHandler    *PlayerHandler
	reportsHandler   *ReportsHandler
	streamDeps       StreamDependencies
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		sessionsHandler:  NewSessionsHandler(deps),
		rankingsHandler:  NewRankingsHandler(deps, maxLimit),
		rankHandler:      NewRankHandler(deps),
		playerHandler:    NewPlayerHandler(deps),
		reportsHandler:   NewReportsHandler(deps),
		streamDeps:       deps,
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandlePostSession, "sessions"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	mux.HandleFunc("/rankings/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/players/", MetricsMiddleware(s.playerHandler.HandlePlayer, "players"))
	mux.HandleFunc("/reports/correlation", MetricsMiddleware(s.reportsHandler.HandleGetReport, "report"))

	// The WebSocket upgrade needs the raw ResponseWriter, so this route
	// skips the middleware wrapper; the hub records its own metrics.
	mux.HandleFunc("/ws", s.streamDeps.Subscribe)
}

// sessionRequest mirrors the OpenAPI schema for POST /sessions.
type sessionRequest struct {
	SampleID        string   `json:"sample_id"`
	PlayerID        string   `json:"player_id"`
	Score           float64  `json:"score"`
	DurationSeconds float64  `json:"duration_seconds"`
	Moves           []string `json:"moves,omitempty"`
	DeathCause      string   `json:"death_cause,omitempty"`
	TS              string   `json:"ts"`
}

func (s sessionRequest) validate() error {
	switch {
	case strings.TrimSpace(s.SampleID) == "":
		return errors.New("missing sample_id")
	case strings.TrimSpace(s.PlayerID) == "":
		return errors.New("missing player_id")
	case strings.TrimSpace(s.TS) == "":
		return errors.New("missing ts")
	case s.DurationSeconds < 0:
		return errors.New("negative duration_seconds")
	}
	if _, err := time.Parse(time.RFC3339, s.TS); err != nil {
		return errors.New("invalid ts; must be RFC3339")
	}
	return nil
}

// sample converts a validated request into the domain model.
func (s sessionRequest) sample() model.Sample {
	ts, _ := time.Parse(time.RFC3339, s.TS)
	return model.Sample{
		SampleID:        s.SampleID,
		PlayerID:        s.PlayerID,
		Score:           s.Score,
		DurationSeconds: s.DurationSeconds,
		Moves:           s.Moves,
		DeathCause:      s.DeathCause,
		TS:              ts.UTC(),
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type exportResponse struct {
	Path string `json:"path"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// pathParam extracts the remainder of the URL path after prefix, which
// must be a single non-empty segment.
func pathParam(r *http.Request, prefix string) (string, bool) {
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
