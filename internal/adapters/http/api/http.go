// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/agenda/internal/domain/aggregate"
	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ListCustomEvents(ctx context.Context) ([]model.CustomEvent, error)
	CreateCustomEvent(ctx context.Context, ev model.CustomEvent) (model.CustomEvent, error)
	UpdateCustomEvent(ctx context.Context, id string, patch model.EventPatch) (model.CustomEvent, error)
	DeleteCustomEvent(ctx context.Context, id string) error

	// Refresh operations fetch upstream and replace the stored snapshot.
	RefreshFixtures(ctx context.Context) ([]model.MatchEvent, error)
	RefreshSchedule(ctx context.Context) ([]model.MatchEvent, error)

	// Calendar returns the merged view narrowed by q.
	Calendar(ctx context.Context, q aggregate.Query) ([]model.DisplayEvent, error)
	NextMatch(ctx context.Context) (model.DisplayEvent, bool, error)
}

// Server wires HTTP routes for the calendar API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	customHandler   *CustomEventsHandler
	matchesHandler  *MatchesHandler
	calendarHandler *CalendarHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{calendarName: defaultCalendarName}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Get().Named("api")
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		customHandler:   NewCustomEventsHandler(deps, cfg.logger),
		matchesHandler:  NewMatchesHandler(deps, cfg.logger),
		calendarHandler: NewCalendarHandler(deps, cfg.logger, cfg.calendarName),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/custom-events", MetricsMiddleware(s.customHandler.Handle, "custom_events"))
	mux.HandleFunc("/api/barcelona-matches", MetricsMiddleware(s.matchesHandler.HandleFixtures, "barcelona_matches"))
	mux.HandleFunc("/api/league-matches", MetricsMiddleware(s.matchesHandler.HandleSchedule, "league_matches"))
	mux.HandleFunc("/api/calendar", MetricsMiddleware(s.calendarHandler.HandleCalendar, "calendar"))
	mux.HandleFunc("/api/next-match", MetricsMiddleware(s.calendarHandler.HandleNextMatch, "next_match"))
	mux.HandleFunc("/api/categories", MetricsMiddleware(s.calendarHandler.HandleCategories, "categories"))
	mux.HandleFunc("/calendar.ics", MetricsMiddleware(s.calendarHandler.HandleICS, "calendar_ics"))
}

// errorResponse is the failure envelope shared by every route.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Success: false, Message: msg, Code: code})
}

// writeFailure maps err to its status and writes the failure envelope.
func writeFailure(ctx context.Context, w http.ResponseWriter, log logger.Logger, op string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
	} else {
		log.Debug(ctx, "request rejected", logger.String("op", op), logger.String("code", code), logger.Error(err))
	}
	writeError(w, status, code, err)
}
