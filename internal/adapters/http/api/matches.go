package api

import (
	"net/http"

	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/logger"
)

// MatchesHandler triggers upstream refreshes and returns the new snapshot.
type MatchesHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps Dependencies, log logger.Logger) *MatchesHandler {
	return &MatchesHandler{deps: deps, logger: log}
}

type fixturesResponse struct {
	Success bool               `json:"success"`
	Matches []model.MatchEvent `json:"matches"`
}

type scheduleResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Events  []model.MatchEvent `json:"events"`
}

// HandleFixtures handles GET /api/barcelona-matches.
func (h *MatchesHandler) HandleFixtures(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh_fixtures"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	matches, err := h.deps.RefreshFixtures(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "fixtures refresh failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}
	if matches == nil {
		matches = []model.MatchEvent{}
	}
	writeJSON(w, http.StatusOK, fixturesResponse{Success: true, Matches: matches})
}

// HandleSchedule handles GET /api/league-matches.
func (h *MatchesHandler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh_schedule"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	events, err := h.deps.RefreshSchedule(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "schedule refresh failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}
	if events == nil {
		events = []model.MatchEvent{}
	}
	writeJSON(w, http.StatusOK, scheduleResponse{Success: true, Message: "schedule updated", Events: events})
}
