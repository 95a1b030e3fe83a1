package api

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/okian/agenda/internal/adapters/ics"
	"github.com/okian/agenda/internal/domain/aggregate"
	"github.com/okian/agenda/internal/domain/category"
	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/logger"
)

// CalendarHandler serves the aggregated view and its derived feeds.
type CalendarHandler struct {
	deps         Dependencies
	logger       logger.Logger
	calendarName string
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(deps Dependencies, log logger.Logger, calendarName string) *CalendarHandler {
	return &CalendarHandler{deps: deps, logger: log, calendarName: calendarName}
}

type calendarResponse struct {
	Success bool                 `json:"success"`
	Events  []model.DisplayEvent `json:"events"`
}

type nextMatchResponse struct {
	Success bool                `json:"success"`
	Event   *model.DisplayEvent `json:"event"`
}

type categoriesResponse struct {
	Success    bool             `json:"success"`
	Categories []category.Entry `json:"categories"`
}

// HandleCalendar handles GET /api/calendar?category=&from=&to=.
func (h *CalendarHandler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	const op = "api.calendar"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	events, err := h.deps.Calendar(r.Context(), q)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	if events == nil {
		events = []model.DisplayEvent{}
	}
	writeJSON(w, http.StatusOK, calendarResponse{Success: true, Events: events})
}

// HandleNextMatch handles GET /api/next-match. No upcoming match is a
// success with a null event.
func (h *CalendarHandler) HandleNextMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.next_match"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ev, ok, err := h.deps.NextMatch(r.Context())
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	resp := nextMatchResponse{Success: true}
	if ok {
		resp.Event = &ev
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleCategories handles GET /api/categories.
func (h *CalendarHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Success: true, Categories: category.All()})
}

// HandleICS handles GET /calendar.ics. It accepts the same query as
// /api/calendar.
func (h *CalendarHandler) HandleICS(w http.ResponseWriter, r *http.Request) {
	const op = "api.calendar_ics"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	events, err := h.deps.Calendar(r.Context(), q)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ics.Encode(events, ics.WithName(h.calendarName))))
}

// parseQuery reads category, from and to. The window bounds must be given
// together and in order.
func parseQuery(values url.Values) (aggregate.Query, error) {
	q := aggregate.Query{Category: values.Get("category")}
	if err := category.Validate(q.Category); err != nil {
		return q, fmt.Errorf("%w: %w: %s", ErrBadRequest, err, q.Category)
	}
	from, to := values.Get("from"), values.Get("to")
	if from == "" && to == "" {
		return q, nil
	}
	if from == "" || to == "" {
		return q, fmt.Errorf("%w: from and to go together", ErrBadRequest)
	}
	var err error
	if q.From, err = model.ParseTime(from); err != nil {
		return q, fmt.Errorf("%w: from: %w", ErrBadRequest, err)
	}
	if q.To, err = model.ParseTime(to); err != nil {
		return q, fmt.Errorf("%w: to: %w", ErrBadRequest, err)
	}
	if q.To.Before(q.From) {
		return q, fmt.Errorf("%w: to before from", ErrBadRequest)
	}
	return q, nil
}
