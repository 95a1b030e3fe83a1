package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/logger"
)

const maxBodyBytes = 1 << 20

// CustomEventsHandler serves the custom-event collection on one path,
// dispatching on the method.
type CustomEventsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewCustomEventsHandler creates a new custom events handler.
func NewCustomEventsHandler(deps Dependencies, log logger.Logger) *CustomEventsHandler {
	return &CustomEventsHandler{deps: deps, logger: log}
}

type eventsResponse struct {
	Success bool                `json:"success"`
	Events  []model.CustomEvent `json:"events"`
}

type eventResponse struct {
	Success bool              `json:"success"`
	Event   model.CustomEvent `json:"event"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// patchRequest is the PATCH body: the target id next to the changed fields.
type patchRequest struct {
	ID string `json:"id"`
	model.EventPatch
}

type deleteRequest struct {
	ID string `json:"id"`
}

// Handle handles /api/custom-events for GET, POST, PATCH and DELETE.
func (h *CustomEventsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodPatch:
		h.update(w, r)
	case http.MethodDelete:
		h.remove(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, PATCH, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *CustomEventsHandler) list(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_custom_events"
	events, err := h.deps.ListCustomEvents(r.Context())
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	if events == nil {
		events = []model.CustomEvent{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Success: true, Events: events})
}

func (h *CustomEventsHandler) create(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_custom_event"
	var req model.CustomEvent
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	ev, err := h.deps.CreateCustomEvent(r.Context(), req)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, eventResponse{Success: true, Event: ev})
}

func (h *CustomEventsHandler) update(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_custom_event"
	var req patchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeFailure(r.Context(), w, h.logger, op, ErrMissingID)
		return
	}
	ev, err := h.deps.UpdateCustomEvent(r.Context(), req.ID, req.EventPatch)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{Success: true, Event: ev})
}

// remove reads the id from the JSON body, falling back to ?id=.
func (h *CustomEventsHandler) remove(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_custom_event"
	var req deleteRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("id"))
	}
	if id == "" {
		writeFailure(r.Context(), w, h.logger, op, ErrMissingID)
		return
	}
	if err := h.deps.DeleteCustomEvent(r.Context(), id); err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// decodeBody decodes one JSON value from the request body. An empty body
// is reported as io.EOF wrapped in ErrBadRequest.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
