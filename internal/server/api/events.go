package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/weiting/handcount/internal/store"
)

// defaultEventLimit bounds the history returned when the client does
// not ask for a specific amount.
const defaultEventLimit = 50

// EventsHandler serves the committed gesture history.
type EventsHandler struct {
	store *store.Store
}

// NewEventsHandler creates a new EventsHandler with the given store.
func NewEventsHandler(s *store.Store) *EventsHandler {
	return &EventsHandler{store: s}
}

type eventResponse struct {
	ID          string `json:"id"`
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Confidence  int    `json:"confidence"`
	CommittedAt string `json:"committed_at"`
}

type listEventsResponse struct {
	Events []eventResponse `json:"events"`
}

// ServeHTTP handles GET /api/events?limit=N, newest first.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	events, err := h.store.Events().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	response := listEventsResponse{
		Events: make([]eventResponse, 0, len(events)),
	}
	for _, e := range events {
		response.Events = append(response.Events, eventResponse{
			ID:          e.ID,
			Number:      e.Number,
			Name:        e.Name,
			Confidence:  e.Confidence,
			CommittedAt: e.CommittedAt.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, response)
}
