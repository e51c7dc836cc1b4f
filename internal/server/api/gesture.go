// Package api provides the HTTP API handlers for the gesture
// resolution engine.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/weiting/handcount/internal/gesture"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// GestureHandler serves the current committed gesture and the catalog
// of recognizable gestures.
type GestureHandler struct {
	state *gesture.State
}

// NewGestureHandler creates a new GestureHandler over the shared state.
func NewGestureHandler(state *gesture.State) *GestureHandler {
	return &GestureHandler{state: state}
}

type gestureHelpEntry struct {
	Gesture     string `json:"gesture"`
	Description string `json:"description"`
}

// helpEntries is the catalog returned by /api/gesture/help.
var helpEntries = []gestureHelpEntry{
	{"0-5", "Single hand: number of extended fingers. A fist is 0, an open palm is 5."},
	{"6-9", "Single hand: thumb curled plus four fingers reads as 4; digits above 5 need both hands."},
	{"10-99", "Two hands showing digits: the left hand is the tens digit, the right hand is the ones digit."},
	{"Like", "Thumb up, all other fingers curled."},
	{"OK", "Thumb and index tips touching in a circle, remaining fingers extended."},
	{"Rock", "Index and pinky extended with the thumb out."},
	{"Fuck", "Middle finger extended, everything else curled."},
	{"Combined", "Two named gestures at once are joined left hand first, e.g. \"Like+OK\"."},
}

// ServeHTTP routes between the snapshot and help endpoints.
func (h *GestureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	switch r.URL.Path {
	case "/api/gesture":
		h.current(w, r)
	case "/api/gesture/help":
		h.help(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// current handles GET /api/gesture and returns the committed snapshot.
func (h *GestureHandler) current(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Read())
}

// help handles GET /api/gesture/help.
func (h *GestureHandler) help(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"gestures": helpEntries,
	})
}
