package api

import (
	"net/http"
)

// Controller starts and stops the detection pipeline. The app
// implements it.
type Controller interface {
	Start() error
	Stop()
	IsRunning() bool
}

// ControlHandler exposes pipeline control over HTTP.
type ControlHandler struct {
	controller Controller
}

// NewControlHandler creates a new ControlHandler.
func NewControlHandler(c Controller) *ControlHandler {
	return &ControlHandler{controller: c}
}

type statusResponse struct {
	Running bool `json:"running"`
}

// ServeHTTP routes control requests.
func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/control/start":
		h.start(w, r)
	case "/api/control/stop":
		h.stop(w, r)
	case "/api/control/status":
		h.status(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// start handles POST /api/control/start.
func (h *ControlHandler) start(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := h.controller.Start(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start detection")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Running: h.controller.IsRunning()})
}

// stop handles POST /api/control/stop.
func (h *ControlHandler) stop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	h.controller.Stop()
	writeJSON(w, http.StatusOK, statusResponse{Running: h.controller.IsRunning()})
}

// status handles GET /api/control/status.
func (h *ControlHandler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Running: h.controller.IsRunning()})
}
