package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeController records control calls for testing.
type fakeController struct {
	running  bool
	startErr error
}

func (f *fakeController) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	f.running = true
	return nil
}

func (f *fakeController) Stop()           { f.running = false }
func (f *fakeController) IsRunning() bool { return f.running }

func TestControlHandler_StartStop(t *testing.T) {
	ctrl := &fakeController{}
	handler := NewControlHandler(ctrl)

	req := httptest.NewRequest(http.MethodPost, "/api/control/start", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var status statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !status.Running {
		t.Error("expected running after start")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/control/stop", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ctrl.running {
		t.Error("expected controller stopped")
	}
}

func TestControlHandler_StartError(t *testing.T) {
	ctrl := &fakeController{startErr: errors.New("camera busy")}
	handler := NewControlHandler(ctrl)

	req := httptest.NewRequest(http.MethodPost, "/api/control/start", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

func TestControlHandler_Status(t *testing.T) {
	ctrl := &fakeController{running: true}
	handler := NewControlHandler(ctrl)

	req := httptest.NewRequest(http.MethodGet, "/api/control/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var status statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !status.Running {
		t.Error("expected running status")
	}
}

func TestControlHandler_RequiresPost(t *testing.T) {
	handler := NewControlHandler(&fakeController{})

	for _, path := range []string{"/api/control/start", "/api/control/stop"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("GET %s: expected status %d, got %d", path, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}

func TestControlHandler_UnknownPath(t *testing.T) {
	handler := NewControlHandler(&fakeController{})

	req := httptest.NewRequest(http.MethodPost, "/api/control/restart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
