package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/weiting/handcount/internal/app"
	"github.com/weiting/handcount/internal/capture"
	"github.com/weiting/handcount/internal/detector"
	"github.com/weiting/handcount/internal/gesture"
	"github.com/weiting/handcount/internal/server"
	"github.com/weiting/handcount/internal/store"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	application := app.New(app.Config{
		Store:           s,
		IdleFPS:         30,
		ActiveFPS:       30,
		StabilityWindow: 100 * time.Millisecond,
	})

	mockDetector := detector.NewMockDetector()
	application.SetDetector(mockDetector)

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 90, 90, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()
	application.SetCamera(capture.NewMockCamera([]*gocv.Mat{&frame}, true))

	srv := server.New(server.Config{
		Store:      s,
		State:      application.State(),
		Controller: application,
	})
	application.SetCommitHook(func(snap gesture.Snapshot) {
		srv.Broadcaster().Publish(snap)
	})

	ts := httptest.NewServer(srv)
	defer ts.Close()
	client := ts.Client()

	if err := application.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer application.Stop()

	t.Run("TwoHandNumberCommits", func(t *testing.T) {
		mockDetector.SetHands([]detector.HandLandmarks{
			detector.DigitPose(3, detector.HandednessLeft),
			detector.DigitPose(5, detector.HandednessRight),
		})

		ok := waitFor(t, 2*time.Second, func() bool {
			return application.State().Read().Number == 35
		})
		if !ok {
			t.Fatalf("number 35 never committed, state = %+v", application.State().Read())
		}
	})

	t.Run("GestureEndpointReflectsCommit", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/gesture")
		if err != nil {
			t.Fatalf("get gesture error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var snap gesture.Snapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if snap.Number != 35 {
			t.Errorf("number = %d, want 35", snap.Number)
		}
		if snap.Name != "35" {
			t.Errorf("name = %q, want %q", snap.Name, "35")
		}
	})

	t.Run("EventRecorded", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/events")
		if err != nil {
			t.Fatalf("get events error = %v", err)
		}
		defer resp.Body.Close()

		var response struct {
			Events []struct {
				Number int    `json:"number"`
				Name   string `json:"name"`
			} `json:"events"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if len(response.Events) == 0 {
			t.Fatal("expected at least one recorded event")
		}
		if response.Events[0].Number != 35 {
			t.Errorf("latest event number = %d, want 35", response.Events[0].Number)
		}
	})

	t.Run("CompoundGestureCommits", func(t *testing.T) {
		mockDetector.SetHands([]detector.HandLandmarks{
			detector.LikePose(detector.HandednessLeft),
			detector.OKPose(detector.HandednessRight),
		})

		ok := waitFor(t, 2*time.Second, func() bool {
			return application.State().Read().Name == "Like+OK"
		})
		if !ok {
			t.Fatalf("compound gesture never committed, state = %+v", application.State().Read())
		}
		if n := application.State().Read().Number; n != gesture.NumberNamed {
			t.Errorf("number = %d, want named sentinel %d", n, gesture.NumberNamed)
		}
	})

	t.Run("StopViaAPIResetsState", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/control/stop", "application/json", nil)
		if err != nil {
			t.Fatalf("stop error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		snap := application.State().Read()
		if snap.Number != gesture.NumberNone || snap.Name != gesture.NameNotDetected {
			t.Errorf("expected baseline after stop, got %+v", snap)
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("health check error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after app operations")
		}
	})
}
