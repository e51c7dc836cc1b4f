package app

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/weiting/handcount/internal/capture"
	"github.com/weiting/handcount/internal/detector"
	"github.com/weiting/handcount/internal/gesture"
	"github.com/weiting/handcount/internal/store"
)

// solidFrame returns a uniform gray frame, so the motion detector stays
// quiet and the pipeline runs at the idle rate throughout the test.
func solidFrame(t *testing.T) *gocv.Mat {
	t.Helper()
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 90, 90, 0), 48, 64, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { mat.Close() })
	return &mat
}

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

func TestPipeline_CommitsStableGesture(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pipeline integration test in short mode")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer s.Close()

	a := New(Config{
		Store:           s,
		IdleFPS:         30,
		ActiveFPS:       30,
		StabilityWindow: 100 * time.Millisecond,
	})

	mock := detector.NewMockDetector()
	pose := detector.DigitPose(2, detector.HandednessRight)
	mock.SetHands([]detector.HandLandmarks{pose})
	a.SetDetector(mock)
	a.SetCamera(capture.NewMockCamera([]*gocv.Mat{solidFrame(t)}, true))

	var (
		commitMu sync.Mutex
		commits  []gesture.Snapshot
	)
	a.SetCommitHook(func(snap gesture.Snapshot) {
		commitMu.Lock()
		defer commitMu.Unlock()
		commits = append(commits, snap)
	})

	require.NoError(t, a.Start())
	defer a.Stop()

	ok := waitFor(t, 2*time.Second, func() bool {
		return a.State().Read().Number == 2
	})
	require.True(t, ok, "pipeline should commit the held digit")

	snap := a.State().Read()
	assert.Equal(t, "2", snap.Name)
	assert.Greater(t, snap.Confidence, 0)

	// The hook fired for the same commit.
	commitMu.Lock()
	require.NotEmpty(t, commits)
	assert.Equal(t, 2, commits[len(commits)-1].Number)
	commitMu.Unlock()

	// The commit was recorded as an event.
	events, err := s.Events().List(0)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, 2, events[0].Number)

	// Dropping the hand debounces back to the not-detected baseline.
	mock.SetHands(nil)
	ok = waitFor(t, 2*time.Second, func() bool {
		return a.State().Read().Number == gesture.NumberNone
	})
	assert.True(t, ok, "lost hand should debounce to not detected")
}

func TestPipeline_StopResetsState(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pipeline integration test in short mode")
	}

	a := New(Config{
		IdleFPS:         30,
		ActiveFPS:       30,
		StabilityWindow: 100 * time.Millisecond,
	})

	mock := detector.NewMockDetector()
	mock.SetHands([]detector.HandLandmarks{detector.LikePose(detector.HandednessLeft)})
	a.SetDetector(mock)
	a.SetCamera(capture.NewMockCamera([]*gocv.Mat{solidFrame(t)}, true))

	require.NoError(t, a.Start())

	ok := waitFor(t, 2*time.Second, func() bool {
		return a.State().Read().Name == "Like"
	})
	require.True(t, ok)

	a.Stop()
	assert.False(t, a.IsRunning())

	snap := a.State().Read()
	assert.Equal(t, gesture.NumberNone, snap.Number)
	assert.Equal(t, gesture.NameNotDetected, snap.Name)
	assert.Equal(t, 0, snap.Confidence)
}

func TestPipeline_StartIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pipeline integration test in short mode")
	}

	a := New(Config{IdleFPS: 30, ActiveFPS: 30})
	a.SetDetector(detector.NewMockDetector())
	a.SetCamera(capture.NewMockCamera([]*gocv.Mat{solidFrame(t)}, true))

	require.NoError(t, a.Start())
	require.NoError(t, a.Start())
	assert.True(t, a.IsRunning())

	a.Stop()
	a.Stop()
	assert.False(t, a.IsRunning())
}
