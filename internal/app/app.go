// Package app wires the capture, detection, and gesture resolution
// pipeline together.
package app

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/weiting/handcount/internal/capture"
	"github.com/weiting/handcount/internal/detector"
	"github.com/weiting/handcount/internal/gesture"
	"github.com/weiting/handcount/internal/store"
)

// Pipeline defaults, used when the config leaves them unset.
const (
	DefaultIdleFPS         = 5
	DefaultActiveFPS       = 15
	DefaultIdleTimeout     = 2 * time.Second
	DefaultStabilityWindow = 500 * time.Millisecond
	DefaultMotionThreshold = 1.0
)

// maxHandsPerFrame bounds how many detected hands feed the combiner.
const maxHandsPerFrame = 2

// Config holds configuration options for the application.
type Config struct {
	Store  *store.Store
	Logger *zap.Logger

	CameraID int
	Width    int
	Height   int

	IdleFPS         int
	ActiveFPS       int
	IdleTimeout     time.Duration
	StabilityWindow time.Duration
	MotionThreshold float64
	// Mirror flips frames horizontally before detection.
	Mirror bool

	MaxHands               int
	MinDetectionConfidence float64
	MinTrackingConfidence  float64
}

// App owns the producer loop: it reads frames, resolves them into
// combined readings, debounces them, and publishes commits to the
// shared state, the event store, and any registered commit hook.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	filter   *gesture.Filter
	state    *gesture.State
	logger   *zap.Logger

	mu       sync.Mutex
	stopCh   chan struct{}
	doneCh   chan struct{}
	onCommit func(gesture.Snapshot)
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.IdleFPS <= 0 {
		config.IdleFPS = DefaultIdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = DefaultActiveFPS
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultIdleTimeout
	}
	if config.StabilityWindow <= 0 {
		config.StabilityWindow = DefaultStabilityWindow
	}
	if config.MotionThreshold <= 0 {
		config.MotionThreshold = DefaultMotionThreshold
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	a := &App{
		config: config,
		camera: capture.NewCamera(capture.Options{
			DeviceID: config.CameraID,
			Width:    config.Width,
			Height:   config.Height,
			FPS:      config.IdleFPS,
		}),
		motion: capture.NewMotionDetector(config.MotionThreshold),
		filter: gesture.NewFilter(gesture.HoldFramesFor(config.StabilityWindow, config.ActiveFPS)),
		state:  gesture.NewState(),
		logger: config.Logger,
	}

	detConfig := detector.Config{
		MaxHands:        config.MaxHands,
		MinConfidence:   config.MinDetectionConfidence,
		MinTrackingConf: config.MinTrackingConfidence,
	}
	if detConfig.MaxHands <= 0 {
		detConfig = detector.DefaultConfig()
	}

	// Prefer MediaPipe; the mock keeps the rest of the app usable when
	// the Python service is missing.
	if mp, err := detector.NewMediaPipeDetector(detConfig); err == nil {
		a.detector = mp
		a.logger.Info("using MediaPipe hand detection")
	} else {
		a.logger.Warn("MediaPipe not available, using mock detector", zap.Error(err))
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetCamera replaces the camera implementation. Tests inject a mock
// playback camera here. Must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetDetector replaces the hand detector implementation. Must be
// called before Start.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCommitHook registers a function invoked after every commit, e.g.
// to broadcast over WebSocket or update the tray. Must be called
// before Start.
func (a *App) SetCommitHook(fn func(gesture.Snapshot)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onCommit = fn
}

// State returns the shared gesture state read by the serving boundary.
func (a *App) State() *gesture.State {
	return a.state
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// IsRunning reports whether the pipeline is active.
func (a *App) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopCh != nil
}

// Start begins the detection pipeline. Starting resets the filter and
// the shared state to the not-detected baseline, so a restarted
// capture never resumes a stale gesture.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.camera.SetFPS(a.config.IdleFPS)
	a.filter.Reset()
	a.state.Reset()
	a.motion.Reset()

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	a.logger.Info("detection pipeline started",
		zap.Int("idle_fps", a.config.IdleFPS),
		zap.Int("active_fps", a.config.ActiveFPS),
		zap.Int("hold_frames", a.filter.HoldFrames()),
	)
	return nil
}

// Stop halts the detection pipeline, releases resources, and resets the
// engine to the not-detected baseline.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh == nil {
		return
	}

	close(a.stopCh)
	<-a.doneCh
	a.stopCh = nil
	a.doneCh = nil

	if err := a.camera.Close(); err != nil {
		a.logger.Warn("error closing camera", zap.Error(err))
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			a.logger.Warn("error closing detector", zap.Error(err))
		}
	}

	a.filter.Reset()
	a.state.Reset()

	a.logger.Info("detection pipeline stopped")
}
