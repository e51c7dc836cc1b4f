package app

import (
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/weiting/handcount/internal/detector"
	"github.com/weiting/handcount/internal/gesture"
	"github.com/weiting/handcount/internal/store"
)

// runPipeline is the single producer: it reads frames at the current
// rate, resolves each into one combined reading, feeds the stability
// filter, and publishes on every commit. Motion only adjusts the frame
// rate; readings flow to the filter in both modes so a dropped hand is
// debounced the same way a new gesture is.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	activeMode := false
	lastMotion := time.Now()

	ticker := time.NewTicker(time.Second / time.Duration(a.config.IdleFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			a.logger.Debug("frame read failed", zap.Error(err))
			continue
		}

		if a.config.Mirror {
			gocv.Flip(*frame, frame, 1)
		}

		motion, changePercent := a.motion.Detect(frame)

		switch {
		case motion:
			lastMotion = time.Now()
			if !activeMode {
				activeMode = true
				a.camera.SetFPS(a.config.ActiveFPS)
				ticker.Reset(time.Second / time.Duration(a.config.ActiveFPS))
				a.logger.Debug("motion detected, switching to active mode",
					zap.Float64("change_percent", changePercent))
			}
		case activeMode && time.Since(lastMotion) > a.config.IdleTimeout:
			activeMode = false
			a.camera.SetFPS(a.config.IdleFPS)
			ticker.Reset(time.Second / time.Duration(a.config.IdleFPS))
			a.logger.Debug("no motion, switching to idle mode")
		}

		hands, err := a.detector.Detect(frame)
		frame.Close()
		if err != nil {
			a.logger.Debug("hand detection failed", zap.Error(err))
			continue
		}

		reading := a.resolve(hands)

		committed, promoted := a.filter.Observe(reading)
		if !promoted {
			continue
		}
		a.publish(committed)
	}
}

// resolve classifies each detected hand and combines the per-hand
// labels into a single frame reading.
func (a *App) resolve(hands []detector.HandLandmarks) gesture.Reading {
	if len(hands) > maxHandsPerFrame {
		hands = hands[:maxHandsPerFrame]
	}

	labels := make([]gesture.HandLabel, 0, len(hands))
	for i := range hands {
		hand := &hands[i]
		state := gesture.ExtractFingerState(hand)
		labels = append(labels, gesture.HandLabel{
			Handedness: hand.Handedness,
			Label:      gesture.Classify(hand, state),
		})
	}

	return gesture.Combine(labels)
}

// publish records a freshly committed reading in the shared state, the
// event store, and the commit hook.
func (a *App) publish(committed gesture.Reading) {
	_, at := a.filter.Committed()
	a.state.Commit(committed, at)

	a.logger.Info("gesture committed",
		zap.Int("number", committed.Number),
		zap.String("name", committed.Name),
		zap.Int("confidence", committed.Confidence),
	)

	if a.config.Store != nil && !committed.Equal(gesture.NotDetected()) {
		err := a.config.Store.Events().Insert(&store.Event{
			Number:      committed.Number,
			Name:        committed.Name,
			Confidence:  committed.Confidence,
			CommittedAt: at,
		})
		if err != nil {
			a.logger.Warn("failed to record gesture event", zap.Error(err))
		}
	}

	if a.onCommit != nil {
		a.onCommit(a.state.Read())
	}
}
