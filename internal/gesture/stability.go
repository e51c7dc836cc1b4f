package gesture

import "time"

// DefaultHoldFrames is the consecutive-frame streak a new reading must
// sustain before it is committed. At the default active capture rate it
// corresponds to roughly half a second.
const DefaultHoldFrames = 5

// candidate tracks a reading that differs from the committed one and is
// accumulating its streak toward promotion.
type candidate struct {
	reading Reading
	streak  int
}

// Filter is the temporal debounce state machine. It holds a committed
// reading and, optionally, one candidate; a candidate replaces the
// committed reading only after holdFrames consecutive observations.
// Per-frame classification is jittery near finger decision boundaries,
// so the committed reading never reflects a transient.
//
// Filter is not safe for concurrent use; it belongs to the single
// producer loop. The committed result is published through State.
type Filter struct {
	committed   Reading
	committedAt time.Time
	pending     *candidate
	holdFrames  int

	now func() time.Time // injectable for tests
}

// NewFilter creates a Filter committing after holdFrames consecutive
// matching observations. Values below 1 are clamped to 1.
func NewFilter(holdFrames int) *Filter {
	if holdFrames < 1 {
		holdFrames = 1
	}
	return &Filter{
		committed:  NotDetected(),
		holdFrames: holdFrames,
		now:        time.Now,
	}
}

// HoldFramesFor converts a stability window into a consecutive-frame
// threshold at the given capture rate.
func HoldFramesFor(window time.Duration, fps int) int {
	if fps <= 0 || window <= 0 {
		return DefaultHoldFrames
	}
	frames := int(window.Seconds()*float64(fps) + 0.5)
	if frames < 1 {
		frames = 1
	}
	return frames
}

// Observe feeds one combined reading into the state machine and returns
// the committed reading along with whether this observation promoted a
// candidate.
//
// A reading matching the committed one clears any pending candidate and
// changes nothing. A reading matching the pending candidate extends its
// streak and promotes at the threshold. Any other reading becomes the
// new candidate with a streak of 1; prior non-matching frames never
// count retroactively. The not-detected reading participates like any
// other, so a single-frame dropout cannot clear a committed gesture.
func (f *Filter) Observe(r Reading) (Reading, bool) {
	if r.Equal(f.committed) {
		f.pending = nil
		return f.committed, false
	}

	if f.pending != nil && f.pending.reading.Equal(r) {
		f.pending.streak++
	} else {
		f.pending = &candidate{reading: r, streak: 1}
	}

	if f.pending.streak >= f.holdFrames {
		f.committed = f.pending.reading
		f.committedAt = f.now()
		f.pending = nil
		return f.committed, true
	}

	return f.committed, false
}

// Committed returns the current committed reading and its commit time.
// The time is zero until the first promotion.
func (f *Filter) Committed() (Reading, time.Time) {
	return f.committed, f.committedAt
}

// HoldFrames returns the configured promotion threshold.
func (f *Filter) HoldFrames() int {
	return f.holdFrames
}

// Reset returns the filter to the empty baseline: not-detected
// committed, no candidate, zero commit time. Invoked when capture is
// stopped or restarted.
func (f *Filter) Reset() {
	f.committed = NotDetected()
	f.committedAt = time.Time{}
	f.pending = nil
}
