package gesture

import (
	"testing"
	"time"
)

func reading(number int, name string, conf int) Reading {
	return Reading{Number: number, Name: name, Confidence: conf}
}

func TestFilter_StartsAtBaseline(t *testing.T) {
	f := NewFilter(5)
	committed, at := f.Committed()
	if committed != NotDetected() {
		t.Errorf("initial committed = %+v, want not-detected", committed)
	}
	if !at.IsZero() {
		t.Error("initial commit time should be zero")
	}
}

// A new reading promotes exactly at the threshold, not before.
func TestFilter_PromotesAtThreshold(t *testing.T) {
	f := NewFilter(5)
	two := reading(2, "2", 90)

	for i := 1; i <= 4; i++ {
		committed, promoted := f.Observe(two)
		if promoted {
			t.Fatalf("frame %d: promoted before threshold", i)
		}
		if committed != NotDetected() {
			t.Fatalf("frame %d: committed = %+v, want not-detected", i, committed)
		}
	}

	committed, promoted := f.Observe(two)
	if !promoted {
		t.Fatal("frame 5: expected promotion at threshold")
	}
	if !committed.Equal(two) {
		t.Errorf("committed = %+v, want %+v", committed, two)
	}
}

// End-to-end scenario from the product requirements: a Right hand holds
// digit 2 for 3 frames and then 7 more; with a 5-frame threshold the
// commit lands exactly on the 5th matching frame of the streak.
func TestFilter_CommitLandsOnFifthFrame(t *testing.T) {
	f := NewFilter(5)
	two := reading(2, "2", 85)

	promotedAt := 0
	for i := 1; i <= 10; i++ {
		if _, promoted := f.Observe(two); promoted {
			promotedAt = i
			break
		}
	}
	if promotedAt != 5 {
		t.Errorf("promoted on frame %d, want 5", promotedAt)
	}

	committed, _ := f.Committed()
	if committed.Number != 2 || committed.Name != "2" {
		t.Errorf("committed = %+v, want digit 2", committed)
	}
}

// A single divergent frame amid a steady stream must not disturb the
// committed reading, and must not leave a stale candidate behind.
func TestFilter_OneOffDivergenceIgnored(t *testing.T) {
	f := NewFilter(3)
	a := reading(4, "4", 90)
	b := reading(5, "5", 90)

	for i := 0; i < 3; i++ {
		f.Observe(a)
	}

	f.Observe(b) // blip
	committed, _ := f.Committed()
	if !committed.Equal(a) {
		t.Fatalf("committed changed on a single divergent frame: %+v", committed)
	}

	// Back to the steady stream: the blip's candidate is cleared, so
	// even another two B frames later no stale streak promotes early.
	f.Observe(a)
	f.Observe(b)
	f.Observe(b)
	committed, _ = f.Committed()
	if !committed.Equal(a) {
		t.Errorf("two non-consecutive B frames promoted: %+v", committed)
	}
}

// A candidate streak starts at 1 on the frame it first appears, never
// counting prior non-matching frames.
func TestFilter_CandidateStreakRestarts(t *testing.T) {
	f := NewFilter(3)
	b := reading(7, "7", 80)
	c := reading(9, "9", 80)

	f.Observe(b)
	f.Observe(b)
	f.Observe(c) // replaces the B candidate, streak 1
	f.Observe(b) // B again: fresh candidate, streak 1
	_, promoted := f.Observe(b)
	if promoted {
		t.Fatal("B promoted after only 2 consecutive frames")
	}
	_, promoted = f.Observe(b)
	if !promoted {
		t.Error("B should promote on its 3rd consecutive frame")
	}
}

// Re-observing the committed reading is a no-op: no flapping and no
// re-timestamping.
func TestFilter_Idempotence(t *testing.T) {
	f := NewFilter(2)

	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return stamp }

	five := reading(5, "5", 95)
	f.Observe(five)
	if _, promoted := f.Observe(five); !promoted {
		t.Fatal("expected promotion on frame 2")
	}
	_, firstAt := f.Committed()

	stamp = stamp.Add(time.Minute)
	for i := 0; i < 10; i++ {
		if _, promoted := f.Observe(five); promoted {
			t.Fatal("steady state re-promoted")
		}
	}

	_, at := f.Committed()
	if !at.Equal(firstAt) {
		t.Errorf("commit timestamp moved from %v to %v on steady input", firstAt, at)
	}
}

// A brief dropout does not clear a committed gesture; only a sustained
// absence promotes the not-detected reading.
func TestFilter_DropoutDebounced(t *testing.T) {
	f := NewFilter(4)
	one := reading(1, "1", 88)
	none := NotDetected()

	for i := 0; i < 4; i++ {
		f.Observe(one)
	}

	for i := 1; i <= 3; i++ {
		committed, _ := f.Observe(none)
		if !committed.Equal(one) {
			t.Fatalf("dropout frame %d cleared the committed gesture", i)
		}
	}

	committed, promoted := f.Observe(none)
	if !promoted || !committed.Equal(none) {
		t.Error("sustained absence should promote not-detected")
	}
}

func TestFilter_Reset(t *testing.T) {
	f := NewFilter(1)
	f.Observe(reading(3, "3", 90))

	f.Reset()

	committed, at := f.Committed()
	if committed != NotDetected() {
		t.Errorf("after reset committed = %+v, want not-detected", committed)
	}
	if !at.IsZero() {
		t.Error("after reset commit time should be zero")
	}
}

func TestFilter_ThresholdClampedToOne(t *testing.T) {
	f := NewFilter(0)
	_, promoted := f.Observe(reading(8, "8", 70))
	if !promoted {
		t.Error("threshold 0 should clamp to 1 and promote immediately")
	}
}

func TestHoldFramesFor(t *testing.T) {
	tests := []struct {
		window time.Duration
		fps    int
		want   int
	}{
		{500 * time.Millisecond, 10, 5},
		{500 * time.Millisecond, 15, 8},
		{time.Second, 15, 15},
		{10 * time.Millisecond, 10, 1}, // rounds down to 0, clamped
		{0, 15, DefaultHoldFrames},
		{500 * time.Millisecond, 0, DefaultHoldFrames},
	}
	for _, tt := range tests {
		if got := HoldFramesFor(tt.window, tt.fps); got != tt.want {
			t.Errorf("HoldFramesFor(%v, %d) = %d, want %d", tt.window, tt.fps, got, tt.want)
		}
	}
}
