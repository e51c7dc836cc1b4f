package gesture

import (
	"sync"
	"time"
)

// Snapshot is the externally visible committed gesture state. Readers
// always see the full tuple from a single commit.
type Snapshot struct {
	Number     int       `json:"number"`
	Name       string    `json:"name"`
	Confidence int       `json:"confidence"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// State is the shared gesture record: written by the single producer
// loop on promotion, read concurrently by status pollers. An RWMutex
// guards the whole snapshot so a reader can never observe a number from
// one commit paired with a name from another.
type State struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewState creates a State at the not-detected baseline.
func NewState() *State {
	s := &State{}
	s.snap = baselineSnapshot()
	return s
}

// Read returns the last committed snapshot.
func (s *State) Read() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Commit replaces the snapshot with a newly promoted reading. Only the
// stability filter's owner calls this; there is no other mutation path.
func (s *State) Commit(r Reading, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{
		Number:     r.Number,
		Name:       r.Name,
		Confidence: r.Confidence,
		UpdatedAt:  at,
	}
}

// Reset returns the state to the not-detected baseline. Invoked when
// capture is stopped or restarted.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = baselineSnapshot()
}

func baselineSnapshot() Snapshot {
	r := NotDetected()
	return Snapshot{Number: r.Number, Name: r.Name, Confidence: r.Confidence}
}
