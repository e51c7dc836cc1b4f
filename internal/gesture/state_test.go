package gesture

import (
	"sync"
	"testing"
	"time"
)

func TestState_BaselineRead(t *testing.T) {
	s := NewState()
	snap := s.Read()

	if snap.Number != NumberNone {
		t.Errorf("number = %d, want %d", snap.Number, NumberNone)
	}
	if snap.Name != NameNotDetected {
		t.Errorf("name = %q, want %q", snap.Name, NameNotDetected)
	}
	if snap.Confidence != 0 {
		t.Errorf("confidence = %d, want 0", snap.Confidence)
	}
	if !snap.UpdatedAt.IsZero() {
		t.Error("baseline UpdatedAt should be zero")
	}
}

func TestState_CommitAndRead(t *testing.T) {
	s := NewState()
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	s.Commit(Reading{Number: 37, Name: "37", Confidence: 81}, at)

	snap := s.Read()
	want := Snapshot{Number: 37, Name: "37", Confidence: 81, UpdatedAt: at}
	if snap != want {
		t.Errorf("snapshot = %+v, want %+v", snap, want)
	}
}

func TestState_Reset(t *testing.T) {
	s := NewState()
	s.Commit(Reading{Number: 5, Name: "5", Confidence: 99}, time.Now())

	s.Reset()

	snap := s.Read()
	if snap.Number != NumberNone || snap.Name != NameNotDetected {
		t.Errorf("after reset snapshot = %+v, want baseline", snap)
	}
}

// Concurrent pollers must always see a number/name pair from the same
// commit. Run with -race; a torn read also shows up as a mismatched
// pair here because each commit writes a consistent (n, str(n)) tuple.
func TestState_NoTornReads(t *testing.T) {
	s := NewState()

	pairs := []Reading{
		{Number: 2, Name: "2", Confidence: 80},
		{Number: 37, Name: "37", Confidence: 70},
		{Number: NumberNamed, Name: "Like+OK", Confidence: 60},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			s.Commit(pairs[i%len(pairs)], time.Now())
		}
	}()

	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				snap := s.Read()
				ok := snap.Number == NumberNone && snap.Name == NameNotDetected
				for _, p := range pairs {
					if snap.Number == p.Number && snap.Name == p.Name {
						ok = true
						break
					}
				}
				if !ok {
					t.Errorf("torn read: %+v", snap)
					return
				}
			}
		}()
	}

	wg.Wait()
	<-done
}
