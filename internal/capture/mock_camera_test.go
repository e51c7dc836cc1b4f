package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func testFrames(t *testing.T, n int) []*gocv.Mat {
	t.Helper()
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		mat := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
		frames[i] = &mat
		t.Cleanup(func() { mat.Close() })
	}
	return frames
}

func TestMockCamera_ReadRequiresOpen(t *testing.T) {
	cam := NewMockCamera(testFrames(t, 1), false)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame before Open: err = %v, want ErrCameraNotOpen", err)
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	frame, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	frame.Close()
}

func TestMockCamera_ExhaustsWithoutLoop(t *testing.T) {
	cam := NewMockCamera(testFrames(t, 2), false)
	cam.Open()

	for i := 0; i < 2; i++ {
		frame, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		frame.Close()
	}

	if _, err := cam.ReadFrame(); err == nil {
		t.Error("expected error after exhausting frames")
	}
}

func TestMockCamera_LoopsWhenConfigured(t *testing.T) {
	cam := NewMockCamera(testFrames(t, 2), true)
	cam.Open()

	for i := 0; i < 7; i++ {
		frame, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		frame.Close()
	}
}

func TestMockCamera_Reset(t *testing.T) {
	cam := NewMockCamera(testFrames(t, 1), false)
	cam.Open()

	frame, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	frame.Close()

	cam.Reset()

	frame, err = cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() after Reset error = %v", err)
	} else {
		frame.Close()
	}
}

func TestMockCamera_FPS(t *testing.T) {
	cam := NewMockCamera(nil, false)

	cam.SetFPS(15)
	if got := cam.FPS(); got != 15 {
		t.Errorf("FPS() = %d, want 15", got)
	}

	cam.SetFPS(0) // ignored
	if got := cam.FPS(); got != 15 {
		t.Errorf("FPS() after SetFPS(0) = %d, want 15", got)
	}
}
