package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results, including while a
// pipeline goroutine is calling Detect.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Synthetic pose geometry. Coordinates are normalized image coordinates
// for a right hand facing the camera, fingers pointing up (Y grows
// downward). Left-hand poses are produced by mirroring X about 0.5.
//
// The offsets are chosen so an "extended" finger passes the full joint
// chain test in the extractor and a "curled" finger fails it with a
// clear margin.

var fingerBases = [4]Point3D{
	{X: 0.56, Y: 0.60}, // index MCP
	{X: 0.52, Y: 0.59}, // middle MCP
	{X: 0.48, Y: 0.60}, // ring MCP
	{X: 0.44, Y: 0.62}, // pinky MCP
}

// joint offsets relative to the finger MCP: PIP, DIP, TIP.
var (
	extendedOffsets = [3]Point3D{{X: 0.01, Y: -0.12}, {X: 0.015, Y: -0.20}, {X: 0.02, Y: -0.27}}
	curledOffsets   = [3]Point3D{{X: 0.0, Y: -0.05}, {X: -0.01, Y: 0.0}, {X: -0.02, Y: 0.04}}
)

// thumb joints: CMC, MCP, IP, TIP.
var (
	thumbExtended = [4]Point3D{{X: 0.56, Y: 0.78}, {X: 0.62, Y: 0.72}, {X: 0.67, Y: 0.68}, {X: 0.72, Y: 0.65}}
	thumbCurled   = [4]Point3D{{X: 0.55, Y: 0.78}, {X: 0.56, Y: 0.70}, {X: 0.55, Y: 0.64}, {X: 0.53, Y: 0.60}}
)

// SyntheticPose builds a HandLandmarks with the given fingers extended.
// The extended array is ordered thumb, index, middle, ring, pinky.
func SyntheticPose(handedness string, extended [5]bool) HandLandmarks {
	hand := HandLandmarks{
		Handedness: handedness,
		Score:      0.95,
	}

	hand.Points[Wrist] = Point3D{X: 0.5, Y: 0.85}

	thumb := thumbCurled
	if extended[0] {
		thumb = thumbExtended
	}
	hand.Points[ThumbCMC] = thumb[0]
	hand.Points[ThumbMCP] = thumb[1]
	hand.Points[ThumbIP] = thumb[2]
	hand.Points[ThumbTip] = thumb[3]

	for f := 0; f < 4; f++ {
		base := fingerBases[f]
		offsets := curledOffsets
		if extended[f+1] {
			offsets = extendedOffsets
		}
		mcp := IndexMCP + f*4
		hand.Points[mcp] = base
		hand.Points[mcp+1] = Point3D{X: base.X + offsets[0].X, Y: base.Y + offsets[0].Y}
		hand.Points[mcp+2] = Point3D{X: base.X + offsets[1].X, Y: base.Y + offsets[1].Y}
		hand.Points[mcp+3] = Point3D{X: base.X + offsets[2].X, Y: base.Y + offsets[2].Y}
	}

	if handedness == HandednessLeft {
		for i := 0; i < NumLandmarks; i++ {
			hand.Points[i].X = 1.0 - hand.Points[i].X
		}
	}

	return hand
}

// DigitPose returns a hand posing the digit n (0-5) using the canonical
// finger subsets: 1=index, 2=index+middle, 3=index+middle+ring,
// 4=all but thumb, 5=open palm, 0=fist.
func DigitPose(n int, handedness string) HandLandmarks {
	var extended [5]bool
	switch n {
	case 1:
		extended = [5]bool{false, true, false, false, false}
	case 2:
		extended = [5]bool{false, true, true, false, false}
	case 3:
		extended = [5]bool{false, true, true, true, false}
	case 4:
		extended = [5]bool{false, true, true, true, true}
	case 5:
		extended = [5]bool{true, true, true, true, true}
	}
	return SyntheticPose(handedness, extended)
}

// LikePose returns a thumbs-up hand: thumb extended, all others curled.
func LikePose(handedness string) HandLandmarks {
	return SyntheticPose(handedness, [5]bool{true, false, false, false, false})
}

// RockPose returns the rock-horns hand: thumb, index and pinky extended.
func RockPose(handedness string) HandLandmarks {
	return SyntheticPose(handedness, [5]bool{true, true, false, false, true})
}

// FuckPose returns the middle-finger-only hand.
func FuckPose(handedness string) HandLandmarks {
	return SyntheticPose(handedness, [5]bool{false, false, true, false, false})
}

// OKPose returns the OK-sign hand: middle, ring and pinky extended, and
// the thumb and index tips curled forward to touch, forming the circle.
func OKPose(handedness string) HandLandmarks {
	hand := SyntheticPose(HandednessRight, [5]bool{false, false, true, true, true})

	// Pull the thumb and index tips together above the palm. The index
	// stays "not extended" because its total reach is shorter than the
	// extractor's segment-ratio floor.
	hand.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.78}
	hand.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70}
	hand.Points[ThumbIP] = Point3D{X: 0.61, Y: 0.60}
	hand.Points[ThumbTip] = Point3D{X: 0.60, Y: 0.50}

	hand.Points[IndexMCP] = Point3D{X: 0.56, Y: 0.60}
	hand.Points[IndexPIP] = Point3D{X: 0.58, Y: 0.52}
	hand.Points[IndexDIP] = Point3D{X: 0.60, Y: 0.55}
	hand.Points[IndexTip] = Point3D{X: 0.61, Y: 0.51}

	if handedness == HandednessLeft {
		for i := 0; i < NumLandmarks; i++ {
			hand.Points[i].X = 1.0 - hand.Points[i].X
		}
	}
	hand.Handedness = handedness

	return hand
}
