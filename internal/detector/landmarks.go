// Package detector provides hand detection interfaces and types for the
// finger-counting pipeline.
package detector

import "math"

// Hand landmark indices following the MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness tags as reported by the upstream detector.
const (
	HandednessLeft  = "Left"
	HandednessRight = "Right"
)

// Point3D represents a 3D point in normalized image coordinates.
// X and Y are in [0,1] with Y growing downward; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected for one hand
// in one frame, plus the detector's handedness tag and confidence score.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`      // detection confidence in [0,1]
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Scale returns the characteristic size of the hand, measured as the
// distance from the wrist to the middle finger MCP. It is used to
// normalize geometric margins so they are invariant to how close the
// hand is to the camera. Returns 0 for a degenerate hand.
func (h *HandLandmarks) Scale() float64 {
	if h == nil {
		return 0
	}
	return distance3D(h.Points[Wrist], h.Points[MiddleMCP])
}

// PalmWidth returns the lateral width of the palm, measured between the
// index and pinky MCP joints along the X axis. Returns 0 for a
// degenerate hand.
func (h *HandLandmarks) PalmWidth() float64 {
	if h == nil {
		return 0
	}
	return math.Abs(h.Points[IndexMCP].X - h.Points[PinkyMCP].X)
}

// TipDistance returns the Euclidean distance between two landmarks,
// e.g. ThumbTip and IndexTip for the OK-circle test.
func (h *HandLandmarks) TipDistance(a, b int) float64 {
	if h == nil || a < 0 || a >= NumLandmarks || b < 0 || b >= NumLandmarks {
		return 0
	}
	return distance3D(h.Points[a], h.Points[b])
}
