// Package gesture implements the gesture resolution engine: per-frame
// finger-state extraction and classification, dual-hand combination,
// temporal debouncing, and the shared committed state read by pollers.
package gesture

import (
	"math"

	"github.com/weiting/handcount/internal/detector"
)

// Finger indexes into a FingerState.
type Finger int

// Fingers in MediaPipe order.
const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

// Extraction thresholds, in normalized image coordinates. The pixel
// values of the reference implementation (on 640x480 frames) map to
// roughly these fractions of frame height.
const (
	// thumbMarginFloor is the minimum lateral distance between thumb
	// tip and MCP for the thumb to count as extended.
	thumbMarginFloor = 0.03
	// thumbPalmFraction scales the thumb margin with palm width.
	thumbPalmFraction = 0.15
	// jointSlackDIP is the allowed sag of the DIP joint below the PIP.
	jointSlackDIP = 0.01
	// jointSlackPIP is the allowed sag of the PIP joint below the MCP.
	jointSlackPIP = 0.02
	// tipClearance is how far above the MCP a fingertip must reach.
	tipClearance = 0.02
	// reachRatio is the minimum total tip-to-MCP reach relative to the
	// MCP-to-PIP segment; a curled finger fails this even when the
	// individual joint checks pass.
	reachRatio = 1.5
)

// FingerState holds the extended flag for each of the five fingers.
type FingerState [NumFingers]bool

// Count returns the number of extended fingers.
func (s FingerState) Count() int {
	n := 0
	for _, up := range s {
		if up {
			n++
		}
	}
	return n
}

// Mask packs the state into a 5-bit mask, thumb in the low bit.
// It is the index into the classifier's lookup table.
func (s FingerState) Mask() int {
	mask := 0
	for i, up := range s {
		if up {
			mask |= 1 << i
		}
	}
	return mask
}

// StateFromMask is the inverse of Mask. Used by exhaustive tests.
func StateFromMask(mask int) FingerState {
	var s FingerState
	for i := 0; i < int(NumFingers); i++ {
		s[i] = mask&(1<<i) != 0
	}
	return s
}

// ExtractFingerState derives the per-finger extended flags from one
// hand observation. Pure function of the observation; degenerate or
// missing geometry yields not-extended rather than an error.
//
// The thumb is judged along the lateral (X) axis against its MCP
// joint, with the comparison direction mirrored by the handedness tag.
// The remaining fingers are judged along the vertical (Y) axis with a
// strict joint chain: tip above DIP, DIP roughly above PIP, PIP
// roughly above MCP, tip clearly above MCP, and total reach well past
// a single joint segment.
func ExtractFingerState(hand *detector.HandLandmarks) FingerState {
	var state FingerState
	if hand == nil {
		return state
	}

	state[Thumb] = thumbExtended(hand)

	tips := [4]int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	for i, tip := range tips {
		state[Index+Finger(i)] = fingerExtended(hand, tip)
	}

	return state
}

func thumbExtended(hand *detector.HandLandmarks) bool {
	palmWidth := hand.PalmWidth()
	if palmWidth <= 0 {
		return false
	}

	tipX := hand.Points[detector.ThumbTip].X
	mcpX := hand.Points[detector.ThumbMCP].X
	wristX := hand.Points[detector.Wrist].X

	margin := math.Abs(tipX - mcpX)
	threshold := math.Max(palmWidth*thumbPalmFraction, thumbMarginFloor)

	// Mirror the lateral test by handedness so the same physical pose
	// reads identically on either hand. An untagged hand falls back to
	// the wrist-vs-middle-MCP geometric inference.
	var pointsOutward bool
	switch hand.Handedness {
	case detector.HandednessLeft:
		pointsOutward = tipX < mcpX
	case detector.HandednessRight:
		pointsOutward = tipX > mcpX
	default:
		isLeft := wristX > hand.Points[detector.MiddleMCP].X
		if isLeft {
			pointsOutward = tipX < mcpX
		} else {
			pointsOutward = tipX > mcpX
		}
	}

	if pointsOutward && margin > threshold {
		return true
	}

	// A tip reaching well past the MCP's distance from the wrist also
	// counts as extended, which catches thumbs angled toward the camera.
	tipReach := math.Abs(tipX - wristX)
	mcpReach := math.Abs(mcpX - wristX)
	return tipReach > mcpReach*1.2
}

func fingerExtended(hand *detector.HandLandmarks, tip int) bool {
	tipY := hand.Points[tip].Y
	dipY := hand.Points[tip-1].Y
	pipY := hand.Points[tip-2].Y
	mcpY := hand.Points[tip-3].Y

	// Y grows downward: smaller Y is higher in the image.
	if tipY >= dipY {
		return false
	}
	if dipY > pipY+jointSlackDIP {
		return false
	}
	if pipY > mcpY+jointSlackPIP {
		return false
	}
	if tipY >= mcpY-tipClearance {
		return false
	}

	reach := mcpY - tipY
	segment := mcpY - pipY
	return reach > segment*reachRatio
}

// fingerMargin returns the normalized distance between the fingertip
// and its deciding joint along the decision axis. It feeds the
// classifier's confidence: a borderline pose has a small margin on at
// least one finger.
func fingerMargin(hand *detector.HandLandmarks, f Finger) float64 {
	scale := hand.Scale()
	if scale <= 0 {
		return 0
	}

	if f == Thumb {
		delta := hand.Points[detector.ThumbTip].X - hand.Points[detector.ThumbMCP].X
		return math.Abs(delta) / scale
	}

	// IndexTip, MiddleTip, RingTip, PinkyTip are 4 apart.
	tip := detector.IndexTip + (int(f)-1)*4
	delta := hand.Points[tip-2].Y - hand.Points[tip].Y
	return math.Abs(delta) / scale
}
