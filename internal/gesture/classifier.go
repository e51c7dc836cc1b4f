package gesture

import (
	"github.com/weiting/handcount/internal/detector"
)

// LabelKind discriminates the raw per-hand classification result.
type LabelKind string

const (
	// LabelDigit is a counting gesture 0-5.
	LabelDigit LabelKind = "digit"
	// LabelNamed is a recognized non-digit pose (Like, OK, Rock, Fuck).
	LabelNamed LabelKind = "named"
	// LabelUnknown is any finger pattern outside the recognized set.
	LabelUnknown LabelKind = "unknown"
)

// Display names for the named gestures.
const (
	NameLike = "Like"
	NameOK   = "OK"
	NameRock = "Rock"
	NameFuck = "Fuck"
)

// RawLabel is the per-hand, per-frame classification result before any
// temporal smoothing.
type RawLabel struct {
	Kind       LabelKind
	Digit      int    // valid when Kind == LabelDigit
	Name       string // display name, set for digits and named gestures
	Confidence int    // geometric confidence in [0,100]
}

// okCircleFraction is the maximum thumb-tip/index-tip distance,
// relative to palm width, for the OK circle to count as closed.
const okCircleFraction = 0.4

// fullScaleMargin is the normalized geometric margin at or above which
// a decision earns full confidence.
const fullScaleMargin = 0.12

// tableEntry is one row of the classifier's lookup table.
type tableEntry struct {
	kind     LabelKind
	digit    int
	name     string
	okCircle bool // entry holds only if the thumb-index circle is closed
}

// labelTable maps every 5-bit finger mask (thumb in the low bit) to
// exactly one label. Unlisted patterns stay LabelUnknown, so the
// mapping is total by construction.
var labelTable [32]tableEntry

func init() {
	for i := range labelTable {
		labelTable[i] = tableEntry{kind: LabelUnknown}
	}

	digit := func(mask, n int) {
		labelTable[mask] = tableEntry{kind: LabelDigit, digit: n}
	}
	named := func(mask int, name string) {
		labelTable[mask] = tableEntry{kind: LabelNamed, name: name}
	}

	const (
		thumb  = 1 << Thumb
		index  = 1 << Index
		middle = 1 << Middle
		ring   = 1 << Ring
		pinky  = 1 << Pinky
	)

	// Counting gestures, canonical subsets.
	digit(0, 0)
	digit(index, 1)
	digit(index|middle, 2)
	digit(thumb|index, 2)
	digit(index|middle|ring, 3)
	digit(thumb|index|middle, 3)
	// Any four extended fingers reads as 4.
	digit(index|middle|ring|pinky, 4)
	digit(thumb|middle|ring|pinky, 4)
	digit(thumb|index|ring|pinky, 4)
	digit(thumb|index|middle|pinky, 4)
	digit(thumb|index|middle|ring, 4)
	digit(thumb|index|middle|ring|pinky, 5)

	// Named gestures.
	named(thumb, NameLike)
	named(middle, NameFuck)
	named(thumb|index|pinky, NameRock)

	// OK needs the closed thumb-index circle on top of the mask.
	labelTable[middle|ring|pinky] = tableEntry{kind: LabelNamed, name: NameOK, okCircle: true}
}

// Classify maps a finger state to its raw label. The observation is
// consulted only for geometric confidence and the OK-circle check; the
// label itself comes from the lookup table, so every one of the 32
// finger patterns resolves to exactly one label.
func Classify(hand *detector.HandLandmarks, state FingerState) RawLabel {
	entry := labelTable[state.Mask()]

	if entry.okCircle && !okCircleClosed(hand) {
		entry = tableEntry{kind: LabelUnknown}
	}

	label := RawLabel{
		Kind:       entry.kind,
		Digit:      entry.digit,
		Name:       entry.name,
		Confidence: confidence(hand),
	}
	if label.Kind == LabelDigit {
		label.Name = digitName(label.Digit)
	}

	return label
}

// okCircleClosed reports whether the thumb and index fingertips are
// close enough to form the OK circle.
func okCircleClosed(hand *detector.HandLandmarks) bool {
	if hand == nil {
		return false
	}
	palmWidth := hand.PalmWidth()
	if palmWidth <= 0 {
		return false
	}
	return hand.TipDistance(detector.ThumbTip, detector.IndexTip) < palmWidth*okCircleFraction
}

// confidence scores how unambiguous the deciding comparisons were.
// The weakest finger margin bounds the score: one borderline finger is
// enough to make the whole label flicker-prone.
func confidence(hand *detector.HandLandmarks) int {
	if hand == nil || hand.Scale() <= 0 {
		return 0
	}

	minMargin := fingerMargin(hand, Thumb)
	for f := Index; f < NumFingers; f++ {
		if m := fingerMargin(hand, f); m < minMargin {
			minMargin = m
		}
	}

	ratio := minMargin / fullScaleMargin
	if ratio > 1 {
		ratio = 1
	}
	return int(ratio*100 + 0.5)
}

var digitNames = [6]string{"0", "1", "2", "3", "4", "5"}

func digitName(n int) string {
	if n < 0 || n >= len(digitNames) {
		return ""
	}
	return digitNames[n]
}
