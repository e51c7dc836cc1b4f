package gesture

import (
	"strconv"

	"github.com/weiting/handcount/internal/detector"
)

// Sentinel values for Reading.Number.
const (
	// NumberNone marks the not-detected reading.
	NumberNone = -1
	// NumberNamed marks a reading whose display name is a named or
	// compound gesture rather than a number.
	NumberNamed = -2
)

// NameNotDetected is the display name of the not-detected reading.
const NameNotDetected = "none"

// Reading is the per-frame resolution across all hands present in the
// frame: a number (-1 none, -2 named/compound, 0-9 single digit,
// 10-99 two-hand number), a display name, and a confidence in [0,100].
type Reading struct {
	Number     int    `json:"number"`
	Name       string `json:"name"`
	Confidence int    `json:"confidence"`
}

// NotDetected returns the baseline reading for frames without a usable
// hand.
func NotDetected() Reading {
	return Reading{Number: NumberNone, Name: NameNotDetected, Confidence: 0}
}

// Equal reports whether two readings resolve to the same gesture.
// Confidence is deliberately excluded: a steady gesture with a wobbling
// confidence must not reset the stability streak.
func (r Reading) Equal(o Reading) bool {
	return r.Number == o.Number && r.Name == o.Name
}

// HandLabel pairs a raw per-hand label with the hand's handedness tag.
type HandLabel struct {
	Handedness string
	Label      RawLabel
}

// Combine resolves the 0, 1, or 2 per-hand labels of one frame into a
// single reading.
//
// Unknown hands are discarded first: a frame with one Unknown and one
// valid hand resolves as the valid hand alone rather than dropping the
// frame. With two valid hands, the hand tagged Left always contributes
// the tens digit (or the first compound name), regardless of detection
// order or where the hand sits in the image.
func Combine(hands []HandLabel) Reading {
	valid := hands[:0:0]
	for _, h := range hands {
		if h.Label.Kind != LabelUnknown {
			valid = append(valid, h)
		}
	}

	switch len(valid) {
	case 0:
		return NotDetected()
	case 1:
		return singleHand(valid[0].Label)
	}

	left, right := orderByHandedness(valid[0], valid[1])

	conf := left.Label.Confidence
	if right.Label.Confidence < conf {
		conf = right.Label.Confidence
	}

	if left.Label.Kind == LabelDigit && right.Label.Kind == LabelDigit {
		number := left.Label.Digit*10 + right.Label.Digit
		return Reading{
			Number:     number,
			Name:       strconv.Itoa(number),
			Confidence: conf,
		}
	}

	// At least one named hand: compound display name, Left hand first.
	return Reading{
		Number:     NumberNamed,
		Name:       left.Label.Name + "+" + right.Label.Name,
		Confidence: conf,
	}
}

func singleHand(label RawLabel) Reading {
	switch label.Kind {
	case LabelDigit:
		return Reading{
			Number:     label.Digit,
			Name:       label.Name,
			Confidence: label.Confidence,
		}
	case LabelNamed:
		return Reading{
			Number:     NumberNamed,
			Name:       label.Name,
			Confidence: label.Confidence,
		}
	}
	return NotDetected()
}

// orderByHandedness returns the two hands as (left, right) by their
// handedness tags. When the tags don't disambiguate (both equal or
// missing), input order decides, keeping the result deterministic.
func orderByHandedness(a, b HandLabel) (HandLabel, HandLabel) {
	if a.Handedness == b.Handedness {
		return a, b
	}
	if b.Handedness == detector.HandednessLeft || a.Handedness == detector.HandednessRight {
		return b, a
	}
	return a, b
}
