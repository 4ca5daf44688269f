package metrics

import (
	"github.com/jsphweid/engraver/model"
	"github.com/jsphweid/engraver/theory"
	"github.com/jsphweid/engraver/util"
)

type Spacing struct {
	Left  float64
	Right float64
}

// Spacer computes the room one chord needs around its onset.
type Spacer interface {
	ChordSpacing(c *model.Chord, state int) Spacing
}

// DefaultSpacer sizes chords from their note value, dots, accidental
// columns and grace notes.
type DefaultSpacer struct {
	Unit float64
}

var valueSpace = []float64{
	theory.Whole:     5,
	theory.Half:      3.6,
	theory.Quarter:   2.8,
	theory.Eighth:    2.2,
	theory.Sixteenth: 1.8,
}

const (
	shortSpace      = 1.5
	dotSpace        = 0.6
	accidentalSpace = 1.1
	graceSpace      = 1.3
)

func (d DefaultSpacer) ChordSpacing(c *model.Chord, state int) Spacing {
	right := shortSpace
	if int(c.Value) < len(valueSpace) {
		right = valueSpace[c.Value]
	}
	right += float64(c.Dots) * dotSpace

	columns, graces := 0, 0
	for _, n := range c.Notes() {
		r := n.Representation(state)
		if r.Accidental != theory.AccidentalNone {
			columns = util.Max(columns, r.AccidentalColumn+1)
		}
		graces = util.Max(graces, len(n.Graces()))
	}
	left := float64(columns)*accidentalSpace + float64(graces)*graceSpace
	return Spacing{Left: left * d.Unit, Right: right * d.Unit}
}
