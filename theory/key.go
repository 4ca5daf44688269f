package theory

import "fmt"

// KeySignature counts sharps (positive) or flats (negative); the zero
// value is C major.
type KeySignature struct {
	Fifths int8
	Minor  bool
}

const MaxFifths = 7

var sharpOrder = [7]int8{StepF, StepC, StepG, StepD, StepA, StepE, StepB}
var flatOrder = [7]int8{StepB, StepE, StepA, StepD, StepG, StepC, StepF}

func (k KeySignature) Valid() bool {
	return k.Fifths >= -MaxFifths && k.Fifths <= MaxFifths
}

// Accidentals is the number of symbols drawn for the signature.
func (k KeySignature) Accidentals() int {
	if k.Fifths < 0 {
		return int(-k.Fifths)
	}
	return int(k.Fifths)
}

// Alteration is the implied alteration of a diatonic step.
func (k KeySignature) Alteration(step int) int8 {
	step = floorMod(step, 7)
	if k.Fifths > 0 {
		for i := 0; i < int(k.Fifths) && i < 7; i++ {
			if int(sharpOrder[i]) == step {
				return 1
			}
		}
	} else {
		for i := 0; i < int(-k.Fifths) && i < 7; i++ {
			if int(flatOrder[i]) == step {
				return -1
			}
		}
	}
	return 0
}

// Tonic of the major key with this signature (relative major for minor).
func (k KeySignature) Tonic() Pitch {
	step := floorMod(4*int(k.Fifths), 7)
	return Pitch{Step: int8(step), Alteration: k.Alteration(step), Octave: 4}
}

// Spell picks a pitch for a MIDI value, preferring the key's own scale
// degrees and falling back to the key's accidental direction.
func (k KeySignature) Spell(midi int) Pitch {
	oct := floorDiv(midi, 12) - 1
	pc := floorMod(midi, 12)
	for step := 0; step < 7; step++ {
		alt := int(k.Alteration(step))
		v := stepSemitones[step] + alt
		d := floorMod(v, 12)
		if d == pc {
			o := oct
			if v < 0 {
				o++
			} else if v >= 12 {
				o--
			}
			return Pitch{Step: int8(step), Alteration: int8(alt), Octave: int8(o)}
		}
	}
	return PitchFromMIDI(midi, k.Fifths < 0)
}

// Transpose moves the signature by an interval, choosing the enharmonic
// spelling with the fewest accidentals when the exact one is out of range.
func (k KeySignature) Transpose(i Interval) KeySignature {
	if i.Identity() {
		return k
	}
	target := i.Apply(k.Tonic())
	best, found := KeySignature{Minor: k.Minor}, false
	for f := -MaxFifths; f <= MaxFifths; f++ {
		c := KeySignature{Fifths: int8(f)}
		t := c.Tonic()
		if t.Step == target.Step && t.Alteration == target.Alteration {
			return KeySignature{Fifths: int8(f), Minor: k.Minor}
		}
		if floorMod(t.MIDI()-target.MIDI(), 12) == 0 {
			if !found || c.Accidentals() < best.Accidentals() {
				best.Fifths = int8(f)
				found = true
			}
		}
	}
	return best
}

func (k KeySignature) String() string {
	mode := "major"
	if k.Minor {
		mode = "minor"
	}
	return fmt.Sprintf("%d fifths %s", k.Fifths, mode)
}
