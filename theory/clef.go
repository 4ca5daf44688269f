package theory

import "strings"

// Clef is a staff clef. The zero value is treble so that documents
// without an explicit clef render in treble.
type Clef uint8

const (
	ClefTreble Clef = iota
	ClefBass
	ClefAlto
	ClefTenor
	ClefNeutral
)

var clefNames = []string{"treble", "bass", "alto", "tenor", "neutral"}

// anchor is the absolute diatonic step of staff line 0 (the top line).
var clefAnchors = []int{
	7*5 + StepF, // F5
	7*3 + StepA, // A3
	7*4 + StepG, // G4
	7*4 + StepE, // E4
	7*5 + StepF,
}

func (c Clef) Valid() bool {
	return int(c) < len(clefNames)
}

// AnchorStep falls back to the treble anchor for unknown clefs.
func (c Clef) AnchorStep() int {
	if !c.Valid() {
		return clefAnchors[ClefTreble]
	}
	return clefAnchors[c]
}

// Line maps a pitch to a staff line: 0 is the top line, each diatonic
// step below adds one, so the five lines sit at 0, 2, 4, 6 and 8.
func (c Clef) Line(p Pitch) int {
	return c.AnchorStep() - p.AbsStep()
}

// StepAtLine is the inverse of Line for the diatonic step only.
func (c Clef) StepAtLine(line int) int {
	return floorMod(c.AnchorStep()-line, 7)
}

func (c Clef) String() string {
	if !c.Valid() {
		return clefNames[ClefTreble]
	}
	return clefNames[c]
}

func ParseClef(s string) Clef {
	for i, n := range clefNames {
		if strings.EqualFold(n, s) {
			return Clef(i)
		}
	}
	return ClefTreble
}
