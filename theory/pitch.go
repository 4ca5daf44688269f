package theory

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Diatonic steps, C first.
const (
	StepC = iota
	StepD
	StepE
	StepF
	StepG
	StepA
	StepB
)

var stepSemitones = [7]int{0, 2, 4, 5, 7, 9, 11}
var stepNames = "CDEFGAB"

// Pitch is a spelled pitch. Octave follows scientific pitch notation, so
// middle C is {StepC, 0, 4} and MIDI 60.
type Pitch struct {
	Step       int8
	Alteration int8
	Octave     int8
}

// AbsStep is the diatonic step counted from C of octave 0.
func (p Pitch) AbsStep() int {
	return 7*int(p.Octave) + int(p.Step)
}

func (p Pitch) MIDI() int {
	return (int(p.Octave)+1)*12 + stepSemitones[p.Step%7] + int(p.Alteration)
}

func (p Pitch) Valid() bool {
	return p.Step >= 0 && p.Step < 7 && p.Alteration >= -2 && p.Alteration <= 2
}

func (p Pitch) String() string {
	n := string(stepNames[p.Step%7])
	switch p.Alteration {
	case 2:
		n += "x"
	case 1:
		n += "#"
	case -1:
		n += "b"
	case -2:
		n += "bb"
	}
	return fmt.Sprintf("%s%d", n, p.Octave)
}

// PitchFromAbsStep builds the natural pitch at an absolute step and then
// alters it so that it sounds at midi.
func PitchFromAbsStep(absStep, midi int) Pitch {
	p := Pitch{Step: int8(floorMod(absStep, 7)), Octave: int8(floorDiv(absStep, 7))}
	p.Alteration = int8(midi - p.MIDI())
	return p
}

var sharpSpelling = [12]Pitch{
	{StepC, 0, 0}, {StepC, 1, 0}, {StepD, 0, 0}, {StepD, 1, 0}, {StepE, 0, 0}, {StepF, 0, 0},
	{StepF, 1, 0}, {StepG, 0, 0}, {StepG, 1, 0}, {StepA, 0, 0}, {StepA, 1, 0}, {StepB, 0, 0},
}

var flatSpelling = [12]Pitch{
	{StepC, 0, 0}, {StepD, -1, 0}, {StepD, 0, 0}, {StepE, -1, 0}, {StepE, 0, 0}, {StepF, 0, 0},
	{StepG, -1, 0}, {StepG, 0, 0}, {StepA, -1, 0}, {StepA, 0, 0}, {StepB, -1, 0}, {StepB, 0, 0},
}

// PitchFromMIDI spells a MIDI value with sharps, or flats when flats is set.
func PitchFromMIDI(midi int, flats bool) Pitch {
	pc := floorMod(midi, 12)
	oct := floorDiv(midi, 12) - 1
	p := sharpSpelling[pc]
	if flats {
		p = flatSpelling[pc]
	}
	p.Octave = int8(oct)
	return p
}

// Interval is a transposition. The zero value is the identity.
type Interval struct {
	Steps     int8
	Semitones int8
}

func (i Interval) Identity() bool {
	return i.Steps == 0 && i.Semitones == 0
}

func (i Interval) Apply(p Pitch) Pitch {
	if i.Identity() {
		return p
	}
	return PitchFromAbsStep(p.AbsStep()+int(i.Steps), p.MIDI()+int(i.Semitones))
}

func (i Interval) Invert() Interval {
	return Interval{Steps: -i.Steps, Semitones: -i.Semitones}
}

// Common transposing instruments, written relative to concert pitch.
var (
	BFlatInstrument = Interval{Steps: 1, Semitones: 2}
	EFlatInstrument = Interval{Steps: 5, Semitones: 9}
	FInstrument     = Interval{Steps: 4, Semitones: 7}
	OctaveUp        = Interval{Steps: 7, Semitones: 12}
	OctaveDown      = Interval{Steps: -7, Semitones: -12}
)

// ParsePitch reads the String form: a step letter, an optional
// accidental (#, x, b, bb) and an octave, e.g. "F#4" or "Bb-1".
func ParsePitch(s string) (Pitch, error) {
	if s == "" {
		return Pitch{}, fmt.Errorf("empty pitch")
	}
	step := strings.IndexByte(stepNames, byte(unicode.ToUpper(rune(s[0]))))
	if step < 0 {
		return Pitch{}, fmt.Errorf("bad pitch step in %q", s)
	}
	rest := s[1:]
	var alt int8
	switch {
	case strings.HasPrefix(rest, "bb"):
		alt, rest = -2, rest[2:]
	case strings.HasPrefix(rest, "b"):
		alt, rest = -1, rest[1:]
	case strings.HasPrefix(rest, "#"):
		alt, rest = 1, rest[1:]
	case strings.HasPrefix(rest, "x"):
		alt, rest = 2, rest[1:]
	}
	oct, err := strconv.Atoi(rest)
	if err != nil || oct < -1 || oct > 9 {
		return Pitch{}, fmt.Errorf("bad octave in %q", s)
	}
	return Pitch{Step: int8(step), Alteration: alt, Octave: int8(oct)}, nil
}
