package model

import (
	"github.com/jsphweid/engraver/errs"
	"github.com/jsphweid/engraver/theory"
)

type ChordFlags uint32

const (
	ChordRest ChordFlags = 1 << iota
	// ChordBreakBeam starts a new beam group at this chord.
	ChordBreakBeam
	ChordAccent
	ChordHeavyAccent
	ChordStaccato
	ChordTenuto
	ChordFermata
	ChordPalmMute
	ChordLetRing
	ChordTap
	ChordSlap
	ChordPop
	ChordTremolo
	ChordFadeIn
)

func (f ChordFlags) Has(x ChordFlags) bool { return f&x != 0 }

type Stroke uint8

const (
	StrokeNone Stroke = iota
	StrokeArpeggioUp
	StrokeArpeggioDown
	StrokeBrushUp
	StrokeBrushDown
	StrokePickUp
	StrokePickDown
)

type Dynamic uint8

const (
	DynamicNone Dynamic = iota
	DynamicPPP
	DynamicPP
	DynamicP
	DynamicMP
	DynamicMF
	DynamicF
	DynamicFF
	DynamicFFF
	DynamicSFZ
)

var dynamicNames = []string{"", "ppp", "pp", "p", "mp", "mf", "f", "ff", "fff", "sfz"}

func (d Dynamic) String() string {
	if int(d) < len(dynamicNames) {
		return dynamicNames[d]
	}
	return ""
}

func ParseDynamic(s string) Dynamic {
	for i, n := range dynamicNames {
		if n == s {
			return Dynamic(i)
		}
	}
	return DynamicNone
}

// BeamRole is derived by Refresh.
type BeamRole uint8

const (
	BeamNone BeamRole = iota
	BeamStart
	BeamGroup
	BeamEnd
)

// TupletRole is derived by Refresh; a single-chord group is both start
// and end.
type TupletRole uint8

const (
	TupletStart TupletRole = 1 << iota
	TupletGrouping
	TupletEnd
)

func (r TupletRole) Has(x TupletRole) bool { return r&x != 0 }

type chordCache struct {
	valid    bool
	offset   int
	duration int
	beam     BeamRole
	tuplet   TupletRole
}

type Chord struct {
	index  int
	phrase *Phrase

	Value   theory.NoteValue
	Dots    uint8
	Tuplet  theory.Tuplet
	Flags   ChordFlags
	Stroke  Stroke
	Stem    theory.StemDirection
	Text    string
	Dynamic Dynamic

	notes   []*Note
	symbols []Symbol

	cache chordCache
}

func NewChord(v theory.NoteValue) *Chord {
	return &Chord{index: -1, Value: v}
}

// NewRest is a chord flagged as a rest.
func NewRest(v theory.NoteValue) *Chord {
	c := NewChord(v)
	c.Flags |= ChordRest
	return c
}

func (c *Chord) Index() int {
	if c == nil {
		return -1
	}
	return c.index
}

func (c *Chord) Phrase() *Phrase {
	if c == nil {
		return nil
	}
	return c.phrase
}

// IsRest is true for a flagged rest or a chord without notes.
func (c *Chord) IsRest() bool {
	return c.Flags.Has(ChordRest) || len(c.notes) == 0
}

// Beamable chords are sounding and shorter than a quarter.
func (c *Chord) Beamable() bool {
	return !c.IsRest() && c.Value.ShorterThanQuarter()
}

// NominalDuration is computed from value, dots and tuplet without the
// cache. Inside a tuplet run the refreshed Duration may differ by a tick.
func (c *Chord) NominalDuration() int {
	return theory.DurationTicks(c.Value, int(c.Dots), c.Tuplet)
}

func (c *Chord) Offset() int               { return c.cache.offset }
func (c *Chord) OffsetDiv() theory.TimeDiv { return theory.TimeDivFromTicks(c.cache.offset) }
func (c *Chord) Duration() int             { return c.cache.duration }
func (c *Chord) End() int                  { return c.cache.offset + c.cache.duration }
func (c *Chord) BeamRole() BeamRole        { return c.cache.beam }
func (c *Chord) TupletRole() TupletRole    { return c.cache.tuplet }
func (c *Chord) Valid() bool               { return c.cache.valid }
func (c *Chord) Symbols() []Symbol         { return append([]Symbol(nil), c.symbols...) }
func (c *Chord) AddSymbol(s Symbol)        { c.symbols = append(c.symbols, s) }
func (c *Chord) Notes() []*Note            { return append([]*Note(nil), c.notes...) }

func (c *Chord) NoteCount() int {
	if c == nil {
		return 0
	}
	return len(c.notes)
}

func (c *Chord) Note(i int) *Note {
	if c == nil || i < 0 || i >= len(c.notes) {
		return nil
	}
	return c.notes[i]
}

func (c *Chord) RemoveSymbol(i int) bool {
	if i < 0 || i >= len(c.symbols) {
		return false
	}
	c.symbols = append(c.symbols[:i], c.symbols[i+1:]...)
	return true
}

func (c *Chord) InsertNote(n *Note, idx int) error {
	if n == nil {
		return errs.Precondition("cannot insert a nil note")
	}
	if n.chord != nil {
		return errs.Precondition("note already belongs to a chord")
	}
	if idx < 0 || idx > len(c.notes) {
		return errs.Precondition("note index %d out of range [0, %d]", idx, len(c.notes))
	}
	c.notes = append(c.notes, nil)
	copy(c.notes[idx+1:], c.notes[idx:])
	c.notes[idx] = n
	n.chord = c
	c.reindex()
	c.invalidate()
	return nil
}

func (c *Chord) AppendNote(n *Note) error {
	return c.InsertNote(n, len(c.notes))
}

func (c *Chord) RemoveNote(idx int) error {
	if idx < 0 || idx >= len(c.notes) {
		return errs.Precondition("note index %d out of range [0, %d)", idx, len(c.notes))
	}
	c.notes[idx].chord = nil
	c.notes[idx].index = -1
	c.notes = append(c.notes[:idx], c.notes[idx+1:]...)
	c.reindex()
	c.invalidate()
	return nil
}

func (c *Chord) reindex() {
	for i, n := range c.notes {
		n.index = i
	}
}

func (c *Chord) invalidate() {
	c.cache.valid = false
	if c.phrase != nil {
		c.phrase.Invalidate()
	}
}

// NoteOnString finds the note played on a tablature string.
func (c *Chord) NoteOnString(str uint8) *Note {
	for _, n := range c.notes {
		if n.String == str {
			return n
		}
	}
	return nil
}

// Previous is the chord before this one in the voice, crossing into the
// previous bar when needed.
func (c *Chord) Previous() *Chord {
	if c.index > 0 {
		return c.phrase.Chord(c.index - 1)
	}
	return c.phrase.Previous().LastChord()
}
