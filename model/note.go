package model

import (
	"github.com/jsphweid/engraver/notation"
	"github.com/jsphweid/engraver/theory"
)

type NoteFlags uint32

const (
	NoteDead NoteFlags = 1 << iota
	NoteTieOrigin
	NoteTieDestination
	NoteGhost
	NoteAccent
	NoteHeavyAccent
	NoteStaccato
	NoteLetRing
	NotePalmMute
	NoteHarmonic
	NoteVibrato
	NoteHammer
	NoteStickLeft
	NoteStickRight
)

func (f NoteFlags) Has(x NoteFlags) bool { return f&x != 0 }

type Slide uint8

const (
	SlideNone Slide = iota
	SlideShift
	SlideLegato
	SlideInBelow
	SlideInAbove
	SlideOutDown
	SlideOutUp
)

type BendKind uint8

const (
	BendNone BendKind = iota
	BendBend
	BendRelease
	BendBendRelease
	BendPrebend
	BendPrebendRelease
)

// BendPoint positions are 0..60 across the note, values in quarter tones.
type BendPoint struct {
	Position uint8
	Value    int8
}

type Bend struct {
	Kind   BendKind
	Points []BendPoint
}

type GraceFlags uint8

const (
	GraceOnBeat GraceFlags = 1 << iota
	GraceDead
	GraceSlash
)

func (f GraceFlags) Has(x GraceFlags) bool { return f&x != 0 }

// GraceNote precedes its note; fretted tracks use String/Fret and derive
// the pitch on refresh.
type GraceNote struct {
	Pitch  theory.Pitch
	String uint8
	Fret   uint8
	Value  theory.NoteValue
	Flags  GraceFlags
}

// Written states of a note.
const (
	Concert    = 0
	Transposed = 1
)

type noteCache struct {
	valid  bool
	repr   [2]notation.Repr
	graces [2][]notation.Repr
}

type Note struct {
	index int
	chord *Chord

	Pitch    theory.Pitch
	String   uint8
	Fret     uint8
	Velocity uint8
	Flags    NoteFlags
	SlideIn  Slide
	SlideOut Slide
	Bend     Bend

	graces []GraceNote
	cache  noteCache
}

const DefaultVelocity = 95

func NewNote(p theory.Pitch) *Note {
	return &Note{index: -1, Pitch: p, Velocity: DefaultVelocity}
}

// NewFretNote is a tablature note; its pitch comes from the tuning.
func NewFretNote(str, fret uint8) *Note {
	return &Note{index: -1, String: str, Fret: fret, Velocity: DefaultVelocity}
}

func (n *Note) Index() int {
	if n == nil {
		return -1
	}
	return n.index
}

func (n *Note) Chord() *Chord {
	if n == nil {
		return nil
	}
	return n.chord
}

func (n *Note) MIDI() int    { return n.Pitch.MIDI() }
func (n *Note) IsDead() bool { return n.Flags.Has(NoteDead) }
func (n *Note) Valid() bool  { return n.cache.valid }

// Representation is the cached staff record for the concert or
// transposed state.
func (n *Note) Representation(state int) notation.Repr {
	return n.cache.repr[state&1]
}

func (n *Note) GraceRepresentation(state, i int) (notation.Repr, bool) {
	g := n.cache.graces[state&1]
	if i < 0 || i >= len(g) {
		return notation.Repr{}, false
	}
	return g[i], true
}

func (n *Note) Graces() []GraceNote {
	return append([]GraceNote(nil), n.graces...)
}

func (n *Note) AddGrace(g GraceNote) {
	n.graces = append(n.graces, g)
	n.invalidate()
}

func (n *Note) RemoveGrace(i int) bool {
	if i < 0 || i >= len(n.graces) {
		return false
	}
	n.graces = append(n.graces[:i], n.graces[i+1:]...)
	n.invalidate()
	return true
}

func (n *Note) invalidate() {
	n.cache.valid = false
	if n.chord != nil {
		n.chord.invalidate()
	}
}
