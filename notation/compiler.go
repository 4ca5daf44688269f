// Package notation turns pitches into staff placement: line, accidental,
// accidental column and stem-side offsets for stacked seconds.
package notation

import (
	"sort"

	"github.com/jsphweid/engraver/midi"
	"github.com/jsphweid/engraver/theory"
)

const (
	// TableSize spans lines -127..127 around the top staff line.
	TableSize  = 255
	tableBias  = 127
	MaxColumns = 6
	// ColumnGap is the minimum line distance between two accidentals
	// sharing a column.
	ColumnGap = 6
)

// Context is what a phrase knows before compiling its chords.
type Context struct {
	Clef      theory.Clef
	Key       theory.KeySignature
	Transpose theory.Interval
}

// Input is one note as seen by the compiler.
type Input struct {
	Pitch theory.Pitch
	Grace bool
	Dead  bool
}

// Repr is the computed standard-notation record of a note.
type Repr struct {
	Pitch            theory.Pitch // written pitch after transposition and ottavia
	Line             int
	Accidental       theory.Accidental
	AccidentalColumn int
	Head             theory.NoteHead
	SecondUp         bool
	SecondDown       bool
}

// Compiler holds the per-bar accidental state. Call Reset at the start of
// every phrase.
type Compiler struct {
	ctx   Context
	table [TableSize]int8
}

func NewCompiler(ctx Context) *Compiler {
	c := &Compiler{}
	c.Reset(ctx)
	return c
}

// Reset restores every line to the alteration implied by the key.
func (c *Compiler) Reset(ctx Context) {
	if !ctx.Clef.Valid() {
		ctx.Clef = theory.ClefTreble
	}
	if !ctx.Key.Valid() {
		ctx.Key = theory.KeySignature{}
	}
	c.ctx = ctx
	for i := range c.table {
		c.table[i] = ctx.Key.Alteration(ctx.Clef.StepAtLine(i - tableBias))
	}
}

func (c *Compiler) Context() Context { return c.ctx }

// Implied is the alteration a note at line would currently carry without
// an accidental.
func (c *Compiler) Implied(line int) int8 {
	return c.table[slot(line)]
}

func slot(line int) int {
	i := line + tableBias
	if i < 0 {
		return 0
	}
	if i >= TableSize {
		return TableSize - 1
	}
	return i
}

// Written applies transposition and octave displacement to a concert pitch.
func (c *Compiler) Written(p theory.Pitch, o theory.Ottavia) theory.Pitch {
	w := c.ctx.Transpose.Apply(p)
	w.Octave += int8(o.OctaveShift())
	return w
}

// Compile computes one chord. Grace notes are compiled first since they
// sound first, and update the accidental state like any other note; they
// do not take part in columns or stacked seconds. Dead notes get a line
// only.
func (c *Compiler) Compile(notes []Input, o theory.Ottavia) []Repr {
	out := make([]Repr, len(notes))
	order := make([]int, 0, len(notes))
	for i, n := range notes {
		if n.Grace {
			order = append(order, i)
		}
	}
	for i, n := range notes {
		if !n.Grace {
			order = append(order, i)
		}
	}
	for _, i := range order {
		out[i] = c.note(notes[i], o)
	}
	assignColumns(notes, out)
	resolveSeconds(notes, out)
	return out
}

func (c *Compiler) note(n Input, o theory.Ottavia) Repr {
	w := c.Written(n.Pitch, o)
	r := Repr{Pitch: w, Line: c.ctx.Clef.Line(w), Head: theory.HeadNormal}
	if n.Dead {
		r.Head = theory.HeadDead
		return r
	}
	s := slot(r.Line)
	if w.Alteration != c.table[s] {
		r.Accidental = theory.AccidentalFor(w.Alteration)
		c.table[s] = w.Alteration
	}
	return r
}

// Drum maps a percussion key to its fixed line and head.
func Drum(key uint8) Repr {
	d, _ := midi.LookupDrum(key)
	return Repr{Line: d.Line, Head: d.Head, Pitch: theory.PitchFromMIDI(int(key), false)}
}

// CompileDrums is Compile for percussion tracks: no accidentals, but
// stacked seconds still apply.
func CompileDrums(keys []uint8, grace []bool) []Repr {
	out := make([]Repr, len(keys))
	in := make([]Input, len(keys))
	for i, k := range keys {
		out[i] = Drum(k)
		if i < len(grace) {
			in[i].Grace = grace[i]
		}
	}
	resolveSeconds(in, out)
	return out
}

// assignColumns places accidentals top-down into the first column that
// has no other accidental within ColumnGap lines.
func assignColumns(notes []Input, out []Repr) {
	var idx []int
	for i := range out {
		if notes[i].Grace || out[i].Accidental == theory.AccidentalNone {
			continue
		}
		idx = append(idx, i)
	}
	sort.SliceStable(idx, func(a, b int) bool { return out[idx[a]].Line < out[idx[b]].Line })
	var columns [MaxColumns][]int
	for _, i := range idx {
		col := MaxColumns - 1
		for c := 0; c < MaxColumns; c++ {
			if fits(columns[c], out[i].Line) {
				col = c
				break
			}
		}
		columns[col] = append(columns[col], out[i].Line)
		out[i].AccidentalColumn = col
	}
}

func fits(lines []int, line int) bool {
	for _, l := range lines {
		d := l - line
		if d < 0 {
			d = -d
		}
		if d < ColumnGap {
			return false
		}
	}
	return true
}

// resolveSeconds flags notes that must sit on the far side of the stem.
// With the stem up the lowest note of a run of seconds stays put; with
// the stem down the highest does.
func resolveSeconds(notes []Input, out []Repr) {
	seen := map[int]bool{}
	var lines []int
	for i := range out {
		if notes[i].Grace || notes[i].Dead {
			continue
		}
		if !seen[out[i].Line] {
			seen[out[i].Line] = true
			lines = append(lines, out[i].Line)
		}
	}
	if len(lines) < 2 {
		return
	}
	sort.Ints(lines)

	down := map[int]bool{}
	for i := 1; i < len(lines); i++ {
		if lines[i]-lines[i-1] == 1 && !down[lines[i-1]] {
			down[lines[i]] = true
		}
	}
	up := map[int]bool{}
	for i := len(lines) - 2; i >= 0; i-- {
		if lines[i+1]-lines[i] == 1 && !up[lines[i+1]] {
			up[lines[i]] = true
		}
	}
	for i := range out {
		if notes[i].Grace || notes[i].Dead {
			continue
		}
		out[i].SecondUp = up[out[i].Line]
		out[i].SecondDown = down[out[i].Line]
	}
}
