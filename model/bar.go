package model

import (
	"sort"

	"github.com/jsphweid/engraver/theory"
)

type BarFlags uint32

const (
	BarRepeatStart BarFlags = 1 << iota
	BarRepeatEnd
	BarDoubleBar
	BarFreeTime
	BarSystemBreak
	BarPageBreak
	BarCoda
	BarDoubleCoda
	BarSegno
	BarSegnoSegno
	BarDaCapo
	BarDaCapoAlCoda
	BarDaCapoAlDoubleCoda
	BarDaCapoAlFine
	BarDalSegno
	BarDalSegnoAlCoda
	BarDalSegnoAlDoubleCoda
	BarDalSegnoAlFine
	BarToCoda
	BarToDoubleCoda
	BarFine
)

// Targets are drawn above the staves, jumps below.
const (
	BarTargets = BarCoda | BarDoubleCoda | BarSegno | BarSegnoSegno
	BarJumps   = BarDaCapo | BarDaCapoAlCoda | BarDaCapoAlDoubleCoda | BarDaCapoAlFine |
		BarDalSegno | BarDalSegnoAlCoda | BarDalSegnoAlDoubleCoda | BarDalSegnoAlFine
)

func (f BarFlags) Has(x BarFlags) bool { return f&x != 0 }

type Bar struct {
	index int
	song  *Song

	TimeSignature theory.TimeSignature
	Key           theory.KeySignature
	Beaming       theory.BeamingPattern
	Flags         BarFlags

	// RepeatCount is the number of plays for a bar closing a repeat.
	RepeatCount uint8
	// AlternateEndings is a bit set, bit 0 being the first ending.
	AlternateEndings uint8
	Rehearsal        string

	chordNames []ChordName
}

func NewBar(ts theory.TimeSignature, key theory.KeySignature) *Bar {
	return &Bar{index: -1, TimeSignature: ts.Normalize(), Key: key}
}

func (b *Bar) Index() int {
	if b == nil {
		return -1
	}
	return b.index
}

func (b *Bar) Song() *Song {
	if b == nil {
		return nil
	}
	return b.song
}

// Ticks is the nominal length from the time signature.
func (b *Bar) Ticks() int {
	return b.TimeSignature.BarTicks()
}

// Windows are the beam windows for this bar, using the meter's default
// grouping when no pattern is set.
func (b *Bar) Windows() []int {
	p := b.Beaming
	if p.Empty() {
		p = theory.DefaultBeaming(b.TimeSignature)
	}
	return p.Windows(b.Ticks())
}

func (b *Bar) Previous() *Bar {
	return b.song.Bar(b.index - 1)
}

func (b *Bar) Next() *Bar {
	return b.song.Bar(b.index + 1)
}

// TimeSignatureChanged reports whether the meter differs from the
// previous bar; the first bar always shows it.
func (b *Bar) TimeSignatureChanged() bool {
	prev := b.Previous()
	return prev == nil || !prev.TimeSignature.DisplayEqual(b.TimeSignature)
}

func (b *Bar) KeyChanged() bool {
	prev := b.Previous()
	return prev == nil || prev.Key != b.Key
}

func (b *Bar) HasEnding(n int) bool {
	return n >= 0 && n < 8 && b.AlternateEndings&(1<<uint(n)) != 0
}

func (b *Bar) ChordNames() []ChordName {
	return append([]ChordName(nil), b.chordNames...)
}

// SetChordName adds or replaces the name at tick, keeping tick order.
func (b *Bar) SetChordName(c ChordName) {
	i := sort.Search(len(b.chordNames), func(i int) bool { return b.chordNames[i].Tick >= c.Tick })
	if i < len(b.chordNames) && b.chordNames[i].Tick == c.Tick {
		b.chordNames[i] = c
		return
	}
	b.chordNames = append(b.chordNames, ChordName{})
	copy(b.chordNames[i+1:], b.chordNames[i:])
	b.chordNames[i] = c
}

func (b *Bar) RemoveChordName(tick int) bool {
	for i, c := range b.chordNames {
		if c.Tick == tick {
			b.chordNames = append(b.chordNames[:i], b.chordNames[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Bar) ChordNameAt(tick int) (ChordName, bool) {
	for _, c := range b.chordNames {
		if c.Tick == tick {
			return c, true
		}
	}
	return ChordName{}, false
}
