package model

import (
	"sort"

	"github.com/jsphweid/engraver/errs"
	"github.com/jsphweid/engraver/theory"
)

// ChordName is a harmony symbol above the staves at a tick of a bar.
type ChordName struct {
	Tick int
	Name string
}

// ChordDiagram is a fretboard grid attached to a phrase. Frets lists one
// entry per string; -1 is a muted string.
type ChordDiagram struct {
	Tick     int
	Name     string
	BaseFret uint8
	Frets    []int8
}

type SymbolKind uint8

const (
	SymbolText SymbolKind = iota
	SymbolPedalDown
	SymbolPedalUp
	SymbolCrescendo
	SymbolDiminuendo
	SymbolTrill
	SymbolBreath
)

// Symbol is a free-floating mark attached to a chord; Line positions it
// relative to the staff.
type Symbol struct {
	Kind SymbolKind
	Text string
	Line int8
}

// Slur connects two chords of one voice, addressed by bar and chord index.
type Slur struct {
	Voice      uint8
	StartBar   int
	StartChord int
	EndBar     int
	EndChord   int
}

// Spans reports whether the slur touches any bar in [first, last].
func (s Slur) Spans(first, last int) bool {
	return s.StartBar <= last && s.EndBar >= first
}

type ClefChange struct {
	Bar  int
	Tick int
	Clef theory.Clef
}

type OttaviaChange struct {
	Tick    int
	Ottavia theory.Ottavia
}

type TempoMarker struct {
	Bar       int
	Tick      int
	BPM       uint16
	BeatValue theory.NoteValue
	Text      string
}

const DefaultBPM = 120

func positionLess(barA, tickA, barB, tickB int) bool {
	if barA != barB {
		return barA < barB
	}
	return tickA < tickB
}

func (s *Song) TempoMarkers() []TempoMarker {
	return append([]TempoMarker(nil), s.tempo...)
}

// InsertTempoMarker keeps markers ordered by position, replacing one at
// the same position.
func (s *Song) InsertTempoMarker(m TempoMarker) error {
	if m.Bar < 0 || m.Bar >= len(s.bars) {
		return errs.Precondition("tempo marker bar %d out of range", m.Bar)
	}
	if m.BPM == 0 {
		return errs.Precondition("tempo marker needs a positive bpm")
	}
	i := sort.Search(len(s.tempo), func(i int) bool {
		return !positionLess(s.tempo[i].Bar, s.tempo[i].Tick, m.Bar, m.Tick)
	})
	if i < len(s.tempo) && s.tempo[i].Bar == m.Bar && s.tempo[i].Tick == m.Tick {
		s.tempo[i] = m
		return nil
	}
	s.tempo = append(s.tempo, TempoMarker{})
	copy(s.tempo[i+1:], s.tempo[i:])
	s.tempo[i] = m
	return nil
}

func (s *Song) RemoveTempoMarker(bar, tick int) bool {
	for i, m := range s.tempo {
		if m.Bar == bar && m.Tick == tick {
			s.tempo = append(s.tempo[:i], s.tempo[i+1:]...)
			return true
		}
	}
	return false
}

// TempoAt is the marker in effect at a position; before the first marker
// the default tempo applies.
func (s *Song) TempoAt(bar, tick int) TempoMarker {
	cur := TempoMarker{BPM: DefaultBPM, BeatValue: theory.Quarter}
	for _, m := range s.tempo {
		if positionLess(bar, tick, m.Bar, m.Tick) {
			break
		}
		cur = m
	}
	return cur
}

// TempoMarkersIn lists markers placed on bar i.
func (s *Song) TempoMarkersIn(i int) []TempoMarker {
	var out []TempoMarker
	for _, m := range s.tempo {
		if m.Bar == i {
			out = append(out, m)
		}
	}
	return out
}

func (s *Song) shiftTempo(from, by int) {
	for i := range s.tempo {
		if s.tempo[i].Bar >= from {
			s.tempo[i].Bar += by
		}
	}
}

func (s *Song) dropTempo(bar int) {
	kept := s.tempo[:0]
	for _, m := range s.tempo {
		if m.Bar == bar {
			continue
		}
		if m.Bar > bar {
			m.Bar--
		}
		kept = append(kept, m)
	}
	s.tempo = kept
}
