package model

import (
	"sort"

	"github.com/jsphweid/engraver/errs"
	"github.com/jsphweid/engraver/theory"
)

type phraseCache struct {
	valid    bool
	duration int
}

// Phrase is one voice's content in one bar. Duration is derived by Refresh.
type Phrase struct {
	index int
	voice *Voice

	chords   []*Chord
	diagrams []ChordDiagram
	ottavia  []OttaviaChange

	cache phraseCache
}

func NewPhrase() *Phrase {
	return &Phrase{index: -1}
}

func (p *Phrase) Index() int {
	if p == nil {
		return -1
	}
	return p.index
}

func (p *Phrase) Voice() *Voice {
	if p == nil {
		return nil
	}
	return p.voice
}

func (p *Phrase) Track() *Track {
	return p.Voice().Track()
}

// Bar is the song bar at the phrase's position.
func (p *Phrase) Bar() *Bar {
	return p.Track().Song().Bar(p.Index())
}

// Previous is the phrase of the same voice in the previous bar.
func (p *Phrase) Previous() *Phrase {
	return p.Voice().Phrase(p.Index() - 1)
}

func (p *Phrase) Next() *Phrase {
	return p.Voice().Phrase(p.Index() + 1)
}

// Duration is the sum of chord durations as of the last refresh.
func (p *Phrase) Duration() int { return p.cache.duration }

// Valid reports whether cached fields reflect the current content.
func (p *Phrase) Valid() bool { return p.cache.valid }

func (p *Phrase) Invalidate() { p.cache.valid = false }

func (p *Phrase) ChordCount() int {
	if p == nil {
		return 0
	}
	return len(p.chords)
}

func (p *Phrase) Chord(i int) *Chord {
	if p == nil || i < 0 || i >= len(p.chords) {
		return nil
	}
	return p.chords[i]
}

func (p *Phrase) Chords() []*Chord {
	return append([]*Chord(nil), p.chords...)
}

func (p *Phrase) LastChord() *Chord {
	return p.Chord(p.ChordCount() - 1)
}

func (p *Phrase) InsertChord(c *Chord, idx int) error {
	if c == nil {
		return errs.Precondition("cannot insert a nil chord")
	}
	if c.phrase != nil {
		return errs.Precondition("chord already belongs to a phrase")
	}
	if idx < 0 || idx > len(p.chords) {
		return errs.Precondition("chord index %d out of range [0, %d]", idx, len(p.chords))
	}
	p.chords = append(p.chords, nil)
	copy(p.chords[idx+1:], p.chords[idx:])
	p.chords[idx] = c
	c.phrase = p
	p.reindex()
	p.Invalidate()
	return nil
}

func (p *Phrase) AppendChord(c *Chord) error {
	return p.InsertChord(c, len(p.chords))
}

func (p *Phrase) RemoveChord(idx int) error {
	if idx < 0 || idx >= len(p.chords) {
		return errs.Precondition("chord index %d out of range [0, %d)", idx, len(p.chords))
	}
	p.chords[idx].phrase = nil
	p.chords[idx].index = -1
	p.chords = append(p.chords[:idx], p.chords[idx+1:]...)
	p.reindex()
	p.Invalidate()
	return nil
}

// Clear removes every chord.
func (p *Phrase) Clear() {
	for _, c := range p.chords {
		c.phrase = nil
		c.index = -1
	}
	p.chords = nil
	p.Invalidate()
}

func (p *Phrase) reindex() {
	for i, c := range p.chords {
		c.index = i
	}
}

// IsEmpty reports a phrase without chords.
func (p *Phrase) IsEmpty() bool {
	return len(p.chords) == 0
}

// IsRest reports a phrase holding nothing but rests.
func (p *Phrase) IsRest() bool {
	for _, c := range p.chords {
		if !c.IsRest() {
			return false
		}
	}
	return true
}

// ChordAt finds the chord sounding at tick using cached offsets.
func (p *Phrase) ChordAt(tick int) *Chord {
	for _, c := range p.chords {
		if tick >= c.cache.offset && tick < c.cache.offset+c.cache.duration {
			return c
		}
	}
	return nil
}

// Surrounding returns the chords starting at or before tick and the
// first chord after it; either may be nil.
func (p *Phrase) Surrounding(tick int) (left, right *Chord) {
	for _, c := range p.chords {
		if c.cache.offset <= tick {
			left = c
			continue
		}
		right = c
		break
	}
	return left, right
}

func (p *Phrase) Diagrams() []ChordDiagram {
	return append([]ChordDiagram(nil), p.diagrams...)
}

// SetDiagram adds or replaces the diagram at its tick.
func (p *Phrase) SetDiagram(d ChordDiagram) {
	i := sort.Search(len(p.diagrams), func(i int) bool { return p.diagrams[i].Tick >= d.Tick })
	if i < len(p.diagrams) && p.diagrams[i].Tick == d.Tick {
		p.diagrams[i] = d
		return
	}
	p.diagrams = append(p.diagrams, ChordDiagram{})
	copy(p.diagrams[i+1:], p.diagrams[i:])
	p.diagrams[i] = d
}

func (p *Phrase) RemoveDiagram(tick int) bool {
	for i, d := range p.diagrams {
		if d.Tick == tick {
			p.diagrams = append(p.diagrams[:i], p.diagrams[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Phrase) OttaviaChanges() []OttaviaChange {
	return append([]OttaviaChange(nil), p.ottavia...)
}

// SetOttavia starts a displacement at tick; OttaviaNone ends one.
func (p *Phrase) SetOttavia(tick int, o theory.Ottavia) {
	i := sort.Search(len(p.ottavia), func(i int) bool { return p.ottavia[i].Tick >= tick })
	if i < len(p.ottavia) && p.ottavia[i].Tick == tick {
		p.ottavia[i].Ottavia = o
	} else {
		p.ottavia = append(p.ottavia, OttaviaChange{})
		copy(p.ottavia[i+1:], p.ottavia[i:])
		p.ottavia[i] = OttaviaChange{Tick: tick, Ottavia: o}
	}
	p.Invalidate()
}

// OttaviaAt is the displacement in force at tick. A phrase without its
// own changes continues the last displacement of the previous phrase.
func (p *Phrase) OttaviaAt(tick int) theory.Ottavia {
	o, found := theory.OttaviaNone, false
	for _, ch := range p.ottavia {
		if ch.Tick > tick {
			break
		}
		o, found = ch.Ottavia, true
	}
	if found {
		return o
	}
	for prev := p.Previous(); prev != nil; prev = prev.Previous() {
		if n := len(prev.ottavia); n > 0 {
			return prev.ottavia[n-1].Ottavia
		}
	}
	return theory.OttaviaNone
}
