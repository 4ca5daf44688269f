package model

import (
	"testing"

	"github.com/jsphweid/engraver/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarChordNames(t *testing.T) {
	b := NewBar(theory.CommonTime, theory.KeySignature{})
	b.SetChordName(ChordName{Tick: 1920, Name: "G7"})
	b.SetChordName(ChordName{Tick: 0, Name: "C"})
	b.SetChordName(ChordName{Tick: 1920, Name: "G"})

	assert := assert.New(t)
	assert.Equal([]ChordName{{Tick: 0, Name: "C"}, {Tick: 1920, Name: "G"}}, b.ChordNames())
	c, ok := b.ChordNameAt(1920)
	assert.True(ok)
	assert.Equal("G", c.Name)

	assert.True(b.RemoveChordName(0))
	assert.False(b.RemoveChordName(0))
	_, ok = b.ChordNameAt(0)
	assert.False(ok)
}

func TestBarEndings(t *testing.T) {
	b := NewBar(theory.CommonTime, theory.KeySignature{})
	b.AlternateEndings = 1<<0 | 1<<2

	assert := assert.New(t)
	assert.True(b.HasEnding(0))
	assert.False(b.HasEnding(1))
	assert.True(b.HasEnding(2))
	assert.False(b.HasEnding(-1))
	assert.False(b.HasEnding(8))
}

func TestPhraseDiagrams(t *testing.T) {
	p := NewPhrase()
	p.SetDiagram(ChordDiagram{Tick: 960, Name: "D"})
	p.SetDiagram(ChordDiagram{Tick: 0, Name: "A"})

	assert := assert.New(t)
	require.Len(t, p.Diagrams(), 2)
	assert.Equal("A", p.Diagrams()[0].Name)
	assert.True(p.RemoveDiagram(960))
	assert.False(p.RemoveDiagram(960))
	assert.Len(p.Diagrams(), 1)
}

func TestChordSymbols(t *testing.T) {
	c := NewChord(theory.Quarter)
	c.AddSymbol(Symbol{Kind: SymbolPedalDown})
	c.AddSymbol(Symbol{Kind: SymbolText, Text: "rit."})

	assert := assert.New(t)
	assert.True(c.RemoveSymbol(0))
	assert.False(c.RemoveSymbol(4))
	assert.Equal([]Symbol{{Kind: SymbolText, Text: "rit."}}, c.Symbols())
}

func TestChordOffsetDiv(t *testing.T) {
	tr := NewTrack("a", TrackStandard)
	newTestSong(t, 1, tr)
	p := tr.Voice(0).Phrase(0)
	fill(t, p, chordOf(t, theory.Quarter, "C4"), chordOf(t, theory.Half, "D4"), chordOf(t, theory.Quarter, "E4"))
	refreshed(t, p)

	assert := assert.New(t)
	assert.Equal(theory.TimeDiv{Num: 0, Den: 1}, p.Chord(0).OffsetDiv())
	assert.Equal(theory.TimeDiv{Num: 1, Den: 4}, p.Chord(1).OffsetDiv())
	assert.Equal(theory.TimeDiv{Num: 3, Den: 4}, p.Chord(2).OffsetDiv())
}

func TestGraceNotes(t *testing.T) {
	tr := NewTrack("a", TrackStandard)
	newTestSong(t, 1, tr)
	p := tr.Voice(0).Phrase(0)
	fill(t, p, chordOf(t, theory.Whole, "C4"))
	n := p.Chord(0).Note(0)
	n.AddGrace(GraceNote{Pitch: mustPitch(t, "G4"), Value: theory.Eighth})
	refreshed(t, p)

	assert := assert.New(t)
	g, ok := n.GraceRepresentation(Concert, 0)
	require.True(t, ok)
	assert.Equal(6, g.Line)
	_, ok = n.GraceRepresentation(Concert, 1)
	assert.False(ok)

	assert.True(n.RemoveGrace(0))
	assert.False(n.RemoveGrace(0))
	assert.Empty(n.Graces())
	assert.False(p.Chord(0).Valid())
}
