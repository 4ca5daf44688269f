package model

import (
	"fmt"
	"testing"

	"github.com/jsphweid/engraver/errs"
	"github.com/jsphweid/engraver/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refreshed(t *testing.T, p *Phrase) RefreshResult {
	res, err := p.Refresh(RefreshOptions{FixTies: true})
	require.NoError(t, err)
	return res
}

func beamRoles(p *Phrase) []BeamRole {
	var out []BeamRole
	for _, c := range p.Chords() {
		out = append(out, c.BeamRole())
	}
	return out
}

func eighths(t *testing.T, n int) []*Chord {
	out := make([]*Chord, n)
	for i := range out {
		out[i] = chordOf(t, theory.Eighth, "G4")
	}
	return out
}

func TestRefreshOffsetsAndDuration(t *testing.T) {
	s := newTestSong(t, 1, NewTrack("a", TrackStandard))
	p := s.Track(0).Voice(0).Phrase(0)
	dotted := chordOf(t, theory.Quarter, "E4")
	dotted.Dots = 1
	fill(t, p, chordOf(t, theory.Quarter, "C4"), chordOf(t, theory.Eighth, "D4"), dotted, chordOf(t, theory.Quarter))
	refreshed(t, p)

	assert := assert.New(t)
	sum := 0
	for i, c := range p.Chords() {
		assert.Equal(sum, c.Offset(), fmt.Sprintf("chord %d", i))
		assert.Equal(c.NominalDuration(), c.Duration())
		sum += c.Duration()
		assert.True(c.Valid())
	}
	assert.Equal(sum, p.Duration())
	assert.Equal(960+480+1440+960, p.Duration())
	assert.True(p.Valid())
}

type snapshot struct {
	Offset   int
	Duration int
	Beam     BeamRole
	Tuplet   TupletRole
	Lines    []int
}

func snap(p *Phrase) []snapshot {
	var out []snapshot
	for _, c := range p.Chords() {
		sn := snapshot{c.Offset(), c.Duration(), c.BeamRole(), c.TupletRole(), nil}
		for _, n := range c.Notes() {
			sn.Lines = append(sn.Lines, n.Representation(Concert).Line)
		}
		out = append(out, sn)
	}
	return out
}

func TestRefreshIsIdempotent(t *testing.T) {
	s := newTestSong(t, 1, NewTrack("a", TrackStandard))
	p := s.Track(0).Voice(0).Phrase(0)
	fill(t, p, eighths(t, 3)...)
	tri := chordOf(t, theory.Quarter, "C5", "E5")
	tri.Tuplet = theory.Triplet
	fill(t, p, tri, chordOf(t, theory.Eighth, "A4"))
	refreshed(t, p)
	first := snap(p)
	refreshed(t, p)
	assert.Equal(t, first, snap(p))
}

func TestDetachedPhraseRefresh(t *testing.T) {
	_, err := NewPhrase().Refresh(RefreshOptions{})
	assert.True(t, errs.IsPrecondition(err))
}

func TestBeaming(t *testing.T) {
	var (
		N = BeamNone
		S = BeamStart
		G = BeamGroup
		E = BeamEnd
	)
	dead := chordOf(t, theory.Eighth)
	dead.Flags &^= ChordRest
	deadNote := NewNote(mustPitch(t, "E4"))
	deadNote.Flags |= NoteDead
	require.NoError(t, dead.AppendNote(deadNote))

	broken := eighths(t, 4)
	broken[2].Flags |= ChordBreakBeam

	tests := []struct {
		name    string
		pattern theory.BeamingPattern
		chords  []*Chord
		want    []BeamRole
	}{
		{"quarter windows", theory.BeamingPattern{}, eighths(t, 8), []BeamRole{S, E, S, E, S, E, S, E}},
		{"half windows", theory.BeamingPattern{4, 4}, eighths(t, 8), []BeamRole{S, G, G, E, S, G, G, E}},
		{"quarter splits", theory.BeamingPattern{8}, []*Chord{
			chordOf(t, theory.Eighth, "C4"), chordOf(t, theory.Eighth, "C4"), chordOf(t, theory.Quarter, "C4"),
			chordOf(t, theory.Eighth, "C4"), chordOf(t, theory.Eighth, "C4"),
		}, []BeamRole{S, E, N, S, E}},
		{"rests trimmed", theory.BeamingPattern{4}, []*Chord{
			chordOf(t, theory.Eighth), chordOf(t, theory.Eighth, "C4"), chordOf(t, theory.Eighth, "D4"),
			chordOf(t, theory.Eighth, "E4"),
		}, []BeamRole{N, S, G, E}},
		{"interior rest", theory.BeamingPattern{4}, []*Chord{
			chordOf(t, theory.Eighth, "C4"), chordOf(t, theory.Eighth), chordOf(t, theory.Eighth, "D4"),
			chordOf(t, theory.Eighth, "E4"),
		}, []BeamRole{S, N, G, E}},
		{"break flag", theory.BeamingPattern{8}, broken, []BeamRole{S, E, S, E}},
		{"window crossing", theory.BeamingPattern{}, func() []*Chord {
			long := chordOf(t, theory.Eighth, "C4")
			long.Dots = 1
			return []*Chord{chordOf(t, theory.Eighth, "C4"), long, chordOf(t, theory.Sixteenth, "C4")}
		}(), []BeamRole{N, N, N}},
		{"dead notes beam", theory.BeamingPattern{}, []*Chord{dead, chordOf(t, theory.Eighth, "F4")}, []BeamRole{S, E}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := newTestSong(t, 1, NewTrack("a", TrackStandard))
			require.NoError(t, SetBeaming(s, 0, test.pattern))
			p := s.Track(0).Voice(0).Phrase(0)
			fill(t, p, test.chords...)
			refreshed(t, p)
			assert.Equal(t, test.want, beamRoles(p))
			for _, c := range p.Chords() {
				if c.BeamRole() != BeamNone {
					assert.True(t, c.Value.ShorterThanQuarter())
				}
			}
		})
	}
}

func TestTupletGroups(t *testing.T) {
	tuplet := func(r theory.Tuplet) *Chord {
		c := chordOf(t, theory.Eighth, "C5")
		c.Tuplet = r
		return c
	}
	quint := theory.Tuplet{Num: 5, Den: 4}
	tests := []struct {
		name   string
		chords []*Chord
		want   []TupletRole
	}{
		{"complete triplet", []*Chord{tuplet(theory.Triplet), tuplet(theory.Triplet), tuplet(theory.Triplet), chordOf(t, theory.Eighth, "C5")},
			[]TupletRole{TupletStart, TupletGrouping, TupletEnd, 0}},
		{"incomplete", []*Chord{tuplet(theory.Triplet), tuplet(theory.Triplet), chordOf(t, theory.Eighth, "C5")},
			[]TupletRole{0, 0, 0}},
		{"ratio change", []*Chord{tuplet(quint), tuplet(quint), tuplet(theory.Triplet), tuplet(theory.Triplet), tuplet(theory.Triplet)},
			[]TupletRole{0, 0, TupletStart, TupletGrouping, TupletEnd}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := newTestSong(t, 1, NewTrack("a", TrackStandard))
			p := s.Track(0).Voice(0).Phrase(0)
			fill(t, p, test.chords...)
			refreshed(t, p)
			var got []TupletRole
			for _, c := range p.Chords() {
				got = append(got, c.TupletRole())
			}
			assert.Equal(t, test.want, got)
		})
	}
}

func TestTupletRunFillsItsSpan(t *testing.T) {
	tr := NewTrack("a", TrackStandard)
	newTestSong(t, 1, tr)
	sept := theory.Tuplet{Num: 7, Den: 4}
	upper := tr.Voice(0).Phrase(0)
	for i := 0; i < 7; i++ {
		c := chordOf(t, theory.Sixteenth, "C5")
		c.Tuplet = sept
		fill(t, upper, c)
	}
	fill(t, upper, chordOf(t, theory.Quarter, "D5"))
	lower := tr.Voice(1).Phrase(0)
	fill(t, lower, chordOf(t, theory.Quarter, "C4"), chordOf(t, theory.Quarter, "D4"))
	refreshed(t, upper)
	refreshed(t, lower)

	assert := assert.New(t)
	assert.Equal(lower.Chord(1).Offset(), upper.Chord(7).Offset())
	assert.Equal(theory.TicksPerQuarter, upper.Chord(7).Offset())
	assert.Equal(2*theory.TicksPerQuarter, upper.Duration())
	for i := 1; i < 7; i++ {
		c := upper.Chord(i)
		assert.Equal(upper.Chord(i-1).End(), c.Offset())
		assert.InDelta(c.NominalDuration(), c.Duration(), 1)
	}
	assert.Equal(TupletStart, upper.Chord(0).TupletRole())
	assert.Equal(TupletEnd, upper.Chord(6).TupletRole())
}

func TestKeyAccidentalsPerBar(t *testing.T) {
	s := newTestSong(t, 2, NewTrack("a", TrackStandard))
	require.NoError(t, SetKeySignature(s, 0, theory.KeySignature{Fifths: 2}))
	v := s.Track(0).Voice(0)
	fill(t, v.Phrase(0), chordOf(t, theory.Half, "F5"), chordOf(t, theory.Half, "F5"))
	fill(t, v.Phrase(1), chordOf(t, theory.Whole, "F5"))
	_, err := s.Refresh(RefreshOptions{})
	require.NoError(t, err)

	assert := assert.New(t)
	first := v.Phrase(0).Chord(0).Note(0).Representation(Concert)
	assert.Equal(0, first.Line)
	assert.Equal(theory.AccidentalNatural, first.Accidental)
	assert.Equal(theory.AccidentalNone, v.Phrase(0).Chord(1).Note(0).Representation(Concert).Accidental)
	assert.Equal(theory.AccidentalNatural, v.Phrase(1).Chord(0).Note(0).Representation(Concert).Accidental)
}

func TestRepresentationStates(t *testing.T) {
	tr := NewTrack("clarinet", TrackStandard)
	tr.Transpose = theory.BFlatInstrument
	newTestSong(t, 1, tr)
	p := tr.Voice(0).Phrase(0)
	fill(t, p, chordOf(t, theory.Whole, "C4"))
	refreshed(t, p)

	n := p.Chord(0).Note(0)
	assert := assert.New(t)
	assert.Equal(10, n.Representation(Concert).Line)
	written := n.Representation(Transposed)
	assert.Equal(mustPitch(t, "D4"), written.Pitch)
	assert.Equal(9, written.Line)
	assert.Equal(theory.AccidentalNone, written.Accidental)
}

func TestLowerHandUsesBassClef(t *testing.T) {
	tr := NewTrack("piano", TrackStandard)
	tr.GrandStaff = true
	newTestSong(t, 1, tr)
	p := tr.Voice(2).Phrase(0)
	fill(t, p, chordOf(t, theory.Whole, "A3"))
	refreshed(t, p)
	assert.Equal(t, 0, p.Chord(0).Note(0).Representation(Concert).Line)
}

func TestSingleStaffVoicesShareTrebleClef(t *testing.T) {
	for _, typ := range []TrackType{TrackStandard, TrackFretted} {
		t.Run(typ.String(), func(t *testing.T) {
			tr := NewTrack("a", typ)
			newTestSong(t, 1, tr)
			require.Equal(t, 1, tr.StandardStaffCount())
			var lines []int
			for _, vi := range []int{0, 2} {
				p := tr.Voice(vi).Phrase(0)
				c := chordOf(t, theory.Whole, "C5")
				if typ == TrackFretted {
					c = NewChord(theory.Whole)
					require.NoError(t, c.AppendNote(NewFretNote(1, 1)))
				}
				fill(t, p, c)
				refreshed(t, p)
				lines = append(lines, p.Chord(0).Note(0).Representation(Concert).Line)
			}
			assert.Equal(t, lines[0], lines[1])
			assert.Equal(t, 0, tr.StaffHand(3))
		})
	}
}

func TestOttaviaShiftsLines(t *testing.T) {
	s := newTestSong(t, 2, NewTrack("a", TrackStandard))
	v := s.Track(0).Voice(0)
	v.Phrase(0).SetOttavia(0, theory.Ottava)
	fill(t, v.Phrase(0), chordOf(t, theory.Whole, "C6"))
	fill(t, v.Phrase(1), chordOf(t, theory.Whole, "C6"))
	_, err := s.Refresh(RefreshOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, v.Phrase(0).Chord(0).Note(0).Representation(Concert).Line)
	assert.Equal(t, 3, v.Phrase(1).Chord(0).Note(0).Representation(Concert).Line)
}

func TestPercussionUsesDrumMap(t *testing.T) {
	s := newTestSong(t, 1, NewTrack("drums", TrackPercussion))
	p := s.Track(0).Voice(0).Phrase(0)
	fill(t, p, chordOf(t, theory.Quarter, "D2"))
	refreshed(t, p)
	r := p.Chord(0).Note(0).Representation(Concert)
	assert.Equal(t, 3, r.Line)
	assert.Equal(t, theory.HeadNormal, r.Head)
	assert.Equal(t, r, p.Chord(0).Note(0).Representation(Transposed))
}

func TestDeadNotesTakeNoAccidental(t *testing.T) {
	s := newTestSong(t, 1, NewTrack("a", TrackStandard))
	p := s.Track(0).Voice(0).Phrase(0)
	c := chordOf(t, theory.Half, "F#4")
	c.Note(0).Flags |= NoteDead
	fill(t, p, c, chordOf(t, theory.Half, "F#4"))
	refreshed(t, p)

	dead := p.Chord(0).Note(0).Representation(Concert)
	assert.Equal(t, theory.HeadDead, dead.Head)
	assert.Equal(t, theory.AccidentalNone, dead.Accidental)
	assert.Equal(t, theory.AccidentalSharp, p.Chord(1).Note(0).Representation(Concert).Accidental)
}

func TestFrettedPitchesFromTuning(t *testing.T) {
	tr := NewTrack("gtr", TrackFretted)
	tr.Capo = 2
	newTestSong(t, 1, tr)
	p := tr.Voice(0).Phrase(0)
	c := NewChord(theory.Quarter)
	require.NoError(t, c.AppendNote(NewFretNote(0, 3)))
	require.NoError(t, c.AppendNote(NewFretNote(7, 1)))
	fill(t, p, c)
	refreshed(t, p)

	assert := assert.New(t)
	require.Equal(t, 1, c.NoteCount())
	assert.Equal(69, c.Note(0).MIDI())

	require.NoError(t, SetTuning(tr, []uint8{64, 59, 55, 50}))
	assert.False(p.Valid())
	require.NoError(t, c.AppendNote(NewFretNote(3, 0)))
	require.NoError(t, c.AppendNote(NewFretNote(5, 0)))
	refreshed(t, p)
	assert.Equal(2, c.NoteCount())
	assert.Equal(52, c.Note(1).MIDI())
	assert.True(errs.IsPrecondition(SetTuning(NewTrack("p", TrackStandard), StandardTuning)))
}

func TestTieHealingAcrossBars(t *testing.T) {
	tr := NewTrack("gtr", TrackFretted)
	s := newTestSong(t, 2, tr)
	v := tr.Voice(0)

	origin := NewChord(theory.Half)
	require.NoError(t, origin.AppendNote(NewFretNote(1, 5)))
	fill(t, v.Phrase(0), origin)

	dst := NewChord(theory.Half)
	tied := NewFretNote(1, 0)
	tied.Flags |= NoteTieDestination
	orphan := NewFretNote(2, 0)
	orphan.Flags |= NoteTieDestination
	require.NoError(t, dst.AppendNote(tied))
	require.NoError(t, dst.AppendNote(orphan))
	fill(t, v.Phrase(1), dst)

	refreshed(t, v.Phrase(0))
	res := refreshed(t, v.Phrase(1))

	assert := assert.New(t)
	assert.Equal(0, res.Affected)
	assert.Equal(uint8(5), tied.Fret)
	assert.Equal(64, tied.MIDI())
	assert.Equal(origin.Note(0).Representation(Concert).Line, tied.Representation(Concert).Line)
	assert.True(origin.Note(0).Flags.Has(NoteTieOrigin))
	assert.False(orphan.Flags.Has(NoteTieDestination))

	again := refreshed(t, v.Phrase(1))
	assert.Equal(NoSibling, again.Affected)

	origin.Note(0).Flags &^= NoteTieOrigin
	n, err := s.Refresh(RefreshOptions{FixTies: true})
	require.NoError(t, err)
	assert.Equal(2*VoiceCount+1, n)
}

func TestTieMatchesByPitchOnStandardTracks(t *testing.T) {
	s := newTestSong(t, 1, NewTrack("a", TrackStandard))
	p := s.Track(0).Voice(0).Phrase(0)
	fill(t, p, chordOf(t, theory.Quarter, "C4", "E4", "G4"))
	next := chordOf(t, theory.Quarter, "E4", "A4")
	for _, n := range next.Notes() {
		n.Flags |= NoteTieDestination
	}
	fill(t, p, next)
	res := refreshed(t, p)

	prev := p.Chord(0)
	assert := assert.New(t)
	assert.Equal(NoSibling, res.Affected)
	assert.True(prev.Note(1).Flags.Has(NoteTieOrigin))
	// A4 has no pitch match and falls back to the note at the same index.
	assert.Equal(mustPitch(t, "E4"), next.Note(1).Pitch)
	assert.False(prev.Note(0).Flags.Has(NoteTieOrigin))
}
