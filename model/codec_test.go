package model

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jsphweid/engraver/stream"
	"github.com/jsphweid/engraver/theory"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// richSong touches every encoded field at least once.
func richSong(t *testing.T) *Song {
	s := newTestSong(t, 3)
	s.Meta.Title = "Etude"
	s.Meta.Artist = "Nobody"
	s.MultiRests = false

	b := s.Bar(0)
	b.Flags = BarRepeatStart | BarSegno
	b.Rehearsal = "A"
	b.SetChordName(ChordName{Tick: 0, Name: "Cmaj7"})
	s.Bar(1).Flags = BarRepeatEnd
	s.Bar(1).RepeatCount = 2
	s.Bar(1).AlternateEndings = 1
	require.NoError(t, SetTimeSignature(s, 2, theory.TimeSignature{Beats: 6, BeatValue: 8}))
	require.NoError(t, SetKeySignature(s, 2, theory.KeySignature{Fifths: -3, Minor: true}))
	require.NoError(t, SetBeaming(s, 2, theory.BeamingPattern{3, 3}))

	piano := NewTrack("Piano", TrackStandard)
	piano.GrandStaff = true
	piano.Transpose = theory.OctaveUp
	piano.Mix.Program = 1
	gtr := NewTrack("Guitar", TrackFretted)
	gtr.Capo = 3
	gtr.ShortName = "Gtr."
	require.NoError(t, s.AppendTrack(piano))
	require.NoError(t, s.AppendTrack(gtr))
	require.NoError(t, SetClef(piano, 1, 1, 480, theory.ClefTenor))
	require.NoError(t, piano.AddSlur(Slur{Voice: 0, StartBar: 0, StartChord: 0, EndBar: 1, EndChord: 0}))

	c := chordOf(t, theory.Eighth, "C4", "Eb4")
	c.Dots = 1
	c.Flags |= ChordAccent | ChordStaccato
	c.Dynamic = DynamicMF
	c.Text = "dolce"
	c.Stroke = StrokeArpeggioUp
	c.AddSymbol(Symbol{Kind: SymbolKind(1), Text: "tr", Line: -2})
	n := c.Note(0)
	n.Flags |= NoteTieOrigin | NoteVibrato
	n.Velocity = 70
	n.Bend = Bend{Kind: BendKind(1), Points: []BendPoint{{0, 0}, {6, 4}}}
	n.AddGrace(GraceNote{Pitch: mustPitch(t, "D4"), Value: theory.Sixteenth, Flags: GraceSlash})
	tri := chordOf(t, theory.Eighth, "G4")
	tri.Tuplet = theory.Triplet
	p := piano.Voice(0).Phrase(0)
	fill(t, p, c, tri, chordOf(t, theory.Quarter))
	p.SetOttavia(480, theory.Ottava)
	fill(t, piano.Voice(3).Phrase(2), chordOf(t, theory.Half, "F2"))

	g := NewChord(theory.Whole)
	fn := NewFretNote(2, 7)
	fn.SlideOut = Slide(1)
	require.NoError(t, g.AppendNote(fn))
	fill(t, gtr.Voice(0).Phrase(1), g)
	gtr.Voice(0).Phrase(1).SetDiagram(ChordDiagram{Tick: 0, Name: "D", BaseFret: 1, Frets: []int8{2, 3, 2, 0, -1, -1}})

	partial := NewScoreView("Guitar part")
	partial.Tracks = []int{1}
	partial.Strategy = "fixed"
	partial.BarsPerSystem = 4
	partial.Written = true
	require.NoError(t, s.InsertView(partial, 1))
	require.NoError(t, s.InsertTempoMarker(TempoMarker{Bar: 1, Tick: 0, BPM: 72, BeatValue: theory.Quarter, Text: "Adagio"}))

	_, err := s.Refresh(RefreshOptions{})
	require.NoError(t, err)
	return s
}

func TestBinaryRoundTrip(t *testing.T) {
	s := richSong(t)
	var buf bytes.Buffer
	require.NoError(t, WriteSong(&buf, s))

	got, err := ReadSong(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert := assert.New(t)
	assert.True(s.Equal(got))
	assert.Equal(s.ID, got.ID)
	requireIndexed(t, got)
	assert.False(got.Track(0).Voice(0).Phrase(0).Valid())

	_, err = got.Refresh(RefreshOptions{})
	require.NoError(t, err)
	assert.Equal(
		s.Track(0).Voice(0).Phrase(0).Chord(0).Note(0).Representation(Transposed),
		got.Track(0).Voice(0).Phrase(0).Chord(0).Note(0).Representation(Transposed),
	)
}

func TestBinaryOlderVersions(t *testing.T) {
	s := richSong(t)
	var buf bytes.Buffer
	require.NoError(t, WriteSongVersion(&buf, s, VersionInitial))
	got, err := ReadSong(&buf)
	require.NoError(t, err)

	assert := assert.New(t)
	c := got.Track(0).Voice(0).Phrase(0).Chord(0)
	assert.Equal(DynamicNone, c.Dynamic)
	assert.Empty(c.Symbols())
	assert.Empty(got.Track(0).Voice(0).Phrase(0).OttaviaChanges())
	assert.Equal("dolce", c.Text)
	assert.False(s.Equal(got))

	buf.Reset()
	require.NoError(t, WriteSongVersion(&buf, s, VersionDynamics))
	got, err = ReadSong(&buf)
	require.NoError(t, err)
	assert.Equal(DynamicMF, got.Track(0).Voice(0).Phrase(0).Chord(0).Dynamic)
	assert.Empty(got.Track(1).Voice(0).Phrase(1).Diagrams())

	buf.Reset()
	require.NoError(t, WriteSongVersion(&buf, s, VersionOttavia))
	got, err = ReadSong(&buf)
	require.NoError(t, err)
	assert.NotEmpty(got.Track(1).Voice(0).Phrase(1).Diagrams())
	assert.False(got.View(1).Written)
	assert.Equal(Transposed, s.View(1).State())
	assert.Equal(Concert, got.View(1).State())

	assert.True(errors.Is(WriteSongVersion(&buf, s, 9), ErrUnsupportedVersion))
}

func TestReadSongRejectsBadInput(t *testing.T) {
	assert := assert.New(t)
	_, err := ReadSong(bytes.NewReader([]byte("RIFF\x01\x00")))
	assert.True(errors.Is(err, ErrBadMagic))

	_, err = ReadSong(bytes.NewReader([]byte("ENGR\x63\x00")))
	assert.True(errors.Is(err, ErrUnsupportedVersion))

	var buf bytes.Buffer
	require.NoError(t, WriteSong(&buf, richSong(t)))
	raw := buf.Bytes()
	_, err = ReadSong(bytes.NewReader(raw[:len(raw)/2]))
	assert.Error(err)

	_, err = ReadSong(bytes.NewReader(nil))
	assert.Error(err)
}

func TestEntityRoundTrip(t *testing.T) {
	c := chordOf(t, theory.Sixteenth, "A4", "C#5")
	c.Dynamic = DynamicPP
	c.Note(1).AddGrace(GraceNote{Pitch: mustPitch(t, "B4"), Value: theory.ThirtySecond})

	var buf bytes.Buffer
	w := stream.NewWriter(&buf, CurrentVersion)
	c.EncodeTo(w)
	require.NoError(t, w.Err())

	got := NewChord(theory.Quarter)
	require.NoError(t, got.DecodeFrom(stream.NewReader(&buf, CurrentVersion)))
	assert.True(t, c.Equal(got))
	assert.Same(t, got, got.Note(1).Chord())

	b := NewBar(theory.TimeSignature{Beats: 7, BeatValue: 8}, theory.KeySignature{Fifths: 4})
	b.Flags = BarFine
	buf.Reset()
	w = stream.NewWriter(&buf, CurrentVersion)
	b.EncodeTo(w)
	gotBar := NewBar(theory.CommonTime, theory.KeySignature{})
	require.NoError(t, gotBar.DecodeFrom(stream.NewReader(&buf, CurrentVersion)))
	assert.True(t, b.Equal(gotBar))
}

func TestJSONRoundTrip(t *testing.T) {
	s := richSong(t)
	data, err := json.Marshal(s)
	require.NoError(t, err)

	got := NewSong()
	require.NoError(t, json.Unmarshal(data, got))
	assert.True(t, s.Equal(got))
	requireIndexed(t, got)
	assert.Same(t, got, got.Track(1).Song())
}

func TestJSONDefaults(t *testing.T) {
	data := `{
		"bars": [{}, {"key": {"fifths": 1}}],
		"tracks": [{"name": "Lead", "voices": [[{"chords": [{"value": "4", "notes": [{}]}]}]]}]
	}`
	var s Song
	require.NoError(t, json.Unmarshal([]byte(data), &s))

	assert := assert.New(t)
	assert.Equal(theory.CommonTime, s.Bar(0).TimeSignature)
	assert.Equal(theory.KeySignature{}, s.Bar(0).Key)
	assert.Equal(int8(1), s.Bar(1).Key.Fifths)
	assert.True(s.MultiRests)
	require.Equal(t, 1, s.ViewCount())
	assert.Equal([]int{0}, s.View(0).Tracks)

	tr := s.Track(0)
	assert.Equal(TrackStandard, tr.Type)
	for _, v := range tr.Voices() {
		assert.Equal(2, v.PhraseCount())
	}
	n := tr.Voice(0).Phrase(0).Chord(0).Note(0)
	assert.Equal(mustPitch(t, "C4"), n.Pitch)
	assert.Equal(uint8(DefaultVelocity), n.Velocity)
	assert.Equal(theory.ClefTreble, tr.ClefAt(0, 0, 0))
}

func TestJSONRejectsBadDocuments(t *testing.T) {
	docs := map[string]string{
		"unknown flag":       `{"bars": [{"flags": ["sparkle"]}], "tracks": []}`,
		"too many phrases":   `{"bars": [{}], "tracks": [{"name": "a", "voices": [[{}, {}]]}]}`,
		"bad note value":     `{"bars": [{}], "tracks": [{"name": "a", "voices": [[{"chords": [{"value": "3"}]}]]}]}`,
		"bad pitch":          `{"bars": [{}], "tracks": [{"name": "a", "voices": [[{"chords": [{"value": "4", "notes": [{"pitch": "H2"}]}]}]]}]}`,
		"bad time signature": `{"bars": [{"time": {"beats": 3, "beatValue": 5}}], "tracks": []}`,
		"bad track type":     `{"bars": [], "tracks": [{"name": "a", "type": "kazoo"}]}`,
		"tempo out of range": `{"bars": [{}], "tracks": [], "tempo": [{"bar": 4, "bpm": 90}]}`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			var s Song
			assert.Error(t, json.Unmarshal([]byte(doc), &s))
		})
	}
}
