package model

import (
	"io"

	"github.com/google/uuid"
	"github.com/jsphweid/engraver/errs"
	"github.com/jsphweid/engraver/stream"
	"github.com/jsphweid/engraver/theory"
	"github.com/pkg/errors"
)

// Format versions. Each adds fields; older streams decode with defaults.
const (
	VersionInitial  stream.Version = 1
	VersionDynamics stream.Version = 2 // chord dynamics and symbols
	VersionOttavia  stream.Version = 3 // phrase ottavia and chord diagrams
	VersionWritten  stream.Version = 4 // view written-pitch flag
	CurrentVersion                 = VersionWritten
)

var Magic = [4]byte{'E', 'N', 'G', 'R'}

// maxCount bounds every decoded collection.
const maxCount = 1 << 16

var (
	ErrBadMagic           = errors.New("not an engraver song stream")
	ErrUnsupportedVersion = errors.New("unsupported song format version")
)

func WriteSong(w io.Writer, s *Song) error {
	return WriteSongVersion(w, s, CurrentVersion)
}

// WriteSongVersion writes an older format, leaving out newer fields.
func WriteSongVersion(w io.Writer, s *Song, v stream.Version) error {
	if v < VersionInitial || v > CurrentVersion {
		return errors.Wrapf(ErrUnsupportedVersion, "version %d", v)
	}
	sw := stream.NewWriter(w, v)
	for _, b := range Magic {
		sw.WriteUint8(b)
	}
	sw.WriteUint16(uint16(v))
	s.EncodeTo(sw)
	return sw.Err()
}

func ReadSong(r io.Reader) (*Song, error) {
	header := stream.NewReader(r, 0)
	var magic [4]byte
	for i := range magic {
		magic[i] = header.ReadUint8()
	}
	v := stream.Version(header.ReadUint16())
	if err := header.Err(); err != nil {
		return nil, errs.Wrap(err, "reading song header")
	}
	if magic != Magic {
		return nil, ErrBadMagic
	}
	if v < VersionInitial || v > CurrentVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", v)
	}
	s := &Song{}
	if err := s.DecodeFrom(stream.NewReader(r, v)); err != nil {
		return nil, errs.Wrap(err, "decoding song")
	}
	return s, nil
}

func (s *Song) EncodeTo(w *stream.Writer) {
	w.WriteString(string(s.ID[:]))
	for _, f := range s.metaFields() {
		w.WriteString(*f)
	}
	w.WriteBool(s.MultiRests)

	w.WriteCount(len(s.bars))
	for _, b := range s.bars {
		b.EncodeTo(w)
	}
	w.WriteCount(len(s.tracks))
	for _, t := range s.tracks {
		t.EncodeTo(w)
	}
	w.WriteCount(len(s.views))
	for _, v := range s.views {
		v.EncodeTo(w)
	}
	w.WriteCount(len(s.tempo))
	for _, m := range s.tempo {
		w.WriteInt32(int32(m.Bar))
		w.WriteInt32(int32(m.Tick))
		w.WriteUint16(m.BPM)
		w.WriteUint8(uint8(m.BeatValue))
		w.WriteString(m.Text)
	}
}

func (s *Song) metaFields() []*string {
	m := &s.Meta
	return []*string{&m.Title, &m.Subtitle, &m.Artist, &m.Album, &m.Author, &m.Copyright, &m.Transcriber, &m.Notes}
}

// DecodeFrom replaces the content of s.
func (s *Song) DecodeFrom(r *stream.Reader) error {
	*s = Song{}
	id, err := uuid.FromBytes([]byte(r.ReadString()))
	if r.Err() == nil && err != nil {
		r.Fail(errs.Wrap(err, "song id"))
	}
	s.ID = id
	for _, f := range s.metaFields() {
		*f = r.ReadString()
	}
	s.MultiRests = r.ReadBool()

	n := r.ReadCount(maxCount)
	for i := 0; i < n && r.Err() == nil; i++ {
		b := &Bar{}
		b.DecodeFrom(r)
		b.song = s
		s.bars = append(s.bars, b)
	}
	s.reindexBars()

	n = r.ReadCount(maxCount)
	for i := 0; i < n && r.Err() == nil; i++ {
		t := &Track{}
		t.DecodeFrom(r)
		t.song = s
		s.tracks = append(s.tracks, t)
	}
	s.reindexTracks()

	n = r.ReadCount(maxCount)
	for i := 0; i < n && r.Err() == nil; i++ {
		v := &ScoreView{}
		v.DecodeFrom(r)
		s.views = append(s.views, v)
	}

	n = r.ReadCount(maxCount)
	for i := 0; i < n && r.Err() == nil; i++ {
		s.tempo = append(s.tempo, TempoMarker{
			Bar:       int(r.ReadInt32()),
			Tick:      int(r.ReadInt32()),
			BPM:       r.ReadUint16(),
			BeatValue: theory.NoteValue(r.ReadUint8()),
			Text:      r.ReadString(),
		})
	}
	if err := r.Err(); err != nil {
		return err
	}
	return s.checkShape()
}

// checkShape verifies one phrase per bar in every voice.
func (s *Song) checkShape() error {
	for _, t := range s.tracks {
		for _, v := range t.voices {
			if len(v.phrases) != len(s.bars) {
				return errs.Precondition("track %d voice %d has %d phrases for %d bars", t.index, v.index, len(v.phrases), len(s.bars))
			}
		}
	}
	if len(s.views) == 0 {
		return errs.Precondition("song has no views")
	}
	return nil
}

func (b *Bar) EncodeTo(w *stream.Writer) {
	w.WriteUint8(b.TimeSignature.Beats)
	w.WriteUint8(b.TimeSignature.BeatValue)
	w.WriteBool(b.TimeSignature.Common)
	w.WriteBool(b.TimeSignature.Hidden)
	w.WriteInt8(b.Key.Fifths)
	w.WriteBool(b.Key.Minor)
	for _, g := range b.Beaming {
		w.WriteUint8(g)
	}
	w.WriteUint32(uint32(b.Flags))
	w.WriteUint8(b.RepeatCount)
	w.WriteUint8(b.AlternateEndings)
	w.WriteString(b.Rehearsal)

	w.WriteCount(len(b.chordNames))
	for _, c := range b.chordNames {
		w.WriteInt32(int32(c.Tick))
		w.WriteString(c.Name)
	}
}

func (b *Bar) DecodeFrom(r *stream.Reader) error {
	b.TimeSignature.Beats = r.ReadUint8()
	b.TimeSignature.BeatValue = r.ReadUint8()
	b.TimeSignature.Common = r.ReadBool()
	b.TimeSignature.Hidden = r.ReadBool()
	b.Key.Fifths = r.ReadInt8()
	b.Key.Minor = r.ReadBool()
	for i := range b.Beaming {
		b.Beaming[i] = r.ReadUint8()
	}
	b.Flags = BarFlags(r.ReadUint32())
	b.RepeatCount = r.ReadUint8()
	b.AlternateEndings = r.ReadUint8()
	b.Rehearsal = r.ReadString()

	b.chordNames = nil
	n := r.ReadCount(maxCount)
	for i := 0; i < n && r.Err() == nil; i++ {
		b.chordNames = append(b.chordNames, ChordName{Tick: int(r.ReadInt32()), Name: r.ReadString()})
	}
	return r.Err()
}

func (t *Track) EncodeTo(w *stream.Writer) {
	w.WriteString(t.Name)
	w.WriteString(t.ShortName)
	w.WriteUint8(uint8(t.Type))
	w.WriteUint8(t.Capo)
	w.WriteInt8(t.Transpose.Steps)
	w.WriteInt8(t.Transpose.Semitones)
	w.WriteUint8(t.Mix.Channel)
	w.WriteUint8(t.Mix.Program)
	w.WriteUint8(t.Mix.Volume)
	w.WriteUint8(t.Mix.Pan)
	w.WriteBool(t.Mix.Mute)
	w.WriteBool(t.Mix.Solo)
	w.WriteBool(t.GrandStaff)
	w.WriteBool(t.ShowStandard)
	w.WriteBool(t.ShowTablature)

	w.WriteCount(len(t.tuning))
	for _, p := range t.tuning {
		w.WriteUint8(p)
	}
	for h := 0; h < Hands; h++ {
		w.WriteCount(len(t.clefs[h]))
		for _, c := range t.clefs[h] {
			w.WriteInt32(int32(c.Bar))
			w.WriteInt32(int32(c.Tick))
			w.WriteUint8(uint8(c.Clef))
		}
		w.WriteCount(len(t.slurs[h]))
		for _, s := range t.slurs[h] {
			w.WriteUint8(s.Voice)
			w.WriteInt32(int32(s.StartBar))
			w.WriteInt32(int32(s.StartChord))
			w.WriteInt32(int32(s.EndBar))
			w.WriteInt32(int32(s.EndChord))
		}
	}
	w.WriteCount(len(t.voices))
	for _, v := range t.voices {
		v.EncodeTo(w)
	}
}

func (t *Track) DecodeFrom(r *stream.Reader) error {
	t.Name = r.ReadString()
	t.ShortName = r.ReadString()
	t.Type = TrackType(r.ReadUint8())
	t.Capo = r.ReadUint8()
	t.Transpose.Steps = r.ReadInt8()
	t.Transpose.Semitones = r.ReadInt8()
	t.Mix.Channel = r.ReadUint8()
	t.Mix.Program = r.ReadUint8()
	t.Mix.Volume = r.ReadUint8()
	t.Mix.Pan = r.ReadUint8()
	t.Mix.Mute = r.ReadBool()
	t.Mix.Solo = r.ReadBool()
	t.GrandStaff = r.ReadBool()
	t.ShowStandard = r.ReadBool()
	t.ShowTablature = r.ReadBool()
	if r.Err() == nil && !t.Type.Valid() {
		r.Fail(errs.Precondition("unknown track type %d", t.Type))
	}

	t.tuning = nil
	n := r.ReadCount(MaxStrings)
	for i := 0; i < n; i++ {
		t.tuning = append(t.tuning, r.ReadUint8())
	}
	for h := 0; h < Hands; h++ {
		t.clefs[h], t.slurs[h] = nil, nil
		n = r.ReadCount(maxCount)
		for i := 0; i < n && r.Err() == nil; i++ {
			t.clefs[h] = append(t.clefs[h], ClefChange{
				Bar:  int(r.ReadInt32()),
				Tick: int(r.ReadInt32()),
				Clef: theory.Clef(r.ReadUint8()),
			})
		}
		n = r.ReadCount(maxCount)
		for i := 0; i < n && r.Err() == nil; i++ {
			t.slurs[h] = append(t.slurs[h], Slur{
				Voice:      r.ReadUint8(),
				StartBar:   int(r.ReadInt32()),
				StartChord: int(r.ReadInt32()),
				EndBar:     int(r.ReadInt32()),
				EndChord:   int(r.ReadInt32()),
			})
		}
	}
	if n = r.ReadCount(VoiceCount); r.Err() == nil && n != VoiceCount {
		r.Fail(errs.Precondition("track has %d voices, want %d", n, VoiceCount))
	}
	for i := 0; i < VoiceCount; i++ {
		v := &Voice{index: i, track: t}
		if r.Err() == nil {
			v.DecodeFrom(r)
		}
		t.voices[i] = v
	}
	return r.Err()
}

func (v *Voice) EncodeTo(w *stream.Writer) {
	w.WriteCount(len(v.phrases))
	for _, p := range v.phrases {
		p.EncodeTo(w)
	}
}

func (v *Voice) DecodeFrom(r *stream.Reader) error {
	v.phrases = nil
	n := r.ReadCount(maxCount)
	for i := 0; i < n && r.Err() == nil; i++ {
		p := NewPhrase()
		p.DecodeFrom(r)
		v.insertPhrase(p, len(v.phrases))
	}
	return r.Err()
}

func (p *Phrase) EncodeTo(w *stream.Writer) {
	if w.Version() >= VersionOttavia {
		w.WriteCount(len(p.diagrams))
		for _, d := range p.diagrams {
			w.WriteInt32(int32(d.Tick))
			w.WriteString(d.Name)
			w.WriteUint8(d.BaseFret)
			w.WriteCount(len(d.Frets))
			for _, f := range d.Frets {
				w.WriteInt8(f)
			}
		}
		w.WriteCount(len(p.ottavia))
		for _, o := range p.ottavia {
			w.WriteInt32(int32(o.Tick))
			w.WriteUint8(uint8(o.Ottavia))
		}
	}
	w.WriteCount(len(p.chords))
	for _, c := range p.chords {
		c.EncodeTo(w)
	}
}

func (p *Phrase) DecodeFrom(r *stream.Reader) error {
	p.diagrams, p.ottavia, p.chords = nil, nil, nil
	if r.AtLeast(VersionOttavia) {
		n := r.ReadCount(maxCount)
		for i := 0; i < n && r.Err() == nil; i++ {
			d := ChordDiagram{Tick: int(r.ReadInt32()), Name: r.ReadString(), BaseFret: r.ReadUint8()}
			m := r.ReadCount(MaxStrings)
			for j := 0; j < m; j++ {
				d.Frets = append(d.Frets, r.ReadInt8())
			}
			p.diagrams = append(p.diagrams, d)
		}
		n = r.ReadCount(maxCount)
		for i := 0; i < n && r.Err() == nil; i++ {
			p.ottavia = append(p.ottavia, OttaviaChange{Tick: int(r.ReadInt32()), Ottavia: theory.Ottavia(r.ReadUint8())})
		}
	}
	n := r.ReadCount(maxCount)
	for i := 0; i < n && r.Err() == nil; i++ {
		c := NewChord(theory.Quarter)
		c.DecodeFrom(r)
		c.phrase = p
		p.chords = append(p.chords, c)
	}
	p.reindex()
	p.Invalidate()
	return r.Err()
}

func (c *Chord) EncodeTo(w *stream.Writer) {
	w.WriteUint8(uint8(c.Value))
	w.WriteUint8(c.Dots)
	w.WriteUint8(c.Tuplet.Num)
	w.WriteUint8(c.Tuplet.Den)
	w.WriteUint32(uint32(c.Flags))
	w.WriteUint8(uint8(c.Stroke))
	w.WriteUint8(uint8(c.Stem))
	w.WriteString(c.Text)
	if w.Version() >= VersionDynamics {
		w.WriteUint8(uint8(c.Dynamic))
	}

	w.WriteCount(len(c.notes))
	for _, n := range c.notes {
		n.EncodeTo(w)
	}
	if w.Version() >= VersionDynamics {
		w.WriteCount(len(c.symbols))
		for _, s := range c.symbols {
			w.WriteUint8(uint8(s.Kind))
			w.WriteString(s.Text)
			w.WriteInt8(s.Line)
		}
	}
}

func (c *Chord) DecodeFrom(r *stream.Reader) error {
	c.Value = theory.NoteValue(r.ReadUint8())
	c.Dots = r.ReadUint8()
	c.Tuplet.Num = r.ReadUint8()
	c.Tuplet.Den = r.ReadUint8()
	c.Flags = ChordFlags(r.ReadUint32())
	c.Stroke = Stroke(r.ReadUint8())
	c.Stem = theory.StemDirection(r.ReadUint8())
	c.Text = r.ReadString()
	c.Dynamic = DynamicNone
	if r.AtLeast(VersionDynamics) {
		c.Dynamic = Dynamic(r.ReadUint8())
	}
	if r.Err() == nil && !c.Value.Valid() {
		r.Fail(errs.Precondition("invalid note value %d", c.Value))
	}

	c.notes, c.symbols = nil, nil
	n := r.ReadCount(maxCount)
	for i := 0; i < n && r.Err() == nil; i++ {
		note := NewNote(theory.Pitch{})
		note.DecodeFrom(r)
		note.chord = c
		c.notes = append(c.notes, note)
	}
	c.reindex()
	if r.AtLeast(VersionDynamics) {
		n = r.ReadCount(maxCount)
		for i := 0; i < n && r.Err() == nil; i++ {
			c.symbols = append(c.symbols, Symbol{Kind: SymbolKind(r.ReadUint8()), Text: r.ReadString(), Line: r.ReadInt8()})
		}
	}
	c.cache = chordCache{}
	return r.Err()
}

func writePitch(w *stream.Writer, p theory.Pitch) {
	w.WriteInt8(p.Step)
	w.WriteInt8(p.Alteration)
	w.WriteInt8(p.Octave)
}

func readPitch(r *stream.Reader) theory.Pitch {
	return theory.Pitch{Step: r.ReadInt8(), Alteration: r.ReadInt8(), Octave: r.ReadInt8()}
}

func (n *Note) EncodeTo(w *stream.Writer) {
	writePitch(w, n.Pitch)
	w.WriteUint8(n.String)
	w.WriteUint8(n.Fret)
	w.WriteUint8(n.Velocity)
	w.WriteUint32(uint32(n.Flags))
	w.WriteUint8(uint8(n.SlideIn))
	w.WriteUint8(uint8(n.SlideOut))
	w.WriteUint8(uint8(n.Bend.Kind))

	w.WriteCount(len(n.Bend.Points))
	for _, p := range n.Bend.Points {
		w.WriteUint8(p.Position)
		w.WriteInt8(p.Value)
	}
	w.WriteCount(len(n.graces))
	for _, g := range n.graces {
		writePitch(w, g.Pitch)
		w.WriteUint8(g.String)
		w.WriteUint8(g.Fret)
		w.WriteUint8(uint8(g.Value))
		w.WriteUint8(uint8(g.Flags))
	}
}

func (n *Note) DecodeFrom(r *stream.Reader) error {
	n.Pitch = readPitch(r)
	n.String = r.ReadUint8()
	n.Fret = r.ReadUint8()
	n.Velocity = r.ReadUint8()
	n.Flags = NoteFlags(r.ReadUint32())
	n.SlideIn = Slide(r.ReadUint8())
	n.SlideOut = Slide(r.ReadUint8())
	n.Bend = Bend{Kind: BendKind(r.ReadUint8())}
	if r.Err() == nil && !n.Pitch.Valid() {
		r.Fail(errs.Precondition("invalid pitch %v", n.Pitch))
	}

	c := r.ReadCount(maxCount)
	for i := 0; i < c && r.Err() == nil; i++ {
		n.Bend.Points = append(n.Bend.Points, BendPoint{Position: r.ReadUint8(), Value: r.ReadInt8()})
	}
	n.graces = nil
	c = r.ReadCount(maxCount)
	for i := 0; i < c && r.Err() == nil; i++ {
		n.graces = append(n.graces, GraceNote{
			Pitch:  readPitch(r),
			String: r.ReadUint8(),
			Fret:   r.ReadUint8(),
			Value:  theory.NoteValue(r.ReadUint8()),
			Flags:  GraceFlags(r.ReadUint8()),
		})
	}
	n.cache = noteCache{}
	return r.Err()
}

func (v *ScoreView) EncodeTo(w *stream.Writer) {
	w.WriteString(v.Name)
	w.WriteBool(v.MultiRests)
	w.WriteString(v.Strategy)
	w.WriteString(v.Style)
	w.WriteInt32(int32(v.BarsPerSystem))
	w.WriteCount(len(v.Tracks))
	for _, t := range v.Tracks {
		w.WriteInt32(int32(t))
	}
	if w.Version() >= VersionWritten {
		w.WriteBool(v.Written)
	}
}

func (v *ScoreView) DecodeFrom(r *stream.Reader) error {
	v.Name = r.ReadString()
	v.MultiRests = r.ReadBool()
	v.Strategy = r.ReadString()
	v.Style = r.ReadString()
	v.BarsPerSystem = int(r.ReadInt32())
	v.Tracks = nil
	n := r.ReadCount(maxCount)
	for i := 0; i < n && r.Err() == nil; i++ {
		v.Tracks = append(v.Tracks, int(r.ReadInt32()))
	}
	if r.AtLeast(VersionWritten) {
		v.Written = r.ReadBool()
	}
	return r.Err()
}
