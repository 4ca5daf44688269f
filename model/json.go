package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jsphweid/engraver/theory"
	"github.com/pkg/errors"
)

// The JSON form goes through DTOs so that absent fields can default:
// no key means C major, no clef means treble, no time signature means
// 4/4 and no views means one view over every track.

var barFlagNames = []string{
	"repeatStart", "repeatEnd", "doubleBar", "freeTime", "systemBreak", "pageBreak",
	"coda", "doubleCoda", "segno", "segnoSegno",
	"daCapo", "daCapoAlCoda", "daCapoAlDoubleCoda", "daCapoAlFine",
	"dalSegno", "dalSegnoAlCoda", "dalSegnoAlDoubleCoda", "dalSegnoAlFine",
	"toCoda", "toDoubleCoda", "fine",
}

var chordFlagNames = []string{
	"rest", "breakBeam", "accent", "heavyAccent", "staccato", "tenuto", "fermata",
	"palmMute", "letRing", "tap", "slap", "pop", "tremolo", "fadeIn",
}

var noteFlagNames = []string{
	"dead", "tieOrigin", "tieDestination", "ghost", "accent", "heavyAccent", "staccato",
	"letRing", "palmMute", "harmonic", "vibrato", "hammer", "stickLeft", "stickRight",
}

var graceFlagNames = []string{"onBeat", "dead", "slash"}

func flagsToNames(f uint32, names []string) []string {
	var out []string
	for i, n := range names {
		if f&(1<<uint(i)) != 0 {
			out = append(out, n)
		}
	}
	return out
}

func namesToFlags(list []string, names []string) (uint32, error) {
	var f uint32
outer:
	for _, s := range list {
		for i, n := range names {
			if n == s {
				f |= 1 << uint(i)
				continue outer
			}
		}
		return 0, fmt.Errorf("unknown flag %q", s)
	}
	return f, nil
}

type metaJSON struct {
	Title       string `json:"title,omitempty"`
	Subtitle    string `json:"subtitle,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	Author      string `json:"author,omitempty"`
	Copyright   string `json:"copyright,omitempty"`
	Transcriber string `json:"transcriber,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type timeJSON struct {
	Beats     uint8 `json:"beats"`
	BeatValue uint8 `json:"beatValue"`
	Common    bool  `json:"common,omitempty"`
	Hidden    bool  `json:"hidden,omitempty"`
}

type keyJSON struct {
	Fifths int8 `json:"fifths"`
	Minor  bool `json:"minor,omitempty"`
}

type chordNameJSON struct {
	Tick int    `json:"tick"`
	Name string `json:"name"`
}

type barJSON struct {
	Time             *timeJSON       `json:"time,omitempty"`
	Key              *keyJSON        `json:"key,omitempty"`
	Beaming          []int           `json:"beaming,omitempty"`
	Flags            []string        `json:"flags,omitempty"`
	RepeatCount      uint8           `json:"repeatCount,omitempty"`
	AlternateEndings uint8           `json:"alternateEndings,omitempty"`
	Rehearsal        string          `json:"rehearsal,omitempty"`
	ChordNames       []chordNameJSON `json:"chordNames,omitempty"`
}

type bendPointJSON struct {
	Position uint8 `json:"pos"`
	Value    int8  `json:"value"`
}

type bendJSON struct {
	Kind   BendKind        `json:"kind"`
	Points []bendPointJSON `json:"points,omitempty"`
}

type graceJSON struct {
	Pitch  string   `json:"pitch,omitempty"`
	String uint8    `json:"string,omitempty"`
	Fret   uint8    `json:"fret,omitempty"`
	Value  string   `json:"value,omitempty"`
	Flags  []string `json:"flags,omitempty"`
}

type noteJSON struct {
	Pitch    string      `json:"pitch,omitempty"`
	String   uint8       `json:"string,omitempty"`
	Fret     uint8       `json:"fret,omitempty"`
	Velocity uint8       `json:"velocity,omitempty"`
	Flags    []string    `json:"flags,omitempty"`
	SlideIn  Slide       `json:"slideIn,omitempty"`
	SlideOut Slide       `json:"slideOut,omitempty"`
	Bend     *bendJSON   `json:"bend,omitempty"`
	Graces   []graceJSON `json:"graces,omitempty"`
}

type symbolJSON struct {
	Kind SymbolKind `json:"kind"`
	Text string     `json:"text,omitempty"`
	Line int8       `json:"line,omitempty"`
}

type chordJSON struct {
	Value   string               `json:"value"`
	Dots    uint8                `json:"dots,omitempty"`
	Tuplet  string               `json:"tuplet,omitempty"`
	Flags   []string             `json:"flags,omitempty"`
	Stroke  Stroke               `json:"stroke,omitempty"`
	Stem    theory.StemDirection `json:"stem,omitempty"`
	Text    string               `json:"text,omitempty"`
	Dynamic string               `json:"dynamic,omitempty"`
	Notes   []noteJSON           `json:"notes,omitempty"`
	Symbols []symbolJSON         `json:"symbols,omitempty"`
}

type diagramJSON struct {
	Tick     int    `json:"tick"`
	Name     string `json:"name,omitempty"`
	BaseFret uint8  `json:"baseFret,omitempty"`
	Frets    []int8 `json:"frets"`
}

type ottaviaJSON struct {
	Tick    int    `json:"tick"`
	Ottavia string `json:"ottavia"`
}

type phraseJSON struct {
	Chords   []chordJSON   `json:"chords,omitempty"`
	Diagrams []diagramJSON `json:"diagrams,omitempty"`
	Ottavia  []ottaviaJSON `json:"ottavia,omitempty"`
}

type clefJSON struct {
	Bar  int    `json:"bar"`
	Tick int    `json:"tick,omitempty"`
	Clef string `json:"clef,omitempty"`
}

type slurJSON struct {
	Voice      uint8 `json:"voice"`
	StartBar   int   `json:"startBar"`
	StartChord int   `json:"startChord"`
	EndBar     int   `json:"endBar"`
	EndChord   int   `json:"endChord"`
}

type intervalJSON struct {
	Steps     int8 `json:"steps"`
	Semitones int8 `json:"semitones"`
}

type mixJSON struct {
	Channel uint8 `json:"channel"`
	Program uint8 `json:"program"`
	Volume  uint8 `json:"volume"`
	Pan     uint8 `json:"pan"`
	Mute    bool  `json:"mute,omitempty"`
	Solo    bool  `json:"solo,omitempty"`
}

type trackJSON struct {
	Name          string            `json:"name"`
	ShortName     string            `json:"shortName,omitempty"`
	Type          string            `json:"type,omitempty"`
	Capo          uint8             `json:"capo,omitempty"`
	Transpose     *intervalJSON     `json:"transpose,omitempty"`
	Mix           *mixJSON          `json:"mix,omitempty"`
	GrandStaff    bool              `json:"grandStaff,omitempty"`
	ShowStandard  *bool             `json:"showStandard,omitempty"`
	ShowTablature *bool             `json:"showTablature,omitempty"`
	Tuning        []int             `json:"tuning,omitempty"`
	Clefs         [Hands][]clefJSON `json:"clefs"`
	Slurs         [Hands][]slurJSON `json:"slurs"`
	Voices        [][]phraseJSON    `json:"voices"`
}

type viewJSON struct {
	Name          string `json:"name"`
	Tracks        []int  `json:"tracks"`
	MultiRests    *bool  `json:"multiRests,omitempty"`
	Strategy      string `json:"strategy,omitempty"`
	Style         string `json:"style,omitempty"`
	BarsPerSystem int    `json:"barsPerSystem,omitempty"`
	Written       bool   `json:"written,omitempty"`
}

type tempoJSON struct {
	Bar       int    `json:"bar"`
	Tick      int    `json:"tick,omitempty"`
	BPM       uint16 `json:"bpm"`
	BeatValue string `json:"beatValue,omitempty"`
	Text      string `json:"text,omitempty"`
}

type songJSON struct {
	ID         string      `json:"id,omitempty"`
	Meta       metaJSON    `json:"meta"`
	MultiRests *bool       `json:"multiRests,omitempty"`
	Bars       []barJSON   `json:"bars"`
	Tracks     []trackJSON `json:"tracks"`
	Views      []viewJSON  `json:"views,omitempty"`
	Tempo      []tempoJSON `json:"tempo,omitempty"`
}

func boolPtr(b bool) *bool { return &b }

func bytesToInts(b []uint8) []int {
	if len(b) == 0 {
		return nil
	}
	out := make([]int, len(b))
	for i, x := range b {
		out[i] = int(x)
	}
	return out
}

func intsToBytes(v []int) ([]uint8, error) {
	out := make([]uint8, len(v))
	for i, x := range v {
		if x < 0 || x > 255 {
			return nil, fmt.Errorf("value %d out of range", x)
		}
		out[i] = uint8(x)
	}
	return out, nil
}

func (s *Song) MarshalJSON() ([]byte, error) {
	dto := songJSON{
		ID:         s.ID.String(),
		Meta:       metaJSON(s.Meta),
		MultiRests: boolPtr(s.MultiRests),
	}
	for _, b := range s.bars {
		dto.Bars = append(dto.Bars, barToJSON(b))
	}
	for _, t := range s.tracks {
		dto.Tracks = append(dto.Tracks, trackToJSON(t))
	}
	for _, v := range s.views {
		dto.Views = append(dto.Views, viewJSON{
			Name:          v.Name,
			Tracks:        append([]int{}, v.Tracks...),
			MultiRests:    boolPtr(v.MultiRests),
			Strategy:      v.Strategy,
			Style:         v.Style,
			BarsPerSystem: v.BarsPerSystem,
			Written:       v.Written,
		})
	}
	for _, m := range s.tempo {
		dto.Tempo = append(dto.Tempo, tempoJSON{m.Bar, m.Tick, m.BPM, m.BeatValue.String(), m.Text})
	}
	return json.Marshal(dto)
}

func barToJSON(b *Bar) barJSON {
	ts := b.TimeSignature
	out := barJSON{
		Time:             &timeJSON{ts.Beats, ts.BeatValue, ts.Common, ts.Hidden},
		Key:              &keyJSON{b.Key.Fifths, b.Key.Minor},
		Flags:            flagsToNames(uint32(b.Flags), barFlagNames),
		RepeatCount:      b.RepeatCount,
		AlternateEndings: b.AlternateEndings,
		Rehearsal:        b.Rehearsal,
	}
	if !b.Beaming.Empty() {
		out.Beaming = bytesToInts(b.Beaming[:])
	}
	for _, c := range b.chordNames {
		out.ChordNames = append(out.ChordNames, chordNameJSON(c))
	}
	return out
}

func trackToJSON(t *Track) trackJSON {
	mix := mixJSON(t.Mix)
	out := trackJSON{
		Name:          t.Name,
		ShortName:     t.ShortName,
		Type:          t.Type.String(),
		Capo:          t.Capo,
		Mix:           &mix,
		GrandStaff:    t.GrandStaff,
		ShowStandard:  boolPtr(t.ShowStandard),
		ShowTablature: boolPtr(t.ShowTablature),
		Tuning:        bytesToInts(t.tuning),
	}
	if !t.Transpose.Identity() {
		out.Transpose = &intervalJSON{t.Transpose.Steps, t.Transpose.Semitones}
	}
	for h := 0; h < Hands; h++ {
		for _, c := range t.clefs[h] {
			out.Clefs[h] = append(out.Clefs[h], clefJSON{c.Bar, c.Tick, c.Clef.String()})
		}
		for _, s := range t.slurs[h] {
			out.Slurs[h] = append(out.Slurs[h], slurJSON(s))
		}
	}
	for _, v := range t.voices {
		phrases := []phraseJSON{}
		for _, p := range v.phrases {
			phrases = append(phrases, phraseToJSON(p))
		}
		out.Voices = append(out.Voices, phrases)
	}
	return out
}

func phraseToJSON(p *Phrase) phraseJSON {
	var out phraseJSON
	for _, c := range p.chords {
		out.Chords = append(out.Chords, chordToJSON(c))
	}
	for _, d := range p.diagrams {
		out.Diagrams = append(out.Diagrams, diagramJSON{d.Tick, d.Name, d.BaseFret, append([]int8{}, d.Frets...)})
	}
	for _, o := range p.ottavia {
		out.Ottavia = append(out.Ottavia, ottaviaJSON{o.Tick, o.Ottavia.String()})
	}
	return out
}

func chordToJSON(c *Chord) chordJSON {
	out := chordJSON{
		Value:   c.Value.String(),
		Dots:    c.Dots,
		Tuplet:  c.Tuplet.String(),
		Flags:   flagsToNames(uint32(c.Flags), chordFlagNames),
		Stroke:  c.Stroke,
		Stem:    c.Stem,
		Text:    c.Text,
		Dynamic: c.Dynamic.String(),
	}
	for _, n := range c.notes {
		out.Notes = append(out.Notes, noteToJSON(n))
	}
	for _, s := range c.symbols {
		out.Symbols = append(out.Symbols, symbolJSON(s))
	}
	return out
}

func noteToJSON(n *Note) noteJSON {
	out := noteJSON{
		Pitch:    n.Pitch.String(),
		String:   n.String,
		Fret:     n.Fret,
		Velocity: n.Velocity,
		Flags:    flagsToNames(uint32(n.Flags), noteFlagNames),
		SlideIn:  n.SlideIn,
		SlideOut: n.SlideOut,
	}
	if n.Bend.Kind != BendNone || len(n.Bend.Points) > 0 {
		out.Bend = &bendJSON{Kind: n.Bend.Kind}
		for _, p := range n.Bend.Points {
			out.Bend.Points = append(out.Bend.Points, bendPointJSON(p))
		}
	}
	for _, g := range n.graces {
		out.Graces = append(out.Graces, graceJSON{
			Pitch:  g.Pitch.String(),
			String: g.String,
			Fret:   g.Fret,
			Value:  g.Value.String(),
			Flags:  flagsToNames(uint32(g.Flags), graceFlagNames),
		})
	}
	return out
}

// UnmarshalJSON rebuilds the song through the structural operations so
// that indices and back references are consistent.
func (s *Song) UnmarshalJSON(data []byte) error {
	var dto songJSON
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	out := &Song{ID: uuid.New(), Meta: Metadata(dto.Meta), MultiRests: true}
	if dto.ID != "" {
		id, err := uuid.Parse(dto.ID)
		if err != nil {
			return errors.Wrap(err, "song id")
		}
		out.ID = id
	}
	if dto.MultiRests != nil {
		out.MultiRests = *dto.MultiRests
	}

	for i, bj := range dto.Bars {
		b, err := barFromJSON(bj)
		if err != nil {
			return errors.Wrapf(err, "bar %d", i)
		}
		if err := out.AppendBar(b); err != nil {
			return err
		}
	}
	for i, tj := range dto.Tracks {
		t, err := trackFromJSON(tj, len(dto.Bars))
		if err != nil {
			return errors.Wrapf(err, "track %d", i)
		}
		out.tracks = append(out.tracks, t)
		t.song = out
	}
	out.reindexTracks()

	if len(dto.Views) == 0 {
		v := NewScoreView("Score")
		for i := range out.tracks {
			v.Tracks = append(v.Tracks, i)
		}
		out.views = []*ScoreView{v}
	}
	for _, vj := range dto.Views {
		v := NewScoreView(vj.Name)
		if vj.Tracks == nil {
			for i := range out.tracks {
				v.Tracks = append(v.Tracks, i)
			}
		} else {
			v.Tracks = append([]int{}, vj.Tracks...)
		}
		if vj.MultiRests != nil {
			v.MultiRests = *vj.MultiRests
		}
		if vj.Strategy != "" {
			v.Strategy = vj.Strategy
		}
		if vj.Style != "" {
			v.Style = vj.Style
		}
		v.BarsPerSystem = vj.BarsPerSystem
		v.Written = vj.Written
		out.views = append(out.views, v)
	}

	for _, tj := range dto.Tempo {
		v, ok := theory.ParseNoteValue(tj.BeatValue)
		if !ok && tj.BeatValue != "" {
			return fmt.Errorf("tempo marker: bad beat value %q", tj.BeatValue)
		}
		if err := out.InsertTempoMarker(TempoMarker{tj.Bar, tj.Tick, tj.BPM, v, tj.Text}); err != nil {
			return err
		}
	}
	*s = *out
	// back references point at out; move them to s
	for _, b := range s.bars {
		b.song = s
	}
	for _, t := range s.tracks {
		t.song = s
	}
	return nil
}

func barFromJSON(bj barJSON) (*Bar, error) {
	b := NewBar(theory.CommonTime, theory.KeySignature{})
	if bj.Time != nil {
		b.TimeSignature = theory.TimeSignature{
			Beats: bj.Time.Beats, BeatValue: bj.Time.BeatValue, Common: bj.Time.Common, Hidden: bj.Time.Hidden,
		}.Normalize()
		if !b.TimeSignature.Valid() {
			return nil, fmt.Errorf("invalid time signature %s", b.TimeSignature)
		}
	}
	if bj.Key != nil {
		b.Key = theory.KeySignature{Fifths: bj.Key.Fifths, Minor: bj.Key.Minor}
		if !b.Key.Valid() {
			return nil, fmt.Errorf("invalid key signature %s", b.Key)
		}
	}
	if len(bj.Beaming) > len(b.Beaming) {
		return nil, fmt.Errorf("beaming pattern has %d groups, max %d", len(bj.Beaming), len(b.Beaming))
	}
	groups, err := intsToBytes(bj.Beaming)
	if err != nil {
		return nil, errors.Wrap(err, "beaming")
	}
	copy(b.Beaming[:], groups)
	f, err := namesToFlags(bj.Flags, barFlagNames)
	if err != nil {
		return nil, err
	}
	b.Flags = BarFlags(f)
	b.RepeatCount = bj.RepeatCount
	b.AlternateEndings = bj.AlternateEndings
	b.Rehearsal = bj.Rehearsal
	for _, c := range bj.ChordNames {
		b.SetChordName(ChordName(c))
	}
	return b, nil
}

func trackFromJSON(tj trackJSON, bars int) (*Track, error) {
	typ := TrackStandard
	if tj.Type != "" {
		var ok bool
		if typ, ok = ParseTrackType(tj.Type); !ok {
			return nil, fmt.Errorf("unknown track type %q", tj.Type)
		}
	}
	t := NewTrack(tj.Name, typ)
	t.ShortName = tj.ShortName
	t.Capo = tj.Capo
	t.GrandStaff = tj.GrandStaff
	if tj.Transpose != nil {
		t.Transpose = theory.Interval{Steps: tj.Transpose.Steps, Semitones: tj.Transpose.Semitones}
	}
	if tj.Mix != nil {
		t.Mix = Mix(*tj.Mix)
	}
	if tj.ShowStandard != nil {
		t.ShowStandard = *tj.ShowStandard
	}
	if tj.ShowTablature != nil {
		t.ShowTablature = *tj.ShowTablature
	}
	if len(tj.Tuning) > 0 {
		tuning, err := intsToBytes(tj.Tuning)
		if err != nil {
			return nil, errors.Wrap(err, "tuning")
		}
		if err := t.setTuning(tuning); err != nil {
			return nil, err
		}
	}
	for h := 0; h < Hands; h++ {
		for _, c := range tj.Clefs[h] {
			t.setClef(h, ClefChange{Bar: c.Bar, Tick: c.Tick, Clef: theory.ParseClef(c.Clef)})
		}
		for _, s := range tj.Slurs[h] {
			if err := t.AddSlur(Slur(s)); err != nil {
				return nil, err
			}
		}
	}
	if len(tj.Voices) > VoiceCount {
		return nil, fmt.Errorf("%d voices, max %d", len(tj.Voices), VoiceCount)
	}
	for vi, v := range t.voices {
		var phrases []phraseJSON
		if vi < len(tj.Voices) {
			phrases = tj.Voices[vi]
		}
		if len(phrases) > bars {
			return nil, fmt.Errorf("voice %d has %d phrases for %d bars", vi, len(phrases), bars)
		}
		for i := 0; i < bars; i++ {
			p := NewPhrase()
			if i < len(phrases) {
				if err := phraseFromJSON(p, phrases[i]); err != nil {
					return nil, errors.Wrapf(err, "voice %d bar %d", vi, i)
				}
			}
			v.insertPhrase(p, i)
		}
	}
	return t, nil
}

func phraseFromJSON(p *Phrase, pj phraseJSON) error {
	for _, cj := range pj.Chords {
		c, err := chordFromJSON(cj)
		if err != nil {
			return err
		}
		if err := p.AppendChord(c); err != nil {
			return err
		}
	}
	for _, d := range pj.Diagrams {
		p.SetDiagram(ChordDiagram{Tick: d.Tick, Name: d.Name, BaseFret: d.BaseFret, Frets: append([]int8(nil), d.Frets...)})
	}
	for _, o := range pj.Ottavia {
		ott, ok := theory.ParseOttavia(o.Ottavia)
		if !ok {
			return fmt.Errorf("unknown ottavia %q", o.Ottavia)
		}
		p.SetOttavia(o.Tick, ott)
	}
	return nil
}

func chordFromJSON(cj chordJSON) (*Chord, error) {
	v, ok := theory.ParseNoteValue(cj.Value)
	if !ok {
		return nil, fmt.Errorf("bad note value %q", cj.Value)
	}
	c := NewChord(v)
	if int(cj.Dots) > theory.MaxDots {
		return nil, fmt.Errorf("%d dots, max %d", cj.Dots, theory.MaxDots)
	}
	c.Dots = cj.Dots
	tup, err := theory.ParseTuplet(cj.Tuplet)
	if err != nil {
		return nil, err
	}
	c.Tuplet = tup
	f, err := namesToFlags(cj.Flags, chordFlagNames)
	if err != nil {
		return nil, err
	}
	c.Flags = ChordFlags(f)
	c.Stroke = cj.Stroke
	c.Stem = cj.Stem
	c.Text = cj.Text
	c.Dynamic = ParseDynamic(cj.Dynamic)
	for _, s := range cj.Symbols {
		c.AddSymbol(Symbol(s))
	}
	for _, nj := range cj.Notes {
		n, err := noteFromJSON(nj)
		if err != nil {
			return nil, err
		}
		c.AppendNote(n)
	}
	return c, nil
}

func pitchOrMiddleC(s string) (theory.Pitch, error) {
	if s == "" {
		return theory.Pitch{Step: theory.StepC, Octave: 4}, nil
	}
	return theory.ParsePitch(s)
}

func noteFromJSON(nj noteJSON) (*Note, error) {
	p, err := pitchOrMiddleC(nj.Pitch)
	if err != nil {
		return nil, err
	}
	n := NewNote(p)
	n.String = nj.String
	n.Fret = nj.Fret
	if nj.Velocity != 0 {
		n.Velocity = nj.Velocity
	}
	f, err := namesToFlags(nj.Flags, noteFlagNames)
	if err != nil {
		return nil, err
	}
	n.Flags = NoteFlags(f)
	n.SlideIn = nj.SlideIn
	n.SlideOut = nj.SlideOut
	if nj.Bend != nil {
		n.Bend.Kind = nj.Bend.Kind
		for _, bp := range nj.Bend.Points {
			n.Bend.Points = append(n.Bend.Points, BendPoint(bp))
		}
	}
	for _, gj := range nj.Graces {
		gp, err := pitchOrMiddleC(gj.Pitch)
		if err != nil {
			return nil, err
		}
		gv := theory.ThirtySecond
		if gj.Value != "" {
			var ok bool
			if gv, ok = theory.ParseNoteValue(gj.Value); !ok {
				return nil, fmt.Errorf("bad grace value %q", gj.Value)
			}
		}
		gf, err := namesToFlags(gj.Flags, graceFlagNames)
		if err != nil {
			return nil, err
		}
		n.graces = append(n.graces, GraceNote{Pitch: gp, String: gj.String, Fret: gj.Fret, Value: gv, Flags: GraceFlags(gf)})
	}
	return n, nil
}
