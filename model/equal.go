package model

// Equality compares authoritative content recursively. Cached fields and
// back references are ignored; indices are compared since they mirror
// position.

func equalSlices[T any](a, b []T, eq func(x, y T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !eq(a[i], b[i]) {
			return false
		}
	}
	return true
}

func same[T comparable](x, y T) bool { return x == y }

func (b Bend) Equal(o Bend) bool {
	return b.Kind == o.Kind && equalSlices(b.Points, o.Points, same[BendPoint])
}

func (d ChordDiagram) Equal(o ChordDiagram) bool {
	return d.Tick == o.Tick && d.Name == o.Name && d.BaseFret == o.BaseFret &&
		equalSlices(d.Frets, o.Frets, same[int8])
}

func (v *ScoreView) Equal(o *ScoreView) bool {
	return v.Name == o.Name && v.MultiRests == o.MultiRests && v.Strategy == o.Strategy &&
		v.Style == o.Style && v.BarsPerSystem == o.BarsPerSystem && v.Written == o.Written &&
		equalSlices(v.Tracks, o.Tracks, same[int])
}

func (n *Note) Equal(o *Note) bool {
	if n == nil || o == nil {
		return n == o
	}
	return n.index == o.index && n.Pitch == o.Pitch && n.String == o.String &&
		n.Fret == o.Fret && n.Velocity == o.Velocity && n.Flags == o.Flags &&
		n.SlideIn == o.SlideIn && n.SlideOut == o.SlideOut && n.Bend.Equal(o.Bend) &&
		equalSlices(n.graces, o.graces, same[GraceNote])
}

func (c *Chord) Equal(o *Chord) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.index == o.index && c.Value == o.Value && c.Dots == o.Dots &&
		c.Tuplet == o.Tuplet && c.Flags == o.Flags && c.Stroke == o.Stroke &&
		c.Stem == o.Stem && c.Text == o.Text && c.Dynamic == o.Dynamic &&
		equalSlices(c.symbols, o.symbols, same[Symbol]) &&
		equalSlices(c.notes, o.notes, (*Note).Equal)
}

func (p *Phrase) Equal(o *Phrase) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.index == o.index &&
		equalSlices(p.diagrams, o.diagrams, ChordDiagram.Equal) &&
		equalSlices(p.ottavia, o.ottavia, same[OttaviaChange]) &&
		equalSlices(p.chords, o.chords, (*Chord).Equal)
}

func (v *Voice) Equal(o *Voice) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.index == o.index && equalSlices(v.phrases, o.phrases, (*Phrase).Equal)
}

func (b *Bar) Equal(o *Bar) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.index == o.index && b.TimeSignature == o.TimeSignature && b.Key == o.Key &&
		b.Beaming == o.Beaming && b.Flags == o.Flags && b.RepeatCount == o.RepeatCount &&
		b.AlternateEndings == o.AlternateEndings && b.Rehearsal == o.Rehearsal &&
		equalSlices(b.chordNames, o.chordNames, same[ChordName])
}

func (t *Track) Equal(o *Track) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.index != o.index || t.Name != o.Name || t.ShortName != o.ShortName ||
		t.Type != o.Type || t.Capo != o.Capo || t.Transpose != o.Transpose || t.Mix != o.Mix ||
		t.GrandStaff != o.GrandStaff || t.ShowStandard != o.ShowStandard ||
		t.ShowTablature != o.ShowTablature || !equalSlices(t.tuning, o.tuning, same[uint8]) {
		return false
	}
	for h := 0; h < Hands; h++ {
		if !equalSlices(t.clefs[h], o.clefs[h], same[ClefChange]) ||
			!equalSlices(t.slurs[h], o.slurs[h], same[Slur]) {
			return false
		}
	}
	return equalSlices(t.voices[:], o.voices[:], (*Voice).Equal)
}

func (s *Song) Equal(o *Song) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.ID == o.ID && s.Meta == o.Meta && s.MultiRests == o.MultiRests &&
		equalSlices(s.tempo, o.tempo, same[TempoMarker]) &&
		equalSlices(s.views, o.views, (*ScoreView).Equal) &&
		equalSlices(s.bars, o.bars, (*Bar).Equal) &&
		equalSlices(s.tracks, o.tracks, (*Track).Equal)
}
