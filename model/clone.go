package model

// Clones are detached deep copies: indices are kept, back references and
// caches are not.

func (n *Note) Clone() *Note {
	c := *n
	c.chord = nil
	c.cache = noteCache{}
	c.graces = append([]GraceNote(nil), n.graces...)
	c.Bend.Points = append([]BendPoint(nil), n.Bend.Points...)
	return &c
}

func (c *Chord) Clone() *Chord {
	d := *c
	d.phrase = nil
	d.cache = chordCache{}
	d.symbols = append([]Symbol(nil), c.symbols...)
	d.notes = nil
	for _, n := range c.notes {
		m := n.Clone()
		m.chord = &d
		d.notes = append(d.notes, m)
	}
	return &d
}

func (d ChordDiagram) Clone() ChordDiagram {
	d.Frets = append([]int8(nil), d.Frets...)
	return d
}

func (p *Phrase) Clone() *Phrase {
	q := &Phrase{index: p.index}
	q.ottavia = append([]OttaviaChange(nil), p.ottavia...)
	for _, d := range p.diagrams {
		q.diagrams = append(q.diagrams, d.Clone())
	}
	for _, c := range p.chords {
		d := c.Clone()
		d.phrase = q
		q.chords = append(q.chords, d)
	}
	return q
}

func (b *Bar) Clone() *Bar {
	c := *b
	c.song = nil
	c.chordNames = append([]ChordName(nil), b.chordNames...)
	return &c
}

func (v *ScoreView) Clone() *ScoreView {
	c := *v
	c.Tracks = append([]int(nil), v.Tracks...)
	return &c
}

func (t *Track) Clone() *Track {
	c := *t
	c.song = nil
	c.tuning = append([]uint8(nil), t.tuning...)
	for h := 0; h < Hands; h++ {
		c.clefs[h] = append([]ClefChange(nil), t.clefs[h]...)
		c.slurs[h] = append([]Slur(nil), t.slurs[h]...)
	}
	for i, v := range t.voices {
		nv := &Voice{index: v.index, track: &c}
		for _, p := range v.phrases {
			q := p.Clone()
			q.voice = nv
			nv.phrases = append(nv.phrases, q)
		}
		c.voices[i] = nv
	}
	return &c
}

// Clone copies the whole song including its id.
func (s *Song) Clone() *Song {
	c := &Song{ID: s.ID, Meta: s.Meta, MultiRests: s.MultiRests}
	c.tempo = append([]TempoMarker(nil), s.tempo...)
	for _, v := range s.views {
		c.views = append(c.views, v.Clone())
	}
	for _, b := range s.bars {
		nb := b.Clone()
		nb.song = c
		c.bars = append(c.bars, nb)
	}
	for _, t := range s.tracks {
		nt := t.Clone()
		nt.song = c
		c.tracks = append(c.tracks, nt)
	}
	return c
}
