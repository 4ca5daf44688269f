package model

import "github.com/jsphweid/engraver/debug"

// fixTies heals every tie destination of the phrase. A destination takes
// its pitch and fret from the origin; a destination without an origin
// loses its flag. affected is set when an origin in the previous phrase
// was flagged.
func (p *Phrase) fixTies(t *Track) (changed, affected bool) {
	for _, c := range p.chords {
		for _, n := range c.notes {
			if !n.Flags.Has(NoteTieDestination) {
				continue
			}
			origin := tieOrigin(t, c.Previous(), n)
			if origin == nil {
				debug.Log("refresh", "bar %d chord %d note %d: tie without origin, clearing", p.index, c.index, n.index)
				n.Flags &^= NoteTieDestination
				continue
			}
			if n.Pitch != origin.Pitch || n.Fret != origin.Fret {
				n.Pitch = origin.Pitch
				n.Fret = origin.Fret
				changed = true
			}
			if !origin.Flags.Has(NoteTieOrigin) {
				origin.Flags |= NoteTieOrigin
				if origin.chord.phrase != p {
					affected = true
				}
			}
		}
	}
	return changed, affected
}

// tieOrigin looks in the previous sounding chord: by string on fretted
// tracks, otherwise by pitch and then by position in the chord.
func tieOrigin(t *Track, prev *Chord, dst *Note) *Note {
	if prev == nil || prev.IsRest() {
		return nil
	}
	if t.Type == TrackFretted {
		return prev.NoteOnString(dst.String)
	}
	for _, n := range prev.notes {
		if n.MIDI() == dst.MIDI() {
			return n
		}
	}
	return prev.Note(dst.index)
}
