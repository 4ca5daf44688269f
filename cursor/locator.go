// Package cursor addresses positions in a song, either purely by index
// through the document or through the systems and staves of a laid out
// score.
package cursor

import "github.com/jsphweid/engraver/model"

// Locator is a chain of indices from a track down to a note. Resolution
// stops with nil at the first index that is out of range.
type Locator struct {
	Track int
	Voice int
	Bar   int
	Chord int
	Note  int
}

func (l Locator) ResolveTrack(s *model.Song) *model.Track   { return s.Track(l.Track) }
func (l Locator) ResolveVoice(s *model.Song) *model.Voice   { return l.ResolveTrack(s).Voice(l.Voice) }
func (l Locator) ResolvePhrase(s *model.Song) *model.Phrase { return l.ResolveVoice(s).Phrase(l.Bar) }
func (l Locator) ResolveChord(s *model.Song) *model.Chord   { return l.ResolvePhrase(s).Chord(l.Chord) }
func (l Locator) ResolveNote(s *model.Song) *model.Note     { return l.ResolveChord(s).Note(l.Note) }

// NextPhrase moves to the first note of the next bar.
func (l Locator) NextPhrase() Locator {
	l.Bar++
	l.Chord, l.Note = 0, 0
	return l
}

// NextChord moves to the first note of the next chord.
func (l Locator) NextChord() Locator {
	l.Chord++
	l.Note = 0
	return l
}

func (l Locator) NextNote() Locator {
	l.Note++
	return l
}

// Locate builds the locator of a note attached to a song.
func Locate(n *model.Note) (Locator, bool) {
	c := n.Chord()
	p := c.Phrase()
	v := p.Voice()
	t := v.Track()
	if t == nil || t.Song() == nil {
		return Locator{}, false
	}
	return Locator{Track: t.Index(), Voice: v.Index(), Bar: p.Index(), Chord: c.Index(), Note: n.Index()}, true
}
