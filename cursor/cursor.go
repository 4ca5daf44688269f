package cursor

import (
	"github.com/jsphweid/engraver/layout"
	"github.com/jsphweid/engraver/model"
	"github.com/jsphweid/engraver/util"
)

// Cursor is an editing position in a laid out score: a bar, a staff of
// the system showing that bar, the high or low voice of the staff's hand,
// a tick within the bar and a staff line (a string on tablature).
type Cursor struct {
	Score *layout.Score

	Bar        int
	StaffIndex int
	Low        bool
	Tick       int
	Line       int
}

func New(sc *layout.Score) *Cursor {
	return &Cursor{Score: sc}
}

func (c *Cursor) System() *layout.System { return c.Score.SystemForBar(c.Bar) }
func (c *Cursor) Staff() *layout.Staff   { return c.System().Staff(c.StaffIndex) }

// VoiceIndex picks voice 0 or 1 for the upper hand and 2 or 3 for the
// lower one.
func (c *Cursor) VoiceIndex() int {
	hand := 0
	if st := c.Staff(); st != nil {
		hand = st.Hand
	}
	v := 2 * hand
	if c.Low {
		v++
	}
	return v
}

func (c *Cursor) Track() *model.Track {
	if st := c.Staff(); st != nil {
		return st.Track
	}
	return nil
}

func (c *Cursor) Voice() *model.Voice   { return c.Track().Voice(c.VoiceIndex()) }
func (c *Cursor) Phrase() *model.Phrase { return c.Voice().Phrase(c.Bar) }

// Chord is the chord sounding at the cursor tick.
func (c *Cursor) Chord() *model.Chord {
	p := c.Phrase()
	if p == nil {
		return nil
	}
	return p.ChordAt(c.Tick)
}

// Note is the note of Chord on the cursor line: the string on tablature,
// the staff line of its representation otherwise.
func (c *Cursor) Note() *model.Note {
	ch, st := c.Chord(), c.Staff()
	if ch == nil || st == nil {
		return nil
	}
	if st.Kind == layout.StaffTablature {
		return ch.NoteOnString(uint8(c.Line))
	}
	state := c.Score.View.State()
	for _, n := range ch.Notes() {
		if n.Representation(state).Line == c.Line {
			return n
		}
	}
	return nil
}

// Locator returns the index chain of the cursor's chord and note. The
// chord and note fields are -1 when nothing is under the cursor.
func (c *Cursor) Locator() Locator {
	l := Locator{Track: c.Track().Index(), Voice: c.VoiceIndex(), Bar: c.Bar, Chord: -1, Note: -1}
	if ch := c.Chord(); ch != nil {
		l.Chord = ch.Index()
	}
	if n := c.Note(); n != nil {
		l.Note = n.Index()
	}
	return l
}

// ForceValidPosition clamps the bar into the song, the staff into the
// system showing the bar and, on tablature, the line onto a string. With
// snap set the tick moves to the start of the chord at or before it,
// else of the chord after it, else to zero.
func (c *Cursor) ForceValidPosition(snap bool) {
	n := c.Score.Song.BarCount()
	if n == 0 {
		c.Bar, c.StaffIndex, c.Tick, c.Line = 0, 0, 0, 0
		return
	}
	c.Bar = util.Clamp(c.Bar, 0, n-1)
	if bar := c.Score.Song.Bar(c.Bar); bar != nil {
		c.Tick = util.Clamp(c.Tick, 0, util.Max(bar.Ticks()-1, 0))
	}

	sys := c.System()
	if sys == nil || len(sys.Staves) == 0 {
		c.StaffIndex = 0
	} else {
		c.StaffIndex = util.Clamp(c.StaffIndex, 0, len(sys.Staves)-1)
	}
	if st := c.Staff(); st != nil && st.Kind == layout.StaffTablature {
		c.Line = util.Clamp(c.Line, 0, util.Max(st.Lines-1, 0))
	}

	if snap {
		c.Tick = snapTick(c.Phrase(), c.Tick)
	}
}

func snapTick(p *model.Phrase, tick int) int {
	if p == nil {
		return 0
	}
	left, right := p.Surrounding(tick)
	switch {
	case left != nil:
		return left.Offset()
	case right != nil:
		return right.Offset()
	}
	return 0
}

// MoveBar shifts the cursor by delta bars and keeps it valid.
func (c *Cursor) MoveBar(delta int) {
	c.Bar += delta
	c.Tick = 0
	c.ForceValidPosition(true)
}

// NextChord moves to the next chord of the voice, crossing into the
// following bar at the end of a phrase. It reports false at the end of
// the song.
func (c *Cursor) NextChord() bool {
	if p := c.Phrase(); p != nil {
		if _, next := p.Surrounding(c.Tick); next != nil {
			c.Tick = next.Offset()
			return true
		}
	}
	if c.Bar+1 >= c.Score.Song.BarCount() {
		return false
	}
	c.Bar++
	c.Tick = 0
	c.ForceValidPosition(true)
	return true
}

// PrevChord moves to the previous chord, landing on the last chord of
// the previous bar at the start of a phrase.
func (c *Cursor) PrevChord() bool {
	if prev := c.chordBefore(); prev != nil {
		c.Tick = prev.Offset()
		return true
	}
	if c.Bar == 0 {
		return false
	}
	c.Bar--
	c.ForceValidPosition(false)
	c.Tick = 0
	if last := c.Phrase().LastChord(); last != nil {
		c.Tick = last.Offset()
	}
	return true
}

// chordBefore is the chord left of the cursor: the previous one when a
// chord is sounding, else the last chord that ended before the tick.
func (c *Cursor) chordBefore() *model.Chord {
	if ch := c.Chord(); ch != nil {
		return ch.Phrase().Chord(ch.Index() - 1)
	}
	if p := c.Phrase(); p != nil {
		left, _ := p.Surrounding(c.Tick)
		return left
	}
	return nil
}
