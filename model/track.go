package model

import (
	"sort"

	"github.com/jsphweid/engraver/errs"
	"github.com/jsphweid/engraver/theory"
)

type TrackType uint8

const (
	TrackStandard TrackType = iota
	TrackFretted
	TrackPercussion
)

var trackTypeNames = []string{"standard", "fretted", "percussion"}

func (t TrackType) Valid() bool { return int(t) < len(trackTypeNames) }

func (t TrackType) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return trackTypeNames[t]
}

func ParseTrackType(s string) (TrackType, bool) {
	for i, n := range trackTypeNames {
		if n == s {
			return TrackType(i), true
		}
	}
	return TrackStandard, false
}

const (
	// VoiceCount is fixed: voices 0 and 1 belong to the upper hand,
	// 2 and 3 to the lower.
	VoiceCount = 4
	Hands      = 2
	MaxStrings = 12
	MaxFret    = 36
)

// StandardTuning is six-string guitar, highest string first.
var StandardTuning = []uint8{64, 59, 55, 50, 45, 40}

type Mix struct {
	Channel uint8
	Program uint8
	Volume  uint8
	Pan     uint8
	Mute    bool
	Solo    bool
}

var DefaultMix = Mix{Volume: 100, Pan: 64}

type Track struct {
	index int
	song  *Song

	Name      string
	ShortName string
	Type      TrackType
	Capo      uint8
	Transpose theory.Interval
	Mix       Mix

	GrandStaff    bool
	ShowStandard  bool
	ShowTablature bool

	tuning []uint8
	clefs  [Hands][]ClefChange
	slurs  [Hands][]Slur
	voices [VoiceCount]*Voice
}

// NewTrack builds a detached track; fretted tracks start in standard
// guitar tuning and show both staves.
func NewTrack(name string, typ TrackType) *Track {
	t := &Track{index: -1, Name: name, Type: typ, Mix: DefaultMix, ShowStandard: true}
	if typ == TrackFretted {
		t.tuning = append([]uint8(nil), StandardTuning...)
		t.ShowTablature = true
	}
	if typ == TrackPercussion {
		t.Mix.Channel = 9
	}
	for i := range t.voices {
		t.voices[i] = &Voice{index: i, track: t}
	}
	return t
}

func (t *Track) Index() int {
	if t == nil {
		return -1
	}
	return t.index
}

func (t *Track) Song() *Song {
	if t == nil {
		return nil
	}
	return t.song
}

func (t *Track) Voice(i int) *Voice {
	if t == nil || i < 0 || i >= VoiceCount {
		return nil
	}
	return t.voices[i]
}

func (t *Track) Voices() []*Voice {
	return append([]*Voice(nil), t.voices[:]...)
}

func (t *Track) Tuning() []uint8 {
	return append([]uint8(nil), t.tuning...)
}

func (t *Track) StringCount() int {
	if t.Type != TrackFretted {
		return 0
	}
	return len(t.tuning)
}

// StringPitch is the open-string MIDI value including the capo.
func (t *Track) StringPitch(str int) (int, bool) {
	if str < 0 || str >= len(t.tuning) {
		return 0, false
	}
	return int(t.tuning[str]) + int(t.Capo), true
}

// setTuning replaces the strings and marks every phrase stale so the next
// refresh drops notes on removed strings.
func (t *Track) setTuning(tuning []uint8) error {
	if len(tuning) == 0 || len(tuning) > MaxStrings {
		return errs.Precondition("tuning needs 1 to %d strings, got %d", MaxStrings, len(tuning))
	}
	t.tuning = append([]uint8(nil), tuning...)
	for _, v := range t.voices {
		for _, p := range v.phrases {
			p.Invalidate()
		}
	}
	return nil
}

// HasStandardStaves and HasTablature decide which staves the layout
// creates; percussion always has one standard staff.
func (t *Track) HasStandardStaves() bool {
	return t.ShowStandard || t.Type != TrackFretted
}

func (t *Track) HasTablature() bool {
	return t.Type == TrackFretted && t.ShowTablature
}

// StandardStaffCount is 2 for a grand staff.
func (t *Track) StandardStaffCount() int {
	if !t.HasStandardStaves() {
		return 0
	}
	if t.GrandStaff && t.Type == TrackStandard {
		return 2
	}
	return 1
}

func (t *Track) StaffCount() int {
	n := t.StandardStaffCount()
	if t.HasTablature() {
		n++
	}
	return n
}

// HandOf returns the staff hand for a voice.
func HandOf(voice int) int {
	return voice / 2
}

// StaffHand is the hand whose staff carries a voice. Without a grand
// staff every voice sits on the single upper staff.
func (t *Track) StaffHand(voice int) int {
	if t.StandardStaffCount() < 2 {
		return 0
	}
	return HandOf(voice)
}

func defaultClef(hand int) theory.Clef {
	if hand == 1 {
		return theory.ClefBass
	}
	return theory.ClefTreble
}

// ClefAt is the clef in force for a hand at a position. Percussion
// tracks always use the neutral clef.
func (t *Track) ClefAt(hand, bar, tick int) theory.Clef {
	if t.Type == TrackPercussion {
		return theory.ClefNeutral
	}
	if hand < 0 || hand >= Hands {
		hand = 0
	}
	c := defaultClef(hand)
	for _, ch := range t.clefs[hand] {
		if positionLess(bar, tick, ch.Bar, ch.Tick) {
			break
		}
		c = ch.Clef
	}
	return c
}

// ClefChangedAt reports a clef change placed exactly at the start of bar.
func (t *Track) ClefChangedAt(hand, bar int) bool {
	if hand < 0 || hand >= Hands {
		return false
	}
	for _, ch := range t.clefs[hand] {
		if ch.Bar == bar && ch.Tick == 0 {
			return bar == 0 || t.ClefAt(hand, bar-1, 1<<30) != ch.Clef
		}
	}
	return false
}

func (t *Track) Clefs(hand int) []ClefChange {
	if hand < 0 || hand >= Hands {
		return nil
	}
	return append([]ClefChange(nil), t.clefs[hand]...)
}

func (t *Track) setClef(hand int, c ClefChange) {
	list := t.clefs[hand]
	i := sort.Search(len(list), func(i int) bool {
		return !positionLess(list[i].Bar, list[i].Tick, c.Bar, c.Tick)
	})
	if i < len(list) && list[i].Bar == c.Bar && list[i].Tick == c.Tick {
		list[i] = c
	} else {
		list = append(list, ClefChange{})
		copy(list[i+1:], list[i:])
		list[i] = c
	}
	t.clefs[hand] = list
}

func (t *Track) Slurs(hand int) []Slur {
	if hand < 0 || hand >= Hands {
		return nil
	}
	return append([]Slur(nil), t.slurs[hand]...)
}

// SlursIn returns the hand's slurs touching bars [first, last].
func (t *Track) SlursIn(hand, first, last int) []Slur {
	var out []Slur
	for _, s := range t.Slurs(hand) {
		if s.Spans(first, last) {
			out = append(out, s)
		}
	}
	return out
}

func (t *Track) AddSlur(s Slur) error {
	if int(s.Voice) >= VoiceCount {
		return errs.Precondition("slur voice %d out of range", s.Voice)
	}
	if positionLess(s.EndBar, s.EndChord, s.StartBar, s.StartChord) {
		return errs.Precondition("slur ends before it starts")
	}
	h := HandOf(int(s.Voice))
	t.slurs[h] = append(t.slurs[h], s)
	return nil
}

// shiftBars moves clef changes and slurs at or after bar from by n.
func (t *Track) shiftBars(from, by int) {
	for h := 0; h < Hands; h++ {
		for i := range t.clefs[h] {
			if t.clefs[h][i].Bar >= from {
				t.clefs[h][i].Bar += by
			}
		}
		for i := range t.slurs[h] {
			s := &t.slurs[h][i]
			if s.StartBar >= from {
				s.StartBar += by
			}
			if s.EndBar >= from {
				s.EndBar += by
			}
		}
	}
}

// dropBar removes clef changes and slurs anchored on bar and shifts the
// rest down.
func (t *Track) dropBar(bar int) {
	for h := 0; h < Hands; h++ {
		clefs := t.clefs[h][:0]
		for _, c := range t.clefs[h] {
			if c.Bar == bar {
				continue
			}
			if c.Bar > bar {
				c.Bar--
			}
			clefs = append(clefs, c)
		}
		t.clefs[h] = clefs

		slurs := t.slurs[h][:0]
		for _, s := range t.slurs[h] {
			if s.StartBar == bar || s.EndBar == bar {
				continue
			}
			if s.StartBar > bar {
				s.StartBar--
			}
			if s.EndBar > bar {
				s.EndBar--
			}
			slurs = append(slurs, s)
		}
		t.slurs[h] = slurs
	}
}
