// Package model is the document: a Song of Bars and Tracks, each Track a
// fixed set of Voices holding one Phrase per Bar, Phrases of Chords and
// Chords of Notes. Every container keeps its children's Index in step
// with their position. Index accessors return nil when out of range and
// are safe to chain on nil receivers.
package model

import (
	"github.com/google/uuid"
	"github.com/jsphweid/engraver/errs"
)

type Metadata struct {
	Title       string
	Subtitle    string
	Artist      string
	Album       string
	Author      string
	Copyright   string
	Transcriber string
	Notes       string
}

type Song struct {
	ID   uuid.UUID
	Meta Metadata

	// MultiRests is the song-wide permission to collapse empty bars;
	// each view may still turn it off.
	MultiRests bool

	bars   []*Bar
	tracks []*Track
	views  []*ScoreView
	tempo  []TempoMarker
}

// NewSong returns an empty song with a fresh id and one view over all
// tracks.
func NewSong() *Song {
	s := &Song{ID: uuid.New(), MultiRests: true}
	s.views = []*ScoreView{NewScoreView("Score")}
	return s
}

func (s *Song) BarCount() int {
	if s == nil {
		return 0
	}
	return len(s.bars)
}

func (s *Song) Bar(i int) *Bar {
	if s == nil || i < 0 || i >= len(s.bars) {
		return nil
	}
	return s.bars[i]
}

// Bars returns the bars in order; the slice is a copy.
func (s *Song) Bars() []*Bar {
	return append([]*Bar(nil), s.bars...)
}

func (s *Song) TrackCount() int {
	if s == nil {
		return 0
	}
	return len(s.tracks)
}

func (s *Song) Track(i int) *Track {
	if s == nil || i < 0 || i >= len(s.tracks) {
		return nil
	}
	return s.tracks[i]
}

func (s *Song) Tracks() []*Track {
	return append([]*Track(nil), s.tracks...)
}

// InsertBar adds b at idx and gives every voice of every track a new
// empty phrase at the same position.
func (s *Song) InsertBar(b *Bar, idx int) error {
	if b == nil {
		return errs.Precondition("cannot insert a nil bar")
	}
	if b.song != nil {
		return errs.Precondition("bar already belongs to a song")
	}
	if idx < 0 || idx > len(s.bars) {
		return errs.Precondition("bar index %d out of range [0, %d]", idx, len(s.bars))
	}
	s.bars = append(s.bars, nil)
	copy(s.bars[idx+1:], s.bars[idx:])
	s.bars[idx] = b
	b.song = s
	s.reindexBars()

	for _, t := range s.tracks {
		for _, v := range t.voices {
			v.insertPhrase(NewPhrase(), idx)
		}
		t.shiftBars(idx, 1)
	}
	s.shiftTempo(idx, 1)
	return nil
}

// AppendBar is InsertBar at the end.
func (s *Song) AppendBar(b *Bar) error {
	return s.InsertBar(b, len(s.bars))
}

// RemoveBar deletes the bar and the matching phrase of every voice.
func (s *Song) RemoveBar(idx int) error {
	if len(s.bars) == 0 {
		return errs.Precondition("cannot remove a bar from an empty song")
	}
	if idx < 0 || idx >= len(s.bars) {
		return errs.Precondition("bar index %d out of range [0, %d)", idx, len(s.bars))
	}
	s.bars[idx].song = nil
	s.bars = append(s.bars[:idx], s.bars[idx+1:]...)
	s.reindexBars()

	for _, t := range s.tracks {
		for _, v := range t.voices {
			v.removePhrase(idx)
		}
		t.dropBar(idx)
	}
	s.dropTempo(idx)
	return nil
}

func (s *Song) reindexBars() {
	for i, b := range s.bars {
		b.index = i
	}
}

// InsertTrack adds t at idx. A track without phrases is filled with one
// empty phrase per bar; otherwise every voice must already match the
// bar count. Views that showed every track also show the new one.
func (s *Song) InsertTrack(t *Track, idx int) error {
	if t == nil {
		return errs.Precondition("cannot insert a nil track")
	}
	if t.song != nil {
		return errs.Precondition("track already belongs to a song")
	}
	if idx < 0 || idx > len(s.tracks) {
		return errs.Precondition("track index %d out of range [0, %d]", idx, len(s.tracks))
	}
	for _, v := range t.voices {
		switch len(v.phrases) {
		case len(s.bars):
		case 0:
			for i := 0; i < len(s.bars); i++ {
				v.insertPhrase(NewPhrase(), i)
			}
		default:
			return errs.Precondition("voice %d has %d phrases, song has %d bars", v.index, len(v.phrases), len(s.bars))
		}
	}

	full := make([]bool, len(s.views))
	for i, view := range s.views {
		full[i] = view.showsAll(len(s.tracks))
		view.shiftTracks(idx, 1)
	}

	s.tracks = append(s.tracks, nil)
	copy(s.tracks[idx+1:], s.tracks[idx:])
	s.tracks[idx] = t
	t.song = s
	s.reindexTracks()

	for i, view := range s.views {
		if full[i] {
			view.addTrack(idx)
		}
	}
	for _, v := range t.voices {
		for _, p := range v.phrases {
			p.Invalidate()
		}
	}
	return nil
}

func (s *Song) AppendTrack(t *Track) error {
	return s.InsertTrack(t, len(s.tracks))
}

// RemoveTrack deletes the track and drops it from every view.
func (s *Song) RemoveTrack(idx int) error {
	if idx < 0 || idx >= len(s.tracks) {
		return errs.Precondition("track index %d out of range [0, %d)", idx, len(s.tracks))
	}
	s.tracks[idx].song = nil
	s.tracks = append(s.tracks[:idx], s.tracks[idx+1:]...)
	s.reindexTracks()
	for _, view := range s.views {
		view.removeTrack(idx)
	}
	return nil
}

func (s *Song) reindexTracks() {
	for i, t := range s.tracks {
		t.index = i
	}
}

func (s *Song) ViewCount() int {
	if s == nil {
		return 0
	}
	return len(s.views)
}

func (s *Song) View(i int) *ScoreView {
	if s == nil || i < 0 || i >= len(s.views) {
		return nil
	}
	return s.views[i]
}

func (s *Song) Views() []*ScoreView {
	return append([]*ScoreView(nil), s.views...)
}

func (s *Song) InsertView(v *ScoreView, idx int) error {
	if v == nil {
		return errs.Precondition("cannot insert a nil view")
	}
	if idx < 0 || idx > len(s.views) {
		return errs.Precondition("view index %d out of range [0, %d]", idx, len(s.views))
	}
	s.views = append(s.views, nil)
	copy(s.views[idx+1:], s.views[idx:])
	s.views[idx] = v
	return nil
}

// RemoveView keeps at least one view in the song.
func (s *Song) RemoveView(idx int) error {
	if len(s.views) <= 1 {
		return errs.Precondition("a song keeps at least one view")
	}
	if idx < 0 || idx >= len(s.views) {
		return errs.Precondition("view index %d out of range [0, %d)", idx, len(s.views))
	}
	s.views = append(s.views[:idx], s.views[idx+1:]...)
	return nil
}

// IsBarEmpty reports whether every phrase of the given tracks at bar i
// is empty or rest-only. A nil track list means all tracks.
func (s *Song) IsBarEmpty(i int, tracks []int) bool {
	check := func(t *Track) bool {
		for _, v := range t.voices {
			if p := v.Phrase(i); p != nil && !p.IsRest() {
				return false
			}
		}
		return true
	}
	if tracks == nil {
		for _, t := range s.tracks {
			if !check(t) {
				return false
			}
		}
		return true
	}
	for _, ti := range tracks {
		if t := s.Track(ti); t != nil && !check(t) {
			return false
		}
	}
	return true
}

// Phrases visits every phrase, track by track, voice by voice.
func (s *Song) Phrases(fn func(t *Track, v *Voice, p *Phrase)) {
	for _, t := range s.tracks {
		for _, v := range t.voices {
			for _, p := range v.phrases {
				fn(t, v, p)
			}
		}
	}
}

// InvalidateBar marks every phrase at bar i stale.
func (s *Song) InvalidateBar(i int) {
	for _, t := range s.tracks {
		for _, v := range t.voices {
			if p := v.Phrase(i); p != nil {
				p.Invalidate()
			}
		}
	}
}
