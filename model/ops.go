package model

import (
	"github.com/jsphweid/engraver/errs"
	"github.com/jsphweid/engraver/theory"
)

// Editing operations take already resolved references and leave the
// song structurally valid; callers refresh afterwards.

// CreateBar inserts an empty bar at idx, taking meter, key and beaming
// from the previous bar (or the next when inserting at the front).
func CreateBar(s *Song, idx int) (*Bar, error) {
	if idx < 0 || idx > s.BarCount() {
		return nil, errs.Precondition("bar index %d out of range [0, %d]", idx, s.BarCount())
	}
	b := NewBar(theory.CommonTime, theory.KeySignature{})
	like := s.Bar(idx - 1)
	if like == nil {
		like = s.Bar(idx)
	}
	if like != nil {
		b.TimeSignature = like.TimeSignature
		b.Key = like.Key
		b.Beaming = like.Beaming
	}
	if err := s.InsertBar(b, idx); err != nil {
		return nil, err
	}
	return b, nil
}

// DuplicateBarRange copies bars [first, last] with all their phrases and
// inserts the copies right after last.
func DuplicateBarRange(s *Song, first, last int) error {
	if s.BarCount() == 0 {
		return errs.Precondition("cannot duplicate bars of an empty song")
	}
	if first < 0 || last >= s.BarCount() || first > last {
		return errs.Precondition("bar range [%d, %d] invalid for %d bars", first, last, s.BarCount())
	}
	n := last - first + 1
	for k := 0; k < n; k++ {
		src, dst := first+k, last+1+k
		if err := s.InsertBar(s.Bar(src).Clone(), dst); err != nil {
			return err
		}
		for _, t := range s.tracks {
			for _, v := range t.voices {
				v.ReplacePhrase(dst, v.Phrase(src).Clone())
			}
		}
	}
	return nil
}

// SetTimeSignature changes bar idx and the following bars that shared
// its previous signature.
func SetTimeSignature(s *Song, idx int, ts theory.TimeSignature) error {
	b := s.Bar(idx)
	if b == nil {
		return errs.Precondition("bar index %d out of range", idx)
	}
	ts = ts.Normalize()
	if !ts.Valid() {
		return errs.Precondition("invalid time signature %s", ts)
	}
	old := b.TimeSignature
	for i := idx; i < s.BarCount(); i++ {
		cur := s.Bar(i)
		if i > idx && cur.TimeSignature != old {
			break
		}
		cur.TimeSignature = ts
		s.InvalidateBar(i)
	}
	return nil
}

// SetKeySignature changes bar idx and the following bars that shared its
// previous key.
func SetKeySignature(s *Song, idx int, key theory.KeySignature) error {
	b := s.Bar(idx)
	if b == nil {
		return errs.Precondition("bar index %d out of range", idx)
	}
	if !key.Valid() {
		return errs.Precondition("invalid key signature %s", key)
	}
	old := b.Key
	for i := idx; i < s.BarCount(); i++ {
		cur := s.Bar(i)
		if i > idx && cur.Key != old {
			break
		}
		cur.Key = key
		s.InvalidateBar(i)
	}
	return nil
}

func SetBeaming(s *Song, idx int, p theory.BeamingPattern) error {
	b := s.Bar(idx)
	if b == nil {
		return errs.Precondition("bar index %d out of range", idx)
	}
	b.Beaming = p
	s.InvalidateBar(idx)
	return nil
}

// SetClef places a clef change for one hand of a track and invalidates
// the hand's phrases from that bar on.
func SetClef(t *Track, hand, bar, tick int, c theory.Clef) error {
	if hand < 0 || hand >= Hands {
		return errs.Precondition("hand %d out of range", hand)
	}
	if t.song == nil || t.song.Bar(bar) == nil {
		return errs.Precondition("bar index %d out of range", bar)
	}
	if !c.Valid() {
		return errs.Precondition("unknown clef %d", c)
	}
	t.setClef(hand, ClefChange{Bar: bar, Tick: tick, Clef: c})
	for _, v := range t.voices {
		if t.StaffHand(v.index) != hand {
			continue
		}
		for i := bar; i < len(v.phrases); i++ {
			v.phrases[i].Invalidate()
		}
	}
	return nil
}

// SetTuning replaces a fretted track's strings. Notes on strings that no
// longer exist are dropped by the next refresh.
func SetTuning(t *Track, tuning []uint8) error {
	if t.Type != TrackFretted {
		return errs.Precondition("track %d is not fretted", t.index)
	}
	return t.setTuning(tuning)
}
