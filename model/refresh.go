package model

import (
	"github.com/jsphweid/engraver/debug"
	"github.com/jsphweid/engraver/errs"
	"github.com/jsphweid/engraver/midi"
	"github.com/jsphweid/engraver/notation"
	"github.com/jsphweid/engraver/theory"
)

// NoSibling is RefreshResult.Affected when no other phrase was touched.
const NoSibling = -1

type RefreshOptions struct {
	// FixTies heals tie destinations against the previous chord.
	FixTies bool
}

// RefreshResult names a sibling phrase of the same voice whose content
// was changed by tie healing and needs its own refresh.
type RefreshResult struct {
	Affected int
}

// Refresh recomputes every cached field of the phrase: fretted pitches,
// offsets and durations, staff representations, beams, tuplet groups
// and, when asked, tie flags.
func (p *Phrase) Refresh(opts RefreshOptions) (RefreshResult, error) {
	res := RefreshResult{Affected: NoSibling}
	track, bar := p.Track(), p.Bar()
	if track == nil || bar == nil {
		return res, errs.Precondition("phrase %d is not attached to a song", p.index)
	}

	if track.Type == TrackFretted {
		p.applyTuning(track, bar)
	}
	p.computeOffsets()
	p.compile(track, bar)
	p.computeBeams(bar)
	p.computeTuplets()

	if opts.FixTies {
		changed, affected := p.fixTies(track)
		if changed {
			if track.Type == TrackFretted {
				p.applyTuning(track, bar)
			}
			p.compile(track, bar)
		}
		if affected {
			res.Affected = p.index - 1
		}
	}

	for _, c := range p.chords {
		c.cache.valid = true
		for _, n := range c.notes {
			n.cache.valid = true
		}
	}
	p.cache.valid = true
	return res, nil
}

// Refresh refreshes every phrase of the song, re-refreshing a previous
// phrase when tie healing reports it. It returns the number of phrase
// refreshes performed.
func (s *Song) Refresh(opts RefreshOptions) (int, error) {
	count := 0
	for _, t := range s.tracks {
		for _, v := range t.voices {
			for _, p := range v.phrases {
				res, err := p.Refresh(opts)
				if err != nil {
					return count, err
				}
				count++
				if sib := v.Phrase(res.Affected); sib != nil {
					if _, err := sib.Refresh(RefreshOptions{}); err != nil {
						return count, err
					}
					count++
				}
			}
		}
	}
	debug.Log("refresh", "song %s: %d phrase refreshes", s.ID, count)
	return count, nil
}

// applyTuning drops notes on strings the track no longer has and derives
// the pitch of the rest from string, capo and fret.
func (p *Phrase) applyTuning(t *Track, bar *Bar) {
	count := t.StringCount()
	for _, c := range p.chords {
		for i := len(c.notes) - 1; i >= 0; i-- {
			n := c.notes[i]
			if int(n.String) >= count {
				debug.Log("refresh", "bar %d chord %d: dropping note on string %d of %d", p.index, c.index, n.String, count)
				c.RemoveNote(i)
				continue
			}
			open, _ := t.StringPitch(int(n.String))
			n.Pitch = bar.Key.Spell(open + int(n.Fret))

			graces := n.graces[:0]
			for _, g := range n.graces {
				open, ok := t.StringPitch(int(g.String))
				if !ok {
					continue
				}
				g.Pitch = bar.Key.Spell(open + int(g.Fret))
				graces = append(graces, g)
			}
			n.graces = graces
		}
	}
}

// computeOffsets places tuplet members from the start of their run, so
// a complete group spans exactly its nominal length whatever the ratio.
func (p *Phrase) computeOffsets() {
	tick := 0
	var ratio theory.Tuplet
	start, plain := 0, 0
	for _, c := range p.chords {
		if c.Tuplet.Trivial() || c.Tuplet != ratio {
			ratio = c.Tuplet
			start, plain = tick, 0
		}
		c.cache.offset = tick
		if ratio.Trivial() {
			c.cache.duration = c.NominalDuration()
		} else {
			plain += theory.DurationTicks(c.Value, int(c.Dots), theory.Tuplet{})
			c.cache.duration = start + plain*int(ratio.Den)/int(ratio.Num) - tick
		}
		tick += c.cache.duration
	}
	p.cache.duration = tick
}

func (p *Phrase) contextFor(t *Track, bar *Bar, tick int) (concert, transposed notation.Context) {
	clef := t.ClefAt(t.StaffHand(p.voice.index), bar.index, tick)
	concert = notation.Context{Clef: clef, Key: bar.Key}
	transposed = notation.Context{Clef: clef, Key: bar.Key.Transpose(t.Transpose), Transpose: t.Transpose}
	return concert, transposed
}

// compile fills both representation records of every note. A clef
// change inside the bar restarts the accidental state.
func (p *Phrase) compile(t *Track, bar *Bar) {
	var compilers [2]*notation.Compiler
	cc, tc := p.contextFor(t, bar, 0)
	compilers[Concert] = notation.NewCompiler(cc)
	compilers[Transposed] = notation.NewCompiler(tc)

	for _, c := range p.chords {
		cc, tc := p.contextFor(t, bar, c.cache.offset)
		if cc.Clef != compilers[Concert].Context().Clef {
			compilers[Concert].Reset(cc)
			compilers[Transposed].Reset(tc)
		}
		for _, n := range c.notes {
			n.cache.repr = [2]notation.Repr{}
			n.cache.graces = [2][]notation.Repr{}
		}
		if c.IsRest() {
			continue
		}

		switch t.Type {
		case TrackPercussion:
			compileDrums(c)
		case TrackStandard, TrackFretted:
			o := p.OttaviaAt(c.cache.offset)
			for state, comp := range compilers {
				compileChord(c, comp, o, state)
			}
		default:
			errs.Assert(false, "track %d has unknown type %d", t.index, t.Type)
		}
	}
}

type slot struct {
	note  *Note
	grace int
}

func inputs(c *Chord) ([]notation.Input, []slot) {
	var in []notation.Input
	var slots []slot
	for _, n := range c.notes {
		in = append(in, notation.Input{Pitch: n.Pitch, Dead: n.IsDead()})
		slots = append(slots, slot{n, -1})
		for gi, g := range n.graces {
			in = append(in, notation.Input{Pitch: g.Pitch, Grace: true, Dead: g.Flags.Has(GraceDead)})
			slots = append(slots, slot{n, gi})
		}
	}
	return in, slots
}

func storeReprs(slots []slot, reprs []notation.Repr, state int) {
	for i, s := range slots {
		if s.grace < 0 {
			s.note.cache.repr[state] = reprs[i]
			continue
		}
		if s.note.cache.graces[state] == nil {
			s.note.cache.graces[state] = make([]notation.Repr, len(s.note.graces))
		}
		s.note.cache.graces[state][s.grace] = reprs[i]
	}
}

func compileChord(c *Chord, comp *notation.Compiler, o theory.Ottavia, state int) {
	in, slots := inputs(c)
	storeReprs(slots, comp.Compile(in, o), state)
}

func compileDrums(c *Chord) {
	in, slots := inputs(c)
	keys := make([]uint8, len(in))
	grace := make([]bool, len(in))
	for i, x := range in {
		keys[i] = midi.ClampKey(x.Pitch.MIDI())
		grace[i] = x.Grace
	}
	reprs := notation.CompileDrums(keys, grace)
	storeReprs(slots, reprs, Concert)
	storeReprs(slots, reprs, Transposed)
}
