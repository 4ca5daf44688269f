package model

import "github.com/jsphweid/engraver/theory"

// computeTuplets flags complete runs of chords sharing a tuplet ratio.
// A run is complete when it holds as many chords as the ratio's
// numerator; a ratio change or a plain chord abandons it.
func (p *Phrase) computeTuplets() {
	var run []*Chord
	var ratio theory.Tuplet
	for _, c := range p.chords {
		c.cache.tuplet = 0
		if c.Tuplet.Trivial() {
			run = nil
			continue
		}
		if len(run) > 0 && c.Tuplet != ratio {
			run = nil
		}
		if len(run) == 0 {
			ratio = c.Tuplet
		}
		run = append(run, c)
		if len(run) < int(ratio.Num) {
			continue
		}
		for i, rc := range run {
			switch i {
			case 0:
				rc.cache.tuplet = TupletStart
			case len(run) - 1:
				rc.cache.tuplet = TupletEnd
			default:
				rc.cache.tuplet = TupletGrouping
			}
		}
		if len(run) == 1 {
			run[0].cache.tuplet = TupletStart | TupletEnd
		}
		run = nil
	}
}
