package model

// windowAt finds the beam window containing tick. The bar's windows repeat
// when a phrase runs past the nominal bar length.
func windowAt(windows []int, tick int) (idx, end int) {
	if len(windows) == 0 {
		return 0, int(^uint(0) >> 1)
	}
	start := 0
	for i := 0; ; i++ {
		l := windows[i%len(windows)]
		if l <= 0 {
			return i, int(^uint(0) >> 1)
		}
		if tick < start+l {
			return i, start + l
		}
		start += l
	}
}

// computeBeams groups consecutive short chords that start and end inside
// one beam window. Rests may sit inside a group but never start or end it.
func (p *Phrase) computeBeams(bar *Bar) {
	windows := bar.Windows()
	var run []*Chord
	runWindow := -1

	flush := func() {
		for len(run) > 0 && run[0].IsRest() {
			run = run[1:]
		}
		for len(run) > 0 && run[len(run)-1].IsRest() {
			run = run[:len(run)-1]
		}
		if len(run) >= 2 {
			for i, c := range run {
				switch {
				case i == 0:
					c.cache.beam = BeamStart
				case i == len(run)-1:
					c.cache.beam = BeamEnd
				case !c.IsRest():
					c.cache.beam = BeamGroup
				}
			}
		}
		run = nil
	}

	for _, c := range p.chords {
		c.cache.beam = BeamNone
		w, end := windowAt(windows, c.cache.offset)
		if len(run) > 0 && (w != runWindow || c.Flags.Has(ChordBreakBeam)) {
			flush()
		}
		if !c.Value.ShorterThanQuarter() || c.End() > end {
			flush()
			continue
		}
		if len(run) == 0 {
			runWindow = w
		}
		run = append(run, c)
	}
	flush()
}
