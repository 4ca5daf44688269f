package layout

import (
	"github.com/jsphweid/engraver/errs"
	"github.com/jsphweid/engraver/model"
)

// span is a run of bars drawn as one slice.
type span struct {
	first int
	last  int
}

const belowFlags = model.BarJumps | model.BarToCoda | model.BarToDoubleCoda | model.BarFine

func (s *Score) breaksAfter(bar int) bool {
	return s.Song.Bar(bar).Flags.Has(model.BarSystemBreak | model.BarPageBreak)
}

// spans groups the bars into slices. With collapse set, runs of
// collapsible bars become one multi-rest slice.
func (s *Score) spans(collapse bool) []span {
	var out []span
	n := s.Song.BarCount()
	for b := 0; b < n; b++ {
		sp := span{b, b}
		for collapse && sp.last+1 < n && s.joins(sp.last) {
			sp.last++
		}
		out = append(out, sp)
		b = sp.last
	}
	return out
}

// joins reports whether bar b and the next one can share a multi-rest.
func (s *Score) joins(b int) bool {
	cur, next := s.Metrics[b], s.Metrics[b+1]
	if !cur.Collapsible || !next.Collapsible || s.breaksAfter(b) {
		return false
	}
	bar, nb := s.Song.Bar(b), s.Song.Bar(b+1)
	if bar.Flags.Has(model.BarRepeatEnd|model.BarDoubleBar|belowFlags) || bar.AlternateEndings != 0 {
		return false
	}
	if nb.Flags.Has(model.BarRepeatStart|model.BarTargets) || nb.Rehearsal != "" || nb.AlternateEndings != 0 {
		return false
	}
	return next.LeadMiddle == 0 && len(s.Song.TempoMarkersIn(b+1)) == 0
}

// newSystem builds and appends a system over the given spans.
func (s *Score) newSystem(spans []span) *System {
	sys := &System{Index: len(s.Systems), Stretch: 1}
	for _, sp := range spans {
		m := s.Metrics[sp.first]
		w := m.Width(len(sys.Slices) == 0)
		sys.Slices = append(sys.Slices, &Slice{FirstBar: sp.first, LastBar: sp.last, Metrics: m, Ideal: w, Width: w})
	}
	if last := s.Song.Bar(sys.LastBar()); last != nil {
		sys.ForcedBreak = s.breaksAfter(last.Index())
		sys.PageBreak = last.Flags.Has(model.BarPageBreak)
	}
	s.buildStaves(sys)
	s.findBands(sys)
	s.stack(sys)
	s.Systems = append(s.Systems, sys)
	return sys
}

func (s *Score) buildStaves(sys *System) {
	first, last := sys.FirstBar(), sys.LastBar()
	st := s.Style
	for _, t := range s.Tracks {
		switch t.Type {
		case model.TrackStandard, model.TrackFretted, model.TrackPercussion:
		default:
			errs.Assert(false, "track %d has unknown type %d", t.Index(), t.Type)
			continue
		}
		for h := 0; h < t.StandardStaffCount(); h++ {
			sys.Staves = append(sys.Staves, &Staff{
				Track:  t,
				Kind:   StaffStandard,
				Hand:   h,
				Lines:  5,
				Slurs:  t.SlursIn(h, first, last),
				Top:    st.StaffTop,
				Height: 4 * st.LineSpacing,
				Bottom: st.StaffBottom,
			})
		}
		if t.HasTablature() {
			staff := &Staff{
				Track:  t,
				Kind:   StaffTablature,
				Lines:  t.StringCount(),
				Top:    st.StaffTop,
				Height: float64(t.StringCount()-1) * st.TabLineSpacing,
				Bottom: st.StaffBottom,
			}
			if !t.HasStandardStaves() {
				staff.Slurs = t.SlursIn(0, first, last)
			}
			sys.Staves = append(sys.Staves, staff)
		}
	}
}

// findBands scans the system's bars for content drawn above or below
// the staves.
func (s *Score) findBands(sys *System) {
	var seen [bandCount]bool
	for b := sys.FirstBar(); b <= sys.LastBar(); b++ {
		bar := s.Song.Bar(b)
		seen[BandTempo] = seen[BandTempo] || len(s.Song.TempoMarkersIn(b)) > 0
		seen[BandTargets] = seen[BandTargets] || bar.Flags.Has(model.BarTargets)
		seen[BandRehearsal] = seen[BandRehearsal] || bar.Rehearsal != ""
		seen[BandEndings] = seen[BandEndings] || bar.AlternateEndings != 0
		seen[BandRepeatCount] = seen[BandRepeatCount] || (bar.Flags.Has(model.BarRepeatEnd) && bar.RepeatCount > 2)
		seen[BandChordNames] = seen[BandChordNames] || len(bar.ChordNames()) > 0 || s.hasDiagrams(b)
		seen[BandJumps] = seen[BandJumps] || bar.Flags.Has(belowFlags)
	}
	for b, ok := range seen {
		switch {
		case !ok:
		case Band(b) == BandJumps:
			sys.BandsBelow = append(sys.BandsBelow, Band(b))
		default:
			sys.BandsAbove = append(sys.BandsAbove, Band(b))
		}
	}
}

func (s *Score) hasDiagrams(bar int) bool {
	for _, t := range s.Tracks {
		for _, v := range t.Voices() {
			if len(v.Phrase(bar).Diagrams()) > 0 {
				return true
			}
		}
	}
	return false
}

// stack places the staves top-down below the bands above.
func (s *Score) stack(sys *System) {
	st := s.Style
	y := float64(len(sys.BandsAbove)) * st.BandHeight
	sys.StaffY = y
	for _, staff := range sys.Staves {
		staff.Y = y + staff.Top
		y += staff.Span()
	}
	if len(sys.Staves) == 0 {
		y += st.StaffTop + st.StaffBottom
	}
	sys.Height = y + float64(len(sys.BandsBelow))*st.BandHeight
}

// stretch scales the slices to width. When capped the factor never
// exceeds the style's MaxTrailingStretch.
func (s *Score) stretch(sys *System, width float64, capped bool) {
	ideal := 0.0
	for _, sl := range sys.Slices {
		ideal += sl.Ideal
	}
	factor := 1.0
	if ideal > 0 && width > 0 {
		factor = width / ideal
	}
	if capped && factor > s.Style.MaxTrailingStretch {
		factor = s.Style.MaxTrailingStretch
	}
	x := 0.0
	for _, sl := range sys.Slices {
		sl.X = x
		sl.Width = sl.Ideal * factor
		x += sl.Width
	}
	sys.Width = x
	sys.Stretch = factor
}

// paginate assigns systems to pages top-down, reusing pages from earlier
// layouts and dropping trailing empty ones.
func (s *Score) paginate() {
	st := s.Style
	pages := []*Page{s.takePage(0)}
	page := pages[0]
	for i, sys := range s.Systems {
		gap := 0.0
		if len(page.Systems) > 0 {
			gap = st.SystemSpacing
		}
		forced := i > 0 && s.Systems[i-1].PageBreak
		if len(page.Systems) > 0 && (forced || page.used+gap+sys.Height > st.ContentHeight()) {
			page = s.takePage(len(pages))
			pages = append(pages, page)
			gap = 0
		}
		sys.Y = page.used + gap
		sys.Page = page.Index
		page.used = sys.Y + sys.Height
		page.Systems = append(page.Systems, sys)
	}
	for len(pages) > 0 && len(pages[len(pages)-1].Systems) == 0 {
		pages = pages[:len(pages)-1]
	}
	s.Pages = pages
}

func (s *Score) takePage(i int) *Page {
	if i < len(s.pool) {
		s.pool[i].reset(i, s.Style)
		return s.pool[i]
	}
	p := &Page{}
	p.reset(i, s.Style)
	s.pool = append(s.pool, p)
	return p
}
