package layout

import (
	"github.com/jsphweid/engraver/metrics"
	"github.com/jsphweid/engraver/model"
)

type StaffKind uint8

const (
	StaffStandard StaffKind = iota
	StaffTablature
)

// Staff is one notational line of a track inside a system. Y is relative
// to the top of the system.
type Staff struct {
	Track *model.Track
	Kind  StaffKind
	Hand  int
	Lines int
	Slurs []model.Slur

	Y      float64
	Top    float64
	Height float64
	Bottom float64
}

// Span is the vertical room the staff takes including its spacing.
func (s *Staff) Span() float64 { return s.Top + s.Height + s.Bottom }

// Slice is the horizontal part of a system for one bar, or for a run of
// empty bars collapsed into a multi-rest.
type Slice struct {
	FirstBar int
	LastBar  int
	Metrics  metrics.BarMetrics

	X     float64
	Width float64
	// Ideal is the unstretched width.
	Ideal float64
}

func (s *Slice) BarCount() int       { return s.LastBar - s.FirstBar + 1 }
func (s *Slice) MultiRest() bool     { return s.BarCount() > 1 }
func (s *Slice) Contains(b int) bool { return b >= s.FirstBar && b <= s.LastBar }

type Band uint8

const (
	BandTempo Band = iota
	BandTargets
	BandRehearsal
	BandEndings
	BandRepeatCount
	BandChordNames
	BandJumps
)

const bandCount = int(BandJumps) + 1

var bandNames = []string{"tempo", "targets", "rehearsal", "endings", "repeatCount", "chordNames", "jumps"}

func (b Band) String() string { return bandNames[b%Band(len(bandNames))] }

type System struct {
	Index  int
	Slices []*Slice
	Staves []*Staff

	BandsAbove []Band
	BandsBelow []Band

	// Y is relative to the top of the page content area.
	Y      float64
	Width  float64
	Height float64
	// StaffY is where the first staff starts, below the bands above.
	StaffY  float64
	Stretch float64
	Page    int

	ForcedBreak bool
	PageBreak   bool
}

func (s *System) FirstBar() int {
	if len(s.Slices) == 0 {
		return -1
	}
	return s.Slices[0].FirstBar
}

func (s *System) LastBar() int {
	if len(s.Slices) == 0 {
		return -1
	}
	return s.Slices[len(s.Slices)-1].LastBar
}

func (s *System) BarCount() int {
	if len(s.Slices) == 0 {
		return 0
	}
	return s.LastBar() - s.FirstBar() + 1
}

func (s *System) Contains(bar int) bool {
	return len(s.Slices) > 0 && bar >= s.FirstBar() && bar <= s.LastBar()
}

// SliceForBar returns the slice drawing bar, or nil.
func (s *System) SliceForBar(bar int) *Slice {
	for _, sl := range s.Slices {
		if sl.Contains(bar) {
			return sl
		}
	}
	return nil
}

func (s *System) Staff(i int) *Staff {
	if s == nil || i < 0 || i >= len(s.Staves) {
		return nil
	}
	return s.Staves[i]
}

func (s *System) HasBandAbove(b Band) bool { return hasBand(s.BandsAbove, b) }
func (s *System) HasBandBelow(b Band) bool { return hasBand(s.BandsBelow, b) }

func hasBand(list []Band, b Band) bool {
	for _, x := range list {
		if x == b {
			return true
		}
	}
	return false
}

type Page struct {
	Index   int
	Systems []*System
	Width   float64
	Height  float64
	used    float64
}

func (p *Page) reset(i int, st Style) {
	p.Index = i
	p.Systems = p.Systems[:0]
	p.Width, p.Height = st.PageWidth, st.PageHeight
	p.used = 0
}
