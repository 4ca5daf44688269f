// Package layout arranges a refreshed song into systems and pages and
// paints the result on an abstract drawing surface.
package layout

import (
	"sort"

	"github.com/jsphweid/engraver/debug"
	"github.com/jsphweid/engraver/errs"
	"github.com/jsphweid/engraver/metrics"
	"github.com/jsphweid/engraver/model"
)

// Score is the rendered form of one view of a song. It is rebuilt by
// Layout and must not be read while the song is being refreshed.
type Score struct {
	Song     *model.Song
	View     *model.ScoreView
	Style    Style
	Strategy Strategy

	Tracks  []*model.Track
	Metrics []metrics.BarMetrics
	Systems []*System
	Pages   []*Page

	calc *metrics.Calculator
	pool []*Page
}

// NewScore resolves the view's style and strategy. A nil view means the
// song's first view; a nil registry means DefaultRegistry.
func NewScore(song *model.Song, view *model.ScoreView, reg *Registry) (*Score, error) {
	if song == nil {
		return nil, errs.Precondition("cannot lay out a nil song")
	}
	if view == nil {
		view = song.View(0)
	}
	if view == nil {
		return nil, errs.Precondition("song has no score view")
	}
	if reg == nil {
		reg = DefaultRegistry()
	}
	style := reg.Resolve(view.Style)
	bars := view.BarsPerSystem
	if bars <= 0 {
		bars = style.BarsPerSystem
	}
	strategy, err := ParseStrategy(view.Strategy, bars)
	if err != nil {
		return nil, err
	}
	sc := &Score{
		Song:     song,
		View:     view,
		Style:    style,
		Strategy: strategy,
	}
	sc.calc = metrics.NewCalculator(sc.params(), nil)
	return sc, nil
}

// params sizes the calculator from the style for the view's
// representation state.
func (s *Score) params() metrics.Params {
	p := s.Style.MetricsParams()
	p.State = s.View.State()
	return p
}

// SetSpacer replaces the per-chord spacing routine.
func (s *Score) SetSpacer(sp metrics.Spacer) {
	s.calc = metrics.NewCalculator(s.params(), sp)
}

// Layout rebuilds systems and pages. The song must be refreshed.
func (s *Score) Layout() error {
	s.Tracks = s.View.VisibleTracks(s.Song)
	s.Systems = nil
	s.Pages = nil
	if err := s.Strategy.CalculateSystems(s); err != nil {
		return err
	}
	if err := s.Strategy.DispatchSystems(s); err != nil {
		return err
	}
	debug.Log("layout", "view %q (%s): %d bars, %d systems, %d pages",
		s.View.Name, s.Strategy.Kind(), s.Song.BarCount(), len(s.Systems), len(s.Pages))
	return nil
}

func (s *Score) System(i int) *System {
	if i < 0 || i >= len(s.Systems) {
		return nil
	}
	return s.Systems[i]
}

func (s *Score) Page(i int) *Page {
	if i < 0 || i >= len(s.Pages) {
		return nil
	}
	return s.Pages[i]
}

// SystemForBar returns the system drawing bar, or nil.
func (s *Score) SystemForBar(bar int) *System {
	i := sort.Search(len(s.Systems), func(i int) bool { return s.Systems[i].LastBar() >= bar })
	if i < len(s.Systems) && s.Systems[i].Contains(bar) {
		return s.Systems[i]
	}
	return nil
}

func (s *Score) measure() {
	s.Metrics = s.calc.All(s.Song, s.Tracks, s.View.MultiRestsEnabled(s.Song))
}
