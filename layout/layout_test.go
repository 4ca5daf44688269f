package layout

import (
	"fmt"
	"testing"

	"github.com/jsphweid/engraver/errs"
	"github.com/jsphweid/engraver/metrics"
	"github.com/jsphweid/engraver/model"
	"github.com/jsphweid/engraver/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSong builds bars of one whole note each; bars listed in empty stay
// without chords.
func newSong(t *testing.T, bars int, empty ...int) *model.Song {
	s := model.NewSong()
	tr := model.NewTrack("Lead", model.TrackStandard)
	require.NoError(t, s.AppendTrack(tr))
	skip := map[int]bool{}
	for _, e := range empty {
		skip[e] = true
	}
	for i := 0; i < bars; i++ {
		require.NoError(t, s.AppendBar(model.NewBar(theory.CommonTime, theory.KeySignature{})))
		if skip[i] {
			continue
		}
		c := model.NewChord(theory.Whole)
		require.NoError(t, c.AppendNote(model.NewNote(theory.Pitch{Step: theory.StepC, Octave: 5})))
		require.NoError(t, tr.Voice(0).Phrase(i).AppendChord(c))
	}
	return s
}

func layOut(t *testing.T, s *model.Song, reg *Registry) *Score {
	_, err := s.Refresh(model.RefreshOptions{FixTies: true})
	require.NoError(t, err)
	sc, err := NewScore(s, nil, reg)
	require.NoError(t, err)
	require.NoError(t, sc.Layout())
	return sc
}

func systemSizes(sc *Score) []int {
	var out []int
	for _, sys := range sc.Systems {
		out = append(out, sys.BarCount())
	}
	return out
}

func TestEmptySongHasNoSystems(t *testing.T) {
	for _, name := range strategyNames {
		t.Run(name, func(t *testing.T) {
			s := model.NewSong()
			s.View(0).Strategy = name
			sc := layOut(t, s, nil)
			assert.Empty(t, sc.Systems)
			assert.Empty(t, sc.Pages)
			assert.Nil(t, sc.SystemForBar(0))
		})
	}
}

// narrowRegistry fits exactly two ideal bars per system.
func narrowRegistry(t *testing.T, s *model.Song) *Registry {
	_, err := s.Refresh(model.RefreshOptions{})
	require.NoError(t, err)
	st := DefaultStyle()
	all := metrics.NewCalculator(st.MetricsParams(), nil).All(s, s.Tracks(), true)
	limit := all[0].Width(true) + 1.25*all[1].Width(false)

	st.Name = "narrow"
	st.PageWidth = limit + st.MarginLeft + st.MarginRight
	reg := DefaultRegistry()
	reg.Register(st)
	s.View(0).Style = "narrow"
	return reg
}

func TestFlexibleFillsSystems(t *testing.T) {
	s := newSong(t, 5)
	sc := layOut(t, s, narrowRegistry(t, s))

	assert := assert.New(t)
	assert.Equal([]int{2, 2, 1}, systemSizes(sc))
	limit := sc.Style.ContentWidth()
	assert.InDelta(limit, sc.Systems[0].Width, 1e-6)
	assert.InDelta(limit, sc.Systems[1].Width, 1e-6)
	last := sc.Systems[2]
	assert.LessOrEqual(last.Stretch, sc.Style.MaxTrailingStretch)
	assert.Less(last.Width, limit)

	for i, sys := range sc.Systems {
		assert.Equal(i, sys.Index)
		x := 0.0
		for _, sl := range sys.Slices {
			assert.InDelta(x, sl.X, 1e-9)
			x += sl.Width
		}
	}
	assert.Same(sc.Systems[1], sc.SystemForBar(3))
	assert.Nil(sc.SystemForBar(5))
}

func TestFlexibleForcedBreak(t *testing.T) {
	s := newSong(t, 4)
	s.Bar(0).Flags |= model.BarSystemBreak
	sc := layOut(t, s, nil)

	assert := assert.New(t)
	assert.Equal([]int{1, 3}, systemSizes(sc))
	assert.True(sc.Systems[0].ForcedBreak)
	assert.LessOrEqual(sc.Systems[0].Stretch, sc.Style.MaxTrailingStretch)
}

func TestMultiRestCollapsing(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(s *model.Song)
		slices [][2]int
	}{
		{"collapsed", func(s *model.Song) {}, [][2]int{{0, 0}, {1, 4}, {5, 5}}},
		{"view disables", func(s *model.Song) { s.View(0).MultiRests = false },
			[][2]int{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}}},
		{"song disables", func(s *model.Song) { s.MultiRests = false },
			[][2]int{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}}},
		{"rehearsal splits", func(s *model.Song) { s.Bar(3).Rehearsal = "B" },
			[][2]int{{0, 0}, {1, 2}, {3, 4}, {5, 5}}},
		{"time change splits", func(s *model.Song) {
			require.NoError(t, model.SetTimeSignature(s, 2, theory.TimeSignature{Beats: 3, BeatValue: 4}))
		}, [][2]int{{0, 0}, {1, 1}, {2, 4}, {5, 5}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := newSong(t, 6, 1, 2, 3, 4)
			test.setup(s)
			s.View(0).Strategy = "horizontal"
			sc := layOut(t, s, nil)
			require.Len(t, sc.Systems, 1)
			var got [][2]int
			for _, sl := range sc.Systems[0].Slices {
				got = append(got, [2]int{sl.FirstBar, sl.LastBar})
			}
			assert.Equal(t, test.slices, got)
		})
	}
}

func TestFixedAndManual(t *testing.T) {
	tests := []struct {
		strategy string
		bars     int
		want     []int
	}{
		{"fixed", 0, []int{4, 4, 2}},
		{"fixed", 3, []int{3, 3, 3, 1}},
		{"manual", 0, []int{2, 4, 4}},
		{"manual", 5, []int{2, 5, 3}},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s/%d", test.strategy, test.bars), func(t *testing.T) {
			s := newSong(t, 10)
			s.Bar(1).Flags |= model.BarSystemBreak
			s.View(0).Strategy = test.strategy
			s.View(0).BarsPerSystem = test.bars
			sc := layOut(t, s, nil)
			assert.Equal(t, test.want, systemSizes(sc))
		})
	}
}

func TestHorizontalSizesPage(t *testing.T) {
	s := newSong(t, 12)
	s.View(0).Strategy = "horizontal"
	sc := layOut(t, s, nil)

	assert := assert.New(t)
	require.Len(t, sc.Systems, 1)
	require.Len(t, sc.Pages, 1)
	sys := sc.Systems[0]
	assert.Equal(12, sys.BarCount())
	assert.Equal(1.0, sys.Stretch)
	assert.Greater(sys.Width, sc.Style.ContentWidth())
	assert.InDelta(sys.Width+sc.Style.MarginLeft+sc.Style.MarginRight, sc.Pages[0].Width, 1e-9)
	assert.InDelta(sys.Height+sc.Style.MarginTop+sc.Style.MarginBottom, sc.Pages[0].Height, 1e-9)
}

func TestPagination(t *testing.T) {
	s := newSong(t, 40)
	s.View(0).Strategy = "fixed"
	s.View(0).BarsPerSystem = 2
	s.Bar(5).Flags |= model.BarPageBreak
	sc := layOut(t, s, nil)

	assert := assert.New(t)
	require.NotEmpty(t, sc.Pages)
	var seen []*System
	for i, p := range sc.Pages {
		assert.Equal(i, p.Index)
		require.NotEmpty(t, p.Systems)
		bottom := p.Systems[len(p.Systems)-1]
		if len(p.Systems) > 1 {
			assert.LessOrEqual(bottom.Y+bottom.Height, sc.Style.ContentHeight())
		}
		for _, sys := range p.Systems {
			assert.Equal(i, sys.Page)
		}
		seen = append(seen, p.Systems...)
	}
	assert.Equal(sc.Systems, seen)
	// bars 4 and 5 close the third system, so the fourth opens a page
	assert.Equal(0.0, sc.Systems[3].Y)
	assert.Equal(sc.Systems[2].Page+1, sc.Systems[3].Page)

	before := len(sc.Pages)
	for s.BarCount() > 6 {
		require.NoError(t, s.RemoveBar(s.BarCount()-1))
	}
	require.NoError(t, sc.Layout())
	assert.Less(len(sc.Pages), before)
	assert.Len(sc.Pages, 2)
}

func TestStavesAndBands(t *testing.T) {
	s := model.NewSong()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.AppendBar(model.NewBar(theory.CommonTime, theory.KeySignature{})))
	}
	piano := model.NewTrack("Piano", model.TrackStandard)
	piano.GrandStaff = true
	gtr := model.NewTrack("Guitar", model.TrackFretted)
	drums := model.NewTrack("Drums", model.TrackPercussion)
	for _, tr := range []*model.Track{piano, gtr, drums} {
		require.NoError(t, s.AppendTrack(tr))
	}
	require.NoError(t, piano.AddSlur(model.Slur{Voice: 2, StartBar: 0, EndBar: 1}))
	require.NoError(t, s.InsertTempoMarker(model.TempoMarker{Bar: 0, BPM: 96, BeatValue: theory.Quarter}))
	s.Bar(0).Rehearsal = "Intro"
	s.Bar(2).Flags |= model.BarDaCapo
	s.View(0).Strategy = "manual"
	s.Bar(0).Flags |= model.BarSystemBreak

	sc := layOut(t, s, nil)
	require.Len(t, sc.Systems, 2)
	first, second := sc.Systems[0], sc.Systems[1]

	assert := assert.New(t)
	require.Len(t, first.Staves, 5)
	kinds := []StaffKind{StaffStandard, StaffStandard, StaffStandard, StaffTablature, StaffStandard}
	for i, staff := range first.Staves {
		assert.Equal(kinds[i], staff.Kind, fmt.Sprintf("staff %d", i))
	}
	assert.Equal(1, first.Staves[1].Hand)
	assert.Len(first.Staves[1].Slurs, 1)
	assert.Empty(first.Staves[0].Slurs)
	assert.Equal(6, first.Staves[3].Lines)

	assert.Equal([]Band{BandTempo, BandRehearsal}, first.BandsAbove)
	assert.Empty(first.BandsBelow)
	assert.Empty(second.BandsAbove)
	assert.Equal([]Band{BandJumps}, second.BandsBelow)
	assert.True(first.HasBandAbove(BandRehearsal))
	assert.False(first.HasBandBelow(BandJumps))
	assert.True(second.HasBandBelow(BandJumps))

	st := sc.Style
	assert.InDelta(2*st.BandHeight+st.StaffTop, first.Staves[0].Y, 1e-9)
	for i := 1; i < len(first.Staves); i++ {
		prev := first.Staves[i-1]
		assert.InDelta(prev.Y+prev.Height+prev.Bottom+first.Staves[i].Top, first.Staves[i].Y, 1e-9)
	}
	assert.Greater(second.Y, first.Y)
	assert.Same(first.Staff(2), first.Staves[2])
	assert.Nil(first.Staff(9))
}

func TestViewWithoutTracksStillLaysOut(t *testing.T) {
	s := newSong(t, 3)
	s.View(0).Tracks = nil
	sc := layOut(t, s, nil)

	assert := assert.New(t)
	require.NotEmpty(t, sc.Systems)
	assert.Empty(sc.Systems[0].Staves)
	assert.Greater(sc.Systems[0].Height, 0.0)

	rec := &Recorder{}
	sc.Draw(rec)
	assert.Equal(0, rec.Count("line"))
}

func TestDraw(t *testing.T) {
	s := newSong(t, 8, 2, 3, 4)
	s.Bar(0).Rehearsal = "A"
	s.Bar(0).SetChordName(model.ChordName{Tick: 0, Name: "C"})
	sc := layOut(t, s, nil)

	rec := &Recorder{}
	sc.Draw(rec)
	assert := assert.New(t)
	assert.Equal(0, rec.Depth())
	assert.Equal(rec.Count("save"), rec.Count("restore"))
	assert.Equal(1, rec.Count("symbol"))
	assert.Equal(1, rec.Count("rect"))

	var texts []string
	for _, op := range rec.Ops {
		if op.Name == "text" {
			texts = append(texts, op.Text)
		}
	}
	assert.ElementsMatch([]string{"3", "A", "C"}, texts)

	slices := 0
	for _, sys := range sc.Systems {
		slices += len(sys.Slices)
	}
	assert.Equal(5*len(sc.Systems)+slices, rec.Count("line"))

	sc.Draw(NopSurface{})
}

type stateSpacer struct {
	states map[int]int
}

func (sp *stateSpacer) ChordSpacing(c *model.Chord, state int) metrics.Spacing {
	sp.states[state]++
	return metrics.Spacing{Left: 1, Right: 1}
}

func TestViewSelectsRepresentation(t *testing.T) {
	for _, written := range []bool{false, true} {
		t.Run(fmt.Sprintf("written=%v", written), func(t *testing.T) {
			s := newSong(t, 2)
			_, err := s.Refresh(model.RefreshOptions{FixTies: true})
			require.NoError(t, err)
			s.View(0).Written = written
			sc, err := NewScore(s, nil, nil)
			require.NoError(t, err)
			sp := &stateSpacer{states: map[int]int{}}
			sc.SetSpacer(sp)
			require.NoError(t, sc.Layout())

			want := model.Concert
			if written {
				want = model.Transposed
			}
			assert.Len(t, sp.states, 1)
			assert.Positive(t, sp.states[want])
		})
	}
}

func TestRegistry(t *testing.T) {
	reg := DefaultRegistry()
	assert := assert.New(t)
	assert.Equal([]string{CompactStyleName, DefaultStyleName}, reg.Names())
	assert.Equal(DefaultStyleName, reg.Resolve("missing").Name)

	reg.Register(Style{Name: "wide", PageWidth: 1200})
	wide, ok := reg.Get("wide")
	assert.True(ok)
	assert.Equal(1200.0, wide.PageWidth)
	assert.Equal(DefaultStyle().PageHeight, wide.PageHeight)

	reg.Register(Style{Name: CompactStyleName, SpacingUnit: 3})
	compact, _ := reg.Get(CompactStyleName)
	assert.Equal(3.0, compact.SpacingUnit)
	assert.Equal(CompactStyle().LineSpacing, compact.LineSpacing)
}

func TestStrategyParsing(t *testing.T) {
	assert := assert.New(t)
	for i, name := range strategyNames {
		st, err := ParseStrategy(name, 0)
		require.NoError(t, err)
		assert.Equal(StrategyKind(i), st.Kind())
		assert.Equal(name, st.Kind().String())
	}
	st, err := ParseStrategy("", 0)
	require.NoError(t, err)
	assert.Equal(KindFlexible, st.Kind())
	fixed, _ := ParseStrategy("fixed", 0)
	assert.Equal(Fixed{BarsPerSystem: DefaultBarsPerSystem}, fixed)

	_, err = ParseStrategy("spiral", 0)
	assert.Error(err)

	s := model.NewSong()
	s.View(0).Strategy = "spiral"
	_, err = NewScore(s, nil, nil)
	assert.Error(err)
	_, err = NewScore(nil, nil, nil)
	assert.True(errs.IsPrecondition(err))
}
