package model

import "sort"

// ScoreView selects tracks and layout options for one rendering of the
// song. Strategy and Style are resolved by name in the layout package.
type ScoreView struct {
	Name          string
	Tracks        []int
	MultiRests    bool
	Strategy      string
	Style         string
	BarsPerSystem int

	// Written shows transposing instruments at written pitch.
	Written bool
}

const (
	DefaultStrategy = "flexible"
	DefaultStyle    = "default"
)

// NewScoreView shows every track, with the song deciding multi-rests.
func NewScoreView(name string) *ScoreView {
	return &ScoreView{Name: name, MultiRests: true, Strategy: DefaultStrategy, Style: DefaultStyle}
}

// Shows reports whether track i is visible.
func (v *ScoreView) Shows(i int) bool {
	for _, t := range v.Tracks {
		if t == i {
			return true
		}
	}
	return false
}

// VisibleTracks resolves the view against a song in track order.
func (v *ScoreView) VisibleTracks(s *Song) []*Track {
	var out []*Track
	for _, i := range v.Tracks {
		if t := s.Track(i); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// State is the note representation the view displays.
func (v *ScoreView) State() int {
	if v.Written {
		return Transposed
	}
	return Concert
}

// MultiRestsEnabled combines the song's permission with the view's choice.
func (v *ScoreView) MultiRestsEnabled(s *Song) bool {
	return s.MultiRests && v.MultiRests
}

func (v *ScoreView) showsAll(n int) bool {
	if len(v.Tracks) != n {
		return false
	}
	for i := 0; i < n; i++ {
		if !v.Shows(i) {
			return false
		}
	}
	return true
}

func (v *ScoreView) shiftTracks(from, by int) {
	for i := range v.Tracks {
		if v.Tracks[i] >= from {
			v.Tracks[i] += by
		}
	}
}

func (v *ScoreView) addTrack(i int) {
	if v.Shows(i) {
		return
	}
	v.Tracks = append(v.Tracks, i)
	sort.Ints(v.Tracks)
}

func (v *ScoreView) removeTrack(idx int) {
	kept := v.Tracks[:0]
	for _, t := range v.Tracks {
		if t == idx {
			continue
		}
		if t > idx {
			t--
		}
		kept = append(kept, t)
	}
	v.Tracks = kept
}
