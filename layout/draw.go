package layout

import (
	"fmt"
	"strconv"
)

type Point struct {
	X float64
	Y float64
}

// Surface is the drawing sink used by Draw. Coordinates are in points
// relative to the current transform.
type Surface interface {
	MeasureText(text string, size float64) float64
	Text(x, y float64, text string, size float64)
	Symbol(x, y float64, name string, size float64)
	Line(x1, y1, x2, y2, width float64)
	Rect(x, y, w, h float64, fill bool)
	Path(points []Point, closed, fill bool)
	Save()
	Restore()
	Translate(dx, dy float64)
}

// NopSurface draws nothing.
type NopSurface struct{}

func (NopSurface) MeasureText(string, float64) float64              { return 0 }
func (NopSurface) Text(float64, float64, string, float64)           {}
func (NopSurface) Symbol(float64, float64, string, float64)         {}
func (NopSurface) Line(float64, float64, float64, float64, float64) {}
func (NopSurface) Rect(float64, float64, float64, float64, bool)    {}
func (NopSurface) Path([]Point, bool, bool)                         {}
func (NopSurface) Save()                                            {}
func (NopSurface) Restore()                                         {}
func (NopSurface) Translate(float64, float64)                       {}

// Op is one recorded drawing call.
type Op struct {
	Name string
	Args []float64
	Text string
}

// Recorder keeps every call made on it; text is measured at half the
// font size per rune.
type Recorder struct {
	Ops   []Op
	depth int
}

func (r *Recorder) add(name, text string, args ...float64) {
	r.Ops = append(r.Ops, Op{Name: name, Args: args, Text: text})
}

func (r *Recorder) MeasureText(text string, size float64) float64 {
	return float64(len([]rune(text))) * size / 2
}

func (r *Recorder) Text(x, y float64, text string, size float64)   { r.add("text", text, x, y, size) }
func (r *Recorder) Symbol(x, y float64, name string, size float64) { r.add("symbol", name, x, y, size) }
func (r *Recorder) Line(x1, y1, x2, y2, width float64)             { r.add("line", "", x1, y1, x2, y2, width) }
func (r *Recorder) Translate(dx, dy float64)                       { r.add("translate", "", dx, dy) }

func (r *Recorder) Rect(x, y, w, h float64, fill bool) {
	r.add("rect", strconv.FormatBool(fill), x, y, w, h)
}

func (r *Recorder) Path(points []Point, closed, fill bool) {
	var args []float64
	for _, p := range points {
		args = append(args, p.X, p.Y)
	}
	r.add("path", fmt.Sprintf("closed=%t fill=%t", closed, fill), args...)
}

func (r *Recorder) Save() {
	r.depth++
	r.add("save", "")
}

func (r *Recorder) Restore() {
	r.depth--
	r.add("restore", "")
}

// Depth is the number of unmatched Save calls.
func (r *Recorder) Depth() int { return r.depth }

// Count returns how many calls of the named kind were recorded.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, op := range r.Ops {
		if op.Name == name {
			n++
		}
	}
	return n
}

// Draw paints every page, one below the other.
func (s *Score) Draw(sf Surface) {
	y := 0.0
	for _, p := range s.Pages {
		sf.Save()
		sf.Translate(0, y)
		s.DrawPage(p, sf)
		sf.Restore()
		y += p.Height
	}
}

// DrawPage paints one page with its origin at the page's top left corner.
func (s *Score) DrawPage(p *Page, sf Surface) {
	sf.Save()
	defer sf.Restore()
	sf.Translate(s.Style.MarginLeft, s.Style.MarginTop)
	for _, sys := range p.Systems {
		s.drawSystem(sys, sf)
	}
}

func (s *Score) drawSystem(sys *System, sf Surface) {
	if len(sys.Staves) == 0 {
		return
	}
	st := s.Style
	sf.Save()
	defer sf.Restore()
	sf.Translate(0, sys.Y)

	for _, staff := range sys.Staves {
		gap := st.LineSpacing
		if staff.Kind == StaffTablature {
			gap = st.TabLineSpacing
		}
		for l := 0; l < staff.Lines; l++ {
			y := staff.Y + float64(l)*gap
			sf.Line(0, y, sys.Width, y, 0.5)
		}
	}
	top := sys.Staves[0].Y
	last := sys.Staves[len(sys.Staves)-1]
	bottom := last.Y + last.Height
	if len(sys.Staves) > 1 {
		sf.Line(0, top, 0, bottom, 2)
	}

	for _, sl := range sys.Slices {
		x := sl.X + sl.Width
		sf.Line(x, top, x, bottom, 1)
		if sl.MultiRest() {
			s.drawMultiRest(sys, sl, sf)
		}
		s.drawBands(sys, sl, sf)
	}
}

func (s *Score) drawMultiRest(sys *System, sl *Slice, sf Surface) {
	st := s.Style
	mid := sl.X + sl.Width/2
	size := 4 * st.LineSpacing
	label := strconv.Itoa(sl.BarCount())
	for _, staff := range sys.Staves {
		if staff.Kind != StaffStandard {
			continue
		}
		sf.Symbol(mid, staff.Y+staff.Height/2, "multiRest", size)
		w := sf.MeasureText(label, size)
		sf.Text(mid-w/2, staff.Y-st.LineSpacing, label, size)
	}
}

// drawBands writes the text bands above the staves for the slice's first
// bar.
func (s *Score) drawBands(sys *System, sl *Slice, sf Surface) {
	st := s.Style
	bar := s.Song.Bar(sl.FirstBar)
	row := func(b Band) float64 {
		for i, x := range sys.BandsAbove {
			if x == b {
				return float64(i) * st.BandHeight
			}
		}
		return 0
	}
	size := st.BandHeight * 0.8
	for _, m := range s.Song.TempoMarkersIn(sl.FirstBar) {
		sf.Text(sl.X, row(BandTempo)+size, fmt.Sprintf("%s = %d", m.BeatValue, m.BPM), size)
	}
	if bar.Rehearsal != "" {
		w := sf.MeasureText(bar.Rehearsal, size)
		y := row(BandRehearsal)
		sf.Rect(sl.X, y, w+4, st.BandHeight, false)
		sf.Text(sl.X+2, y+size, bar.Rehearsal, size)
	}
	for _, c := range bar.ChordNames() {
		x := sl.X + sl.Width*float64(c.Tick)/float64(bar.Ticks())
		sf.Text(x, row(BandChordNames)+size, c.Name, size)
	}
}
