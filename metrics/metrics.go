// Package metrics measures bars for layout: per-onset columns with left
// and right spacing, leading symbol space and trailing space.
package metrics

import (
	"github.com/jsphweid/engraver/errs"
	"github.com/jsphweid/engraver/model"
	"github.com/jsphweid/engraver/util"
)

// Column is one distinct onset tick across every visible voice of a bar.
type Column struct {
	Tick  int
	Left  float64
	Right float64
}

func (c Column) Width() float64 { return c.Left + c.Right }

type BarMetrics struct {
	Bar     int
	Ticks   int
	Columns []Column

	// LeadFirst applies when the bar opens a system, LeadMiddle otherwise.
	LeadFirst  float64
	LeadMiddle float64
	Trailing   float64

	Empty       bool
	Collapsible bool
}

// Width is the ideal width of the bar at the given system position.
func (m BarMetrics) Width(first bool) float64 {
	w := m.LeadMiddle
	if first {
		w = m.LeadFirst
	}
	for _, c := range m.Columns {
		w += c.Width()
	}
	return w + m.Trailing
}

// Params are the symbol widths, in spacing units, used for leading and
// trailing space.
type Params struct {
	Unit              float64
	Clef              float64
	KeyAccidental     float64
	TimeSignature     float64
	RepeatStart       float64
	TrailingFilled    float64
	TrailingEmpty     float64
	TrailingMultiRest float64
	// State selects concert or transposed representations.
	State int
}

func DefaultParams(unit float64) Params {
	return Params{
		Unit:              unit,
		Clef:              4,
		KeyAccidental:     1.2,
		TimeSignature:     3,
		RepeatStart:       1.5,
		TrailingFilled:    1,
		TrailingEmpty:     6,
		TrailingMultiRest: 12,
		State:             model.Concert,
	}
}

type Calculator struct {
	params Params
	spacer Spacer
}

// NewCalculator uses DefaultSpacer when spacer is nil.
func NewCalculator(p Params, spacer Spacer) *Calculator {
	if spacer == nil {
		spacer = DefaultSpacer{Unit: p.Unit}
	}
	return &Calculator{params: p, spacer: spacer}
}

func (c *Calculator) Params() Params { return c.params }

// All measures every bar of the song.
func (c *Calculator) All(s *model.Song, tracks []*model.Track, multiRests bool) []BarMetrics {
	out := make([]BarMetrics, s.BarCount())
	for i := range out {
		out[i] = c.Bar(s, i, tracks, multiRests)
	}
	return out
}

// Bar measures bar i over the visible tracks. Phrases must be refreshed.
func (c *Calculator) Bar(s *model.Song, i int, tracks []*model.Track, multiRests bool) BarMetrics {
	bar := s.Bar(i)
	m := BarMetrics{Bar: i}
	if bar == nil {
		return m
	}
	m.Ticks = bar.Ticks()

	cols := map[int]*Column{}
	indices := make([]int, 0, len(tracks))
	for _, t := range tracks {
		indices = append(indices, t.Index())
		for _, v := range t.Voices() {
			p := v.Phrase(i)
			if p == nil || p.IsEmpty() {
				continue
			}
			errs.Assert(p.Valid(), "measuring stale phrase: track %d voice %d bar %d", t.Index(), v.Index(), i)
			for _, ch := range p.Chords() {
				sp := c.spacer.ChordSpacing(ch, c.params.State)
				col, ok := cols[ch.Offset()]
				if !ok {
					col = &Column{Tick: ch.Offset()}
					cols[ch.Offset()] = col
				}
				col.Left = util.Max(col.Left, sp.Left)
				col.Right = util.Max(col.Right, sp.Right)
			}
		}
	}
	for _, tick := range util.GetSortedKeys(cols) {
		m.Columns = append(m.Columns, *cols[tick])
	}

	m.LeadFirst, m.LeadMiddle = c.leading(bar, tracks)

	m.Empty = s.IsBarEmpty(i, indices)
	m.Collapsible = m.Empty && multiRests
	unit := c.params.Unit
	switch {
	case m.Collapsible:
		m.Trailing = c.params.TrailingMultiRest * unit
	case m.Empty:
		m.Trailing = c.params.TrailingEmpty * unit
	default:
		m.Trailing = c.params.TrailingFilled * unit
	}
	return m
}

// leading adds up the symbols drawn before the first column.
func (c *Calculator) leading(bar *model.Bar, tracks []*model.Track) (first, middle float64) {
	p, unit := c.params, c.params.Unit
	clefChanged := false
	for _, t := range tracks {
		for h := 0; h < t.StandardStaffCount(); h++ {
			if t.ClefChangedAt(h, bar.Index()) {
				clefChanged = true
			}
		}
	}

	accidentals := bar.Key.Accidentals()
	if prev := bar.Previous(); prev != nil && prev.Key != bar.Key {
		accidentals = util.Max(accidentals, prev.Key.Accidentals())
	}
	key := float64(accidentals) * p.KeyAccidental * unit

	common := 0.0
	if bar.TimeSignatureChanged() && !bar.TimeSignature.Hidden {
		common += p.TimeSignature * unit
	}
	if bar.Flags.Has(model.BarRepeatStart) {
		common += p.RepeatStart * unit
	}

	first = p.Clef*unit + float64(bar.Key.Accidentals())*p.KeyAccidental*unit + common
	middle = common
	if clefChanged {
		middle += p.Clef * unit
	}
	if clefChanged || bar.KeyChanged() {
		middle += key
	}
	return first, middle
}
