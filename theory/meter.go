package theory

import "fmt"

// TimeSignature is a meter. The zero value is treated as 4/4.
type TimeSignature struct {
	Beats     uint8
	BeatValue uint8
	Common    bool // draw as C (4/4) or cut C (2/2)
	Hidden    bool
}

var CommonTime = TimeSignature{Beats: 4, BeatValue: 4}

func (t TimeSignature) Normalize() TimeSignature {
	if t.Beats == 0 || t.BeatValue == 0 {
		n := CommonTime
		n.Common, n.Hidden = t.Common, t.Hidden
		return n
	}
	return t
}

func (t TimeSignature) Valid() bool {
	switch t.BeatValue {
	case 1, 2, 4, 8, 16, 32:
		return t.Beats > 0 && t.Beats <= 32
	}
	return false
}

// BarTicks is the nominal length of a full bar.
func (t TimeSignature) BarTicks() int {
	n := t.Normalize()
	return int(n.Beats) * TicksPerWhole / int(n.BeatValue)
}

// DisplayEqual ignores nothing but the hidden flag.
func (t TimeSignature) DisplayEqual(o TimeSignature) bool {
	a, b := t.Normalize(), o.Normalize()
	return a.Beats == b.Beats && a.BeatValue == b.BeatValue && a.Common == b.Common
}

func (t TimeSignature) String() string {
	n := t.Normalize()
	return fmt.Sprintf("%d/%d", n.Beats, n.BeatValue)
}

// BeamingPattern lists beam group lengths in eighth notes; zero entries
// end the pattern. The zero value beams per quarter note.
type BeamingPattern [4]uint8

func (b BeamingPattern) Empty() bool {
	return b == BeamingPattern{}
}

// Windows returns successive beam window lengths in ticks covering at
// least barTicks; the pattern repeats when it is shorter than the bar.
func (b BeamingPattern) Windows(barTicks int) []int {
	var lens []int
	for _, g := range b {
		if g == 0 {
			break
		}
		lens = append(lens, int(g)*TicksPerQuarter/2)
	}
	if len(lens) == 0 {
		lens = []int{TicksPerQuarter}
	}
	if barTicks <= 0 {
		barTicks = TicksPerWhole
	}
	var out []int
	total := 0
	for i := 0; total < barTicks; i++ {
		l := lens[i%len(lens)]
		out = append(out, l)
		total += l
	}
	return out
}

// DefaultBeaming suggests a pattern for a meter; compound meters group
// in dotted quarters.
func DefaultBeaming(t TimeSignature) BeamingPattern {
	n := t.Normalize()
	if n.BeatValue == 8 && n.Beats%3 == 0 && n.Beats > 3 {
		var p BeamingPattern
		for i := 0; i < int(n.Beats/3) && i < len(p); i++ {
			p[i] = 3
		}
		return p
	}
	return BeamingPattern{}
}
