package theory

import (
	"fmt"
	"strconv"
	"strings"
)

// Ticks are the smallest rhythmic unit. Every duration and offset in a
// document reduces to a tick count.
const (
	TicksPerQuarter = 960
	TicksPerWhole   = 4 * TicksPerQuarter
)

// NoteValue is the rhythmic duration class of a chord, whole note first.
type NoteValue uint8

const (
	Whole NoteValue = iota
	Half
	Quarter
	Eighth
	Sixteenth
	ThirtySecond
	SixtyFourth
	HundredTwentyEighth
)

const MaxDots = 2

var noteValueNames = []string{"1", "2", "4", "8", "16", "32", "64", "128"}

func (v NoteValue) String() string {
	if int(v) < len(noteValueNames) {
		return noteValueNames[v]
	}
	return "?"
}

func (v NoteValue) Valid() bool {
	return v <= HundredTwentyEighth
}

// ShorterThanQuarter reports whether the value carries a flag or beam.
func (v NoteValue) ShorterThanQuarter() bool {
	return v > Quarter
}

// BaseTicks is the undotted, untupleted duration.
func (v NoteValue) BaseTicks() int {
	if !v.Valid() {
		return 0
	}
	return TicksPerWhole >> uint(v)
}

// DurationTicks applies dots and a tuplet ratio to a note value.
func DurationTicks(v NoteValue, dots int, t Tuplet) int {
	base := v.BaseTicks()
	d := base
	add := base
	for i := 0; i < dots && i < MaxDots; i++ {
		add /= 2
		d += add
	}
	if !t.Trivial() {
		d = d * int(t.Den) / int(t.Num)
	}
	return d
}

// NoteValueForTicks finds the longest note value (with up to MaxDots
// dots) that exactly matches n ticks.
func NoteValueForTicks(n int) (v NoteValue, dots int, ok bool) {
	for v = Whole; v <= HundredTwentyEighth; v++ {
		for dots = 0; dots <= MaxDots; dots++ {
			if DurationTicks(v, dots, Tuplet{}) == n {
				return v, dots, true
			}
		}
	}
	return Quarter, 0, false
}

// Tuplet expresses Num notes in the time of Den. The zero value and any
// Num == Den ratio are trivial.
type Tuplet struct {
	Num uint8
	Den uint8
}

var Triplet = Tuplet{Num: 3, Den: 2}

func (t Tuplet) Trivial() bool {
	return t.Num == 0 || t.Den == 0 || t.Num == t.Den
}

func ParseNoteValue(s string) (NoteValue, bool) {
	for i, n := range noteValueNames {
		if n == s {
			return NoteValue(i), true
		}
	}
	return Quarter, false
}

func (t Tuplet) String() string {
	if t.Trivial() {
		return ""
	}
	return fmt.Sprintf("%d:%d", t.Num, t.Den)
}

// ParseTuplet reads "num:den"; an empty string is no tuplet.
func ParseTuplet(s string) (Tuplet, error) {
	if s == "" {
		return Tuplet{}, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Tuplet{}, fmt.Errorf("bad tuplet %q", s)
	}
	num, err1 := strconv.ParseUint(parts[0], 10, 8)
	den, err2 := strconv.ParseUint(parts[1], 10, 8)
	if err1 != nil || err2 != nil || num == 0 || den == 0 {
		return Tuplet{}, fmt.Errorf("bad tuplet %q", s)
	}
	return Tuplet{Num: uint8(num), Den: uint8(den)}, nil
}
