package theory

import "fmt"

// TimeDiv is a position inside a bar expressed as a reduced fraction of a
// whole note. It converts losslessly to ticks for every value whose
// denominator divides TicksPerWhole.
type TimeDiv struct {
	Num int
	Den int
}

func NewTimeDiv(num, den int) TimeDiv {
	if den == 0 {
		return TimeDiv{0, 1}
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs(num), den)
	if g == 0 {
		return TimeDiv{0, 1}
	}
	return TimeDiv{num / g, den / g}
}

func TimeDivFromTicks(ticks int) TimeDiv {
	return NewTimeDiv(ticks, TicksPerWhole)
}

func (t TimeDiv) Ticks() int {
	if t.Den == 0 {
		return 0
	}
	return t.Num * TicksPerWhole / t.Den
}

func (t TimeDiv) Add(o TimeDiv) TimeDiv {
	a, b := t.norm(), o.norm()
	return NewTimeDiv(a.Num*b.Den+b.Num*a.Den, a.Den*b.Den)
}

func (t TimeDiv) Less(o TimeDiv) bool {
	a, b := t.norm(), o.norm()
	return a.Num*b.Den < b.Num*a.Den
}

func (t TimeDiv) IsZero() bool {
	return t.Num == 0
}

func (t TimeDiv) String() string {
	n := t.norm()
	return fmt.Sprintf("%d/%d", n.Num, n.Den)
}

func (t TimeDiv) norm() TimeDiv {
	if t.Den == 0 {
		return TimeDiv{0, 1}
	}
	return t
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// floorDiv and floorMod round toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
