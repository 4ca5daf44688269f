package theory

// Ottavia is an octave displacement line.
type Ottavia uint8

const (
	OttaviaNone Ottavia = iota
	Ottava               // 8va
	OttavaBassa          // 8vb
	Quindicesima         // 15ma
	QuindicesimaBassa    // 15mb
)

// OctaveShift is applied to a sounding octave to get the written one.
func (o Ottavia) OctaveShift() int {
	switch o {
	case Ottava:
		return -1
	case OttavaBassa:
		return 1
	case Quindicesima:
		return -2
	case QuindicesimaBassa:
		return 2
	}
	return 0
}

var ottaviaNames = []string{"", "8va", "8vb", "15ma", "15mb"}

func (o Ottavia) String() string {
	return ottaviaNames[o%5]
}

func ParseOttavia(s string) (Ottavia, bool) {
	for i, n := range ottaviaNames {
		if n == s {
			return Ottavia(i), true
		}
	}
	return OttaviaNone, false
}

type Accidental uint8

const (
	AccidentalNone Accidental = iota
	AccidentalNatural
	AccidentalSharp
	AccidentalFlat
	AccidentalDoubleSharp
	AccidentalDoubleFlat
)

// AccidentalFor returns the sign drawn for an alteration.
func AccidentalFor(alteration int8) Accidental {
	switch {
	case alteration >= 2:
		return AccidentalDoubleSharp
	case alteration == 1:
		return AccidentalSharp
	case alteration == -1:
		return AccidentalFlat
	case alteration <= -2:
		return AccidentalDoubleFlat
	}
	return AccidentalNatural
}

func (a Accidental) String() string {
	return [...]string{"", "natural", "sharp", "flat", "double-sharp", "double-flat"}[a%6]
}

type NoteHead uint8

const (
	HeadNormal NoteHead = iota
	HeadDead
	HeadCross
	HeadCircleX
	HeadTriangle
	HeadDiamond
	HeadSlash
)

// StemDirection forces a stem side; StemAuto leaves it to the layout.
type StemDirection uint8

const (
	StemAuto StemDirection = iota
	StemUp
	StemDown
)
