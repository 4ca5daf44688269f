package midi

import "github.com/jsphweid/engraver/theory"

// Drum is the fixed notation of one General MIDI percussion key.
type Drum struct {
	Key  uint8
	Name string
	Line int
	Head theory.NoteHead
}

// Percussion keys of the General MIDI level 1 set.
const (
	AcousticBassDrum = 35
	BassDrum         = 36
	SideStick        = 37
	AcousticSnare    = 38
	HandClap         = 39
	ElectricSnare    = 40
	LowFloorTom      = 41
	ClosedHiHat      = 42
	HighFloorTom     = 43
	PedalHiHat       = 44
	LowTom           = 45
	OpenHiHat        = 46
	LowMidTom        = 47
	HiMidTom         = 48
	CrashCymbal1     = 49
	HighTom          = 50
	RideCymbal1      = 51
	ChineseCymbal    = 52
	RideBell         = 53
	Tambourine       = 54
	SplashCymbal     = 55
	Cowbell          = 56
	CrashCymbal2     = 57
	RideCymbal2      = 59
)

var drums = map[uint8]Drum{
	AcousticBassDrum: {AcousticBassDrum, "Acoustic Bass Drum", 8, theory.HeadNormal},
	BassDrum:         {BassDrum, "Bass Drum", 7, theory.HeadNormal},
	SideStick:        {SideStick, "Side Stick", 3, theory.HeadCircleX},
	AcousticSnare:    {AcousticSnare, "Acoustic Snare", 3, theory.HeadNormal},
	HandClap:         {HandClap, "Hand Clap", 3, theory.HeadTriangle},
	ElectricSnare:    {ElectricSnare, "Electric Snare", 3, theory.HeadNormal},
	LowFloorTom:      {LowFloorTom, "Low Floor Tom", 6, theory.HeadNormal},
	ClosedHiHat:      {ClosedHiHat, "Closed Hi-Hat", -1, theory.HeadCross},
	HighFloorTom:     {HighFloorTom, "High Floor Tom", 5, theory.HeadNormal},
	PedalHiHat:       {PedalHiHat, "Pedal Hi-Hat", 9, theory.HeadCross},
	LowTom:           {LowTom, "Low Tom", 4, theory.HeadNormal},
	OpenHiHat:        {OpenHiHat, "Open Hi-Hat", -1, theory.HeadCircleX},
	LowMidTom:        {LowMidTom, "Low-Mid Tom", 2, theory.HeadNormal},
	HiMidTom:         {HiMidTom, "Hi-Mid Tom", 1, theory.HeadNormal},
	CrashCymbal1:     {CrashCymbal1, "Crash Cymbal 1", -2, theory.HeadCross},
	HighTom:          {HighTom, "High Tom", 0, theory.HeadNormal},
	RideCymbal1:      {RideCymbal1, "Ride Cymbal 1", 0, theory.HeadCross},
	ChineseCymbal:    {ChineseCymbal, "Chinese Cymbal", -3, theory.HeadCross},
	RideBell:         {RideBell, "Ride Bell", 0, theory.HeadDiamond},
	Tambourine:       {Tambourine, "Tambourine", 1, theory.HeadTriangle},
	SplashCymbal:     {SplashCymbal, "Splash Cymbal", -3, theory.HeadCross},
	Cowbell:          {Cowbell, "Cowbell", 1, theory.HeadTriangle},
	CrashCymbal2:     {CrashCymbal2, "Crash Cymbal 2", -2, theory.HeadCross},
	RideCymbal2:      {RideCymbal2, "Ride Cymbal 2", 0, theory.HeadCross},
}

// LookupDrum returns the mapping for key. Unknown keys fall back to a
// normal head on the snare line with ok false.
func LookupDrum(key uint8) (Drum, bool) {
	d, ok := drums[key]
	if !ok {
		return Drum{Key: key, Name: NoteName(key), Line: 3, Head: theory.HeadNormal}, false
	}
	return d, true
}
