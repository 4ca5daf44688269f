package midi

import (
	"fmt"
	"testing"

	"github.com/jsphweid/engraver/theory"
	"github.com/stretchr/testify/assert"
)

func TestNoteName(t *testing.T) {
	cases := []struct {
		key  uint8
		want string
	}{
		{60, "C4"},
		{69, "A4"},
		{0, "C-1"},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%d", c.key), func(t *testing.T) {
			assert.Equal(t, c.want, NoteName(c.key))
		})
	}
}

func TestNoteOnRoundTrip(t *testing.T) {
	key, ok := KeyOf(NoteOn(PercussionChannel, AcousticSnare, 100))
	assert := assert.New(t)
	assert.True(ok)
	assert.Equal(uint8(AcousticSnare), key)

	_, ok = KeyOf(NoteOff(PercussionChannel, AcousticSnare))
	assert.False(ok)
}

func TestLookupDrum(t *testing.T) {
	assert := assert.New(t)
	d, ok := LookupDrum(ClosedHiHat)
	assert.True(ok)
	assert.Equal(-1, d.Line)
	assert.Equal(theory.HeadCross, d.Head)

	d, ok = LookupDrum(100)
	assert.False(ok)
	assert.Equal(3, d.Line)
	assert.Equal(theory.HeadNormal, d.Head)
}

func TestClampKey(t *testing.T) {
	assert.Equal(t, uint8(0), ClampKey(-3))
	assert.Equal(t, uint8(127), ClampKey(300))
	assert.Equal(t, uint8(64), ClampKey(64))
}
