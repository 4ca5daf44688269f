package midi

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// PercussionChannel is the zero-based General MIDI drum channel.
const PercussionChannel = 9

// NoteName names a key in scientific pitch notation, e.g. 69 -> "A4".
func NoteName(key uint8) string {
	return fmt.Sprintf("%s%d", midi.Note(key).Name(), int(key)/12-1)
}

// NoteOn builds the message a track would send for a note preview.
func NoteOn(channel, key, velocity uint8) midi.Message {
	return midi.NoteOn(channel, key, velocity)
}

// NoteOff pairs with NoteOn.
func NoteOff(channel, key uint8) midi.Message {
	return midi.NoteOff(channel, key)
}

// KeyOf extracts the key of a note-on message; ok is false for anything else.
func KeyOf(msg midi.Message) (key uint8, ok bool) {
	var channel, velocity uint8
	if msg.GetNoteOn(&channel, &key, &velocity) {
		return key, true
	}
	return 0, false
}

// ClampKey keeps a computed pitch inside the 7-bit MIDI range.
func ClampKey(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}

