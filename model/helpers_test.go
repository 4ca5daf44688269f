package model

import (
	"testing"

	"github.com/jsphweid/engraver/theory"
	"github.com/stretchr/testify/require"
)

func newTestSong(t *testing.T, bars int, tracks ...*Track) *Song {
	s := NewSong()
	for i := 0; i < bars; i++ {
		require.NoError(t, s.AppendBar(NewBar(theory.CommonTime, theory.KeySignature{})))
	}
	for _, tr := range tracks {
		require.NoError(t, s.AppendTrack(tr))
	}
	return s
}

func mustPitch(t *testing.T, s string) theory.Pitch {
	p, err := theory.ParsePitch(s)
	require.NoError(t, err)
	return p
}

// chordOf builds a chord of pitched notes; no pitches gives a rest.
func chordOf(t *testing.T, v theory.NoteValue, pitches ...string) *Chord {
	c := NewChord(v)
	if len(pitches) == 0 {
		c.Flags |= ChordRest
	}
	for _, p := range pitches {
		require.NoError(t, c.AppendNote(NewNote(mustPitch(t, p))))
	}
	return c
}

func fill(t *testing.T, p *Phrase, chords ...*Chord) {
	for _, c := range chords {
		require.NoError(t, p.AppendChord(c))
	}
}

func requireIndexed(t *testing.T, s *Song) {
	for i, b := range s.Bars() {
		require.Equal(t, i, b.Index())
		require.Equal(t, s, b.Song())
	}
	for i, tr := range s.Tracks() {
		require.Equal(t, i, tr.Index())
		for vi, v := range tr.Voices() {
			require.Equal(t, vi, v.Index())
			require.Equal(t, s.BarCount(), v.PhraseCount())
			for pi, p := range v.Phrases() {
				require.Equal(t, pi, p.Index())
				require.Equal(t, v, p.Voice())
				for ci, c := range p.Chords() {
					require.Equal(t, ci, c.Index())
					require.Equal(t, p, c.Phrase())
					for ni, n := range c.Notes() {
						require.Equal(t, ni, n.Index())
						require.Equal(t, c, n.Chord())
					}
				}
			}
		}
	}
}
