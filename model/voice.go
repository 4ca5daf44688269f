package model

type Voice struct {
	index   int
	track   *Track
	phrases []*Phrase
}

func (v *Voice) Index() int {
	if v == nil {
		return -1
	}
	return v.index
}

func (v *Voice) Track() *Track {
	if v == nil {
		return nil
	}
	return v.track
}

// Hand is the staff side of the voice, Low the second voice of a hand.
func (v *Voice) Hand() int { return HandOf(v.index) }
func (v *Voice) Low() bool { return v.index%2 == 1 }

func (v *Voice) PhraseCount() int {
	if v == nil {
		return 0
	}
	return len(v.phrases)
}

// Phrase returns the content of bar i.
func (v *Voice) Phrase(i int) *Phrase {
	if v == nil || i < 0 || i >= len(v.phrases) {
		return nil
	}
	return v.phrases[i]
}

func (v *Voice) Phrases() []*Phrase {
	return append([]*Phrase(nil), v.phrases...)
}

// ReplacePhrase swaps the content of bar i, keeping the one-phrase-per-bar
// shape. The previous phrase is detached and returned.
func (v *Voice) ReplacePhrase(i int, p *Phrase) *Phrase {
	old := v.Phrase(i)
	if old == nil || p == nil || p.voice != nil {
		return nil
	}
	old.voice = nil
	old.index = -1
	v.phrases[i] = p
	p.voice = v
	p.index = i
	p.Invalidate()
	return old
}

// IsEmpty reports whether no phrase of the voice has chords.
func (v *Voice) IsEmpty() bool {
	for _, p := range v.phrases {
		if len(p.chords) > 0 {
			return false
		}
	}
	return true
}

func (v *Voice) insertPhrase(p *Phrase, idx int) {
	v.phrases = append(v.phrases, nil)
	copy(v.phrases[idx+1:], v.phrases[idx:])
	v.phrases[idx] = p
	p.voice = v
	v.reindex()
}

func (v *Voice) removePhrase(idx int) {
	v.phrases[idx].voice = nil
	v.phrases[idx].index = -1
	v.phrases = append(v.phrases[:idx], v.phrases[idx+1:]...)
	v.reindex()
}

func (v *Voice) reindex() {
	for i, p := range v.phrases {
		p.index = i
	}
}
