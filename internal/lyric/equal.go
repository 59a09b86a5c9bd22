package lyric

// Equal reports deep structural equality of two collections. Order and
// values matter; identity and serialized key order do not.
func Equal(a, b Collection) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (l Line) Equal(o Line) bool {
	if normKind(l.Kind) != normKind(o.Kind) || normPart(l.Part) != normPart(o.Part) {
		return false
	}
	if !l.Track.Equal(o.Track) {
		return false
	}
	if (l.Background == nil) != (o.Background == nil) {
		return false
	}
	if l.Background != nil && !l.Background.Equal(*o.Background) {
		return false
	}
	return true
}

func (t Track) Equal(o Track) bool {
	if t.Time != o.Time || t.Translation != o.Translation {
		return false
	}
	if len(t.Phrases) != len(o.Phrases) {
		return false
	}
	for i := range t.Phrases {
		if !t.Phrases[i].Equal(o.Phrases[i]) {
			return false
		}
	}
	return true
}

func (p Phrase) Equal(o Phrase) bool {
	return p.Text == o.Text &&
		p.Duration == o.Duration &&
		p.Pronunciation == o.Pronunciation &&
		p.Emphasized == o.Emphasized &&
		p.PronunciationForced == o.PronunciationForced
}

// Clone returns a deep copy sharing no slices or pointers with c.
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	for i, l := range c {
		out[i] = l.Clone()
	}
	return out
}

func (l Line) Clone() Line {
	out := l
	out.Track = l.Track.Clone()
	if l.Background != nil {
		bg := l.Background.Clone()
		out.Background = &bg
	}
	return out
}

func (t Track) Clone() Track {
	out := t
	if t.Phrases != nil {
		out.Phrases = make([]Phrase, len(t.Phrases))
		copy(out.Phrases, t.Phrases)
	}
	return out
}

func normKind(k Kind) Kind {
	if k == "" {
		return KindNormal
	}
	return k
}

func normPart(p VocalPart) VocalPart {
	if p == "" {
		return PartPrimary
	}
	return p
}

// EffectiveKind treats the zero value as a normal line.
func (l Line) EffectiveKind() Kind {
	return normKind(l.Kind)
}

// EffectivePart treats the zero value as the primary vocalist.
func (l Line) EffectivePart() VocalPart {
	return normPart(l.Part)
}
