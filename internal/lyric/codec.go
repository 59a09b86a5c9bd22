package lyric

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrInvalidDocument is returned when an import is not a JSON array of lines.
var ErrInvalidDocument = errors.New("invalid lyric document")

// records which optional keys were present in the source document so a
// re-export writes them back, including explicit false and empty values
type keySet uint16

const (
	keyType keySet = 1 << iota
	keyText
	keyTranslation
	keySecondary
	keyTogether
	keyPronunciation
	keyKiai
	keyForced
)

func (k keySet) has(bit keySet) bool { return k&bit != 0 }

type wirePhrase struct {
	Phrase        string  `json:"phrase"`
	Duration      float64 `json:"duration"`
	Pronunciation *string `json:"pronounciation,omitempty"`
	Kiai          *bool   `json:"kiai,omitempty"`
	Forced        *bool   `json:"pncat_forced,omitempty"`
}

type wireBackground struct {
	Time        string       `json:"time"`
	Text        []wirePhrase `json:"text"`
	Translation *string      `json:"translation,omitempty"`
}

type wireLine struct {
	Time            string          `json:"time"`
	Type            *Kind           `json:"type,omitempty"`
	Text            *[]wirePhrase   `json:"text,omitempty"`
	Translation     *string         `json:"translation,omitempty"`
	BackgroundVoice *wireBackground `json:"background_voice,omitempty"`
	IsSecondary     *bool           `json:"is_secondary,omitempty"`
	IsTogether      *bool           `json:"is_together,omitempty"`
}

func (p Phrase) toWire() wirePhrase {
	w := wirePhrase{Phrase: p.Text, Duration: p.Duration}
	if p.Pronunciation != "" || p.keys.has(keyPronunciation) {
		s := p.Pronunciation
		w.Pronunciation = &s
	}
	if p.Emphasized || p.keys.has(keyKiai) {
		b := p.Emphasized
		w.Kiai = &b
	}
	if p.PronunciationForced || p.keys.has(keyForced) {
		b := p.PronunciationForced
		w.Forced = &b
	}
	return w
}

func phraseFromWire(w wirePhrase) (Phrase, error) {
	if math.IsNaN(w.Duration) || math.IsInf(w.Duration, 0) {
		return Phrase{}, fmt.Errorf("phrase %q: invalid duration", w.Phrase)
	}
	p := Phrase{Text: w.Phrase, Duration: w.Duration}
	if w.Pronunciation != nil {
		p.Pronunciation = *w.Pronunciation
		p.keys |= keyPronunciation
	}
	if w.Kiai != nil {
		p.Emphasized = *w.Kiai
		p.keys |= keyKiai
	}
	if w.Forced != nil {
		p.PronunciationForced = *w.Forced
		p.keys |= keyForced
	}
	return p, nil
}

func phrasesToWire(phrases []Phrase) []wirePhrase {
	out := make([]wirePhrase, len(phrases))
	for i, p := range phrases {
		out[i] = p.toWire()
	}
	return out
}

func phrasesFromWire(ws []wirePhrase) ([]Phrase, error) {
	if ws == nil {
		return nil, nil
	}
	out := make([]Phrase, len(ws))
	for i, w := range ws {
		p, err := phraseFromWire(w)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func (l Line) MarshalJSON() ([]byte, error) {
	w := wireLine{Time: l.Time}

	kind := normKind(l.Kind)
	if kind != KindNormal || l.keys.has(keyType) {
		w.Type = &kind
	}
	if len(l.Phrases) > 0 || l.keys.has(keyText) {
		text := phrasesToWire(l.Phrases)
		w.Text = &text
	}
	if l.Translation != "" || l.Track.keys.has(keyTranslation) {
		s := l.Translation
		w.Translation = &s
	}
	if l.Background != nil {
		bg := &wireBackground{
			Time: l.Background.Time,
			Text: phrasesToWire(l.Background.Phrases),
		}
		if l.Background.Translation != "" ||
			l.Background.keys.has(keyTranslation) {
			s := l.Background.Translation
			bg.Translation = &s
		}
		w.BackgroundVoice = bg
	}

	part := normPart(l.Part)
	if part == PartSecondary || l.keys.has(keySecondary) {
		b := part == PartSecondary
		w.IsSecondary = &b
	}
	if part == PartTogether || l.keys.has(keyTogether) {
		b := part == PartTogether
		w.IsTogether = &b
	}

	return marshalNoEscape(w)
}

// lyrics routinely contain & and angle brackets; keep them literal
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (l *Line) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errors.New("line is null")
	}

	var w wireLine
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := Line{
		Kind:  KindNormal,
		Track: Track{Time: w.Time},
		Part:  PartPrimary,
	}

	if w.Type != nil {
		if !w.Type.valid() {
			return fmt.Errorf("unknown line type %q", *w.Type)
		}
		out.Kind = *w.Type
		out.keys |= keyType
	}
	if w.Text != nil {
		phrases, err := phrasesFromWire(*w.Text)
		if err != nil {
			return err
		}
		out.Phrases = phrases
		out.keys |= keyText
	}
	if w.Translation != nil {
		out.Translation = *w.Translation
		out.Track.keys |= keyTranslation
	}
	if w.BackgroundVoice != nil {
		phrases, err := phrasesFromWire(w.BackgroundVoice.Text)
		if err != nil {
			return fmt.Errorf("background voice: %w", err)
		}
		bg := &Track{Time: w.BackgroundVoice.Time, Phrases: phrases}
		if w.BackgroundVoice.Translation != nil {
			bg.Translation = *w.BackgroundVoice.Translation
			bg.keys |= keyTranslation
		}
		out.Background = bg
	}

	// together wins when a document sets both flags
	if w.IsSecondary != nil {
		out.keys |= keySecondary
		if *w.IsSecondary {
			out.Part = PartSecondary
		}
	}
	if w.IsTogether != nil {
		out.keys |= keyTogether
		if *w.IsTogether {
			out.Part = PartTogether
		}
	}

	*l = out
	return nil
}

// Decode reads a JSON array of lines. Anything else is rejected whole.
func Decode(r io.Reader) (Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read lyric document: %w", err)
	}
	return Unmarshal(data)
}

// Unmarshal parses a JSON array of lines.
func Unmarshal(data []byte) (Collection, error) {
	trimmed := bytes.TrimSpace(data)
	trimmed = bytes.TrimPrefix(trimmed, []byte("\ufeff"))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: root is not an array", ErrInvalidDocument)
	}

	var c Collection
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if c == nil {
		c = Collection{}
	}
	return c, nil
}

// Encode writes c as an indented JSON array.
func Encode(w io.Writer, c Collection) error {
	if c == nil {
		c = Collection{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode lyrics: %w", err)
	}
	return nil
}

// Marshal returns the indented JSON form of c.
func Marshal(c Collection) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
