package lyric

import (
	"github.com/mgpai22/lyricsync/internal/timecode"
)

// smallest highlightable unit of text
type Phrase struct {
	Text string
	// Duration is in centiseconds as written in the document, fractions
	// included; 0 is a legal instant phrase.
	Duration            float64
	Pronunciation       string
	Emphasized          bool
	PronunciationForced bool

	keys keySet
}

// timed phrase sequence; used for the main line and the background voice
type Track struct {
	// Time is the stored MM:SS.cc start, kept verbatim so half-typed
	// values survive a save.
	Time        string
	Phrases     []Phrase
	Translation string

	keys keySet
}

// represents the kind of a line
type Kind string

const (
	KindNormal    Kind = "normal"
	KindPrelude   Kind = "prelude"
	KindInterlude Kind = "interlude"
	KindEnd       Kind = "end"
)

// represents which vocalist sings a line
type VocalPart string

const (
	PartPrimary   VocalPart = "primary"
	PartSecondary VocalPart = "secondary"
	PartTogether  VocalPart = "together"
)

// one timed lyric entry
type Line struct {
	Kind Kind
	Track
	Part VocalPart
	// Background is an optional second vocal layer owned by this line.
	Background *Track

	keys keySet
}

// ordered sequence of lines
type Collection []Line

// start time in seconds
func (t Track) Start() float64 {
	return timecode.Parse(t.Time)
}

// sum of phrase durations in seconds; negative durations count as zero
func (t Track) TotalSeconds() float64 {
	var total float64
	for _, p := range t.Phrases {
		if p.Duration > 0 {
			total += p.Duration
		}
	}
	return total / 100
}

// PhraseText joins the phrase texts of the track.
func (t Track) PhraseText() string {
	var n int
	for _, p := range t.Phrases {
		n += len(p.Text)
	}
	b := make([]byte, 0, n)
	for _, p := range t.Phrases {
		b = append(b, p.Text...)
	}
	return string(b)
}

// IsMarker reports whether lines of this kind render as a marker only.
func (k Kind) IsMarker() bool {
	return k == KindPrelude || k == KindInterlude || k == KindEnd
}

// HasFiller reports whether a phrase-less line of this kind gets the
// synthetic walking-dots timeline.
func (k Kind) HasFiller() bool {
	return k == KindPrelude || k == KindInterlude
}

func (k Kind) valid() bool {
	switch k {
	case KindNormal, KindPrelude, KindInterlude, KindEnd:
		return true
	}
	return false
}

// NewLine creates a normal primary line starting at the given time.
func NewLine(seconds float64, phrases ...Phrase) Line {
	return Line{
		Kind: KindNormal,
		Track: Track{
			Time:    timecode.Format(seconds, timecode.PrecisionCentiseconds),
			Phrases: phrases,
		},
		Part: PartPrimary,
	}
}

// NewMarker creates a phrase-less marker line of the given kind.
func NewMarker(kind Kind, seconds float64) Line {
	return Line{
		Kind:  kind,
		Track: Track{Time: timecode.Format(seconds, timecode.PrecisionCentiseconds)},
		Part:  PartPrimary,
	}
}
