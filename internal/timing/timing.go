package timing

import (
	"math"

	"github.com/mgpai22/lyricsync/internal/lyric"
)

const (
	// a line lights up slightly before its first phrase
	LeadTolerance = 0.3
	// and lingers briefly after its last one
	TrailTolerance = 0.2
	// span used when a line has no timed phrases
	FallbackSpan = 3.0
	// shortest span for synthetic prelude/interlude fillers
	MinFillerSpan = 0.1
	// number of synthetic "walking dots" phrases
	FillerCount = 3
)

// timeline of one phrase track, in seconds
type TrackTiming struct {
	Start     float64
	Delays    []float64
	Durations []float64
	Total     float64
	// Synthetic marks filler phrases generated for a phrase-less
	// prelude or interlude.
	Synthetic bool
}

// precomputed timing for one line
type LineTiming struct {
	Index      int
	Kind       lyric.Kind
	Part       lyric.VocalPart
	Main       TrackTiming
	Background *TrackTiming
	// End is the main track end, with FallbackSpan substituted for an
	// empty timeline.
	End float64
}

// NewTrackTiming computes cumulative delays and durations for a track.
func NewTrackTiming(t lyric.Track) TrackTiming {
	tt := TrackTiming{
		Start:     t.Start(),
		Delays:    make([]float64, len(t.Phrases)),
		Durations: make([]float64, len(t.Phrases)),
	}

	var delay float64
	for i, p := range t.Phrases {
		d := 0.0
		if p.Duration > 0 {
			d = p.Duration / 100
		}
		tt.Delays[i] = delay
		tt.Durations[i] = d
		delay += d
	}
	tt.Total = delay
	return tt
}

// fillerTiming builds the synthetic walking-dots timeline spanning from
// start to the next array element's start.
func fillerTiming(start float64, next *lyric.Line) TrackTiming {
	span := FallbackSpan
	if next != nil {
		if s := next.Start() - start; s > 0 {
			span = s
		}
	}
	if span < MinFillerSpan {
		span = MinFillerSpan
	}

	each := span / FillerCount
	tt := TrackTiming{
		Start:     start,
		Delays:    make([]float64, FillerCount),
		Durations: make([]float64, FillerCount),
		Total:     span,
		Synthetic: true,
	}
	for i := 0; i < FillerCount; i++ {
		tt.Delays[i] = float64(i) * each
		tt.Durations[i] = each
	}
	return tt
}

// Prepare computes the timing of every line. The next line used for
// filler spans is the next array element, not the next line by time.
func Prepare(c lyric.Collection) []LineTiming {
	out := make([]LineTiming, len(c))
	for i, line := range c {
		lt := LineTiming{
			Index: i,
			Kind:  line.EffectiveKind(),
			Part:  line.EffectivePart(),
		}

		if lt.Kind.HasFiller() && len(line.Phrases) == 0 {
			var next *lyric.Line
			if i+1 < len(c) {
				next = &c[i+1]
			}
			lt.Main = fillerTiming(line.Start(), next)
		} else {
			lt.Main = NewTrackTiming(line.Track)
		}

		span := lt.Main.Total
		if span <= 0 {
			span = FallbackSpan
		}
		lt.End = lt.Main.Start + span

		if line.Background != nil {
			bg := NewTrackTiming(*line.Background)
			lt.Background = &bg
		}

		out[i] = lt
	}
	return out
}

// Contains reports whether t falls inside the line's active window,
// which opens LeadTolerance before the main start and closes at WindowEnd.
// A timed background track keeps the line active until it ends, including
// any gap after the main phrases.
func (lt LineTiming) Contains(t float64) bool {
	return t >= lt.Main.Start-LeadTolerance && t < lt.WindowEnd()
}

// WindowEnd is the exclusive end of the active window.
func (lt LineTiming) WindowEnd() float64 {
	end := lt.End
	if bg := lt.Background; bg != nil && bg.Total > 0 {
		end = math.Max(end, bg.Start+bg.Total)
	}
	return end + TrailTolerance
}

// Progress returns how far playback at t is through a phrase, in [0, 1].
// Zero-length and not-yet-reached phrases report 0.
func Progress(t, lineStart, delay, duration float64) float64 {
	if duration <= 0 || math.IsNaN(duration) {
		return 0
	}
	elapsed := t - lineStart
	if elapsed < delay {
		return 0
	}
	p := (elapsed - delay) / duration
	if math.IsNaN(p) {
		return 0
	}
	return math.Min(1, math.Max(0, p))
}

// Primary returns the line used for scroll/focus: the last active index
// in array order, or -1.
func Primary(active []int) int {
	if len(active) == 0 {
		return -1
	}
	return active[len(active)-1]
}

// CurrentIndex returns the editor focus line for t: scanning in array
// order, the last line whose start is at or before t, stopping at the
// first line that starts after t. -1 when t precedes the first line.
func CurrentIndex(c lyric.Collection, t float64) int {
	index := -1
	for i, line := range c {
		if t >= line.Start() {
			index = i
		} else {
			break
		}
	}
	return index
}
