package timing

import (
	"math"

	"github.com/mgpai22/lyricsync/internal/lyric"
)

// progress of one phrase at a given time
type PhraseState struct {
	Index      int
	Text       string
	Emphasized bool
	Delay      float64
	Duration   float64
	Progress   float64
}

// progress of one track of an active line
type TrackState struct {
	Start     float64
	Synthetic bool
	Phrases   []PhraseState
}

// an active line with per-phrase progress
type LineState struct {
	Index       int
	Kind        lyric.Kind
	Part        lyric.VocalPart
	Translation string
	Main        TrackState
	Background  *TrackState
	// BackgroundTranslation is empty when there is no background voice.
	BackgroundTranslation string
}

// resolver output for one playback time
type Snapshot struct {
	Time    float64
	Active  []int
	Primary int
	Lines   []LineState
}

// Resolver maps playback time to active lines and phrase progress for a
// fixed collection. It copies what it needs up front, so later edits to
// the collection do not affect it.
type Resolver struct {
	lines   lyric.Collection
	timings []LineTiming
}

func New(c lyric.Collection) *Resolver {
	lines := c.Clone()
	return &Resolver{
		lines:   lines,
		timings: Prepare(lines),
	}
}

// Timings exposes the prepared line timings.
func (r *Resolver) Timings() []LineTiming {
	return r.timings
}

// Len returns the number of lines.
func (r *Resolver) Len() int {
	return len(r.lines)
}

// Active returns every line whose window contains t, in array order.
func (r *Resolver) Active(t float64) []int {
	t = sanitize(t)
	active := []int{}
	for i, lt := range r.timings {
		if lt.Contains(t) {
			active = append(active, i)
		}
	}
	return active
}

// Resolve computes the full snapshot for t.
func (r *Resolver) Resolve(t float64) Snapshot {
	t = sanitize(t)
	active := r.Active(t)

	snap := Snapshot{
		Time:    t,
		Active:  active,
		Primary: Primary(active),
		Lines:   make([]LineState, 0, len(active)),
	}

	for _, idx := range active {
		line := r.lines[idx]
		lt := r.timings[idx]

		ls := LineState{
			Index:       idx,
			Kind:        lt.Kind,
			Part:        lt.Part,
			Translation: line.Translation,
			Main:        trackState(t, lt.Main, line.Phrases),
		}
		if lt.Background != nil {
			bg := trackState(t, *lt.Background, line.Background.Phrases)
			ls.Background = &bg
			ls.BackgroundTranslation = line.Background.Translation
		}
		snap.Lines = append(snap.Lines, ls)
	}

	return snap
}

func trackState(t float64, tt TrackTiming, phrases []lyric.Phrase) TrackState {
	ts := TrackState{
		Start:     tt.Start,
		Synthetic: tt.Synthetic,
		Phrases:   make([]PhraseState, len(tt.Delays)),
	}
	for i := range tt.Delays {
		ps := PhraseState{
			Index:    i,
			Delay:    tt.Delays[i],
			Duration: tt.Durations[i],
			Progress: Progress(t, tt.Start, tt.Delays[i], tt.Durations[i]),
		}
		if !tt.Synthetic && i < len(phrases) {
			ps.Text = phrases[i].Text
			ps.Emphasized = phrases[i].Emphasized
		}
		ts.Phrases[i] = ps
	}
	return ts
}

// non-finite playback times are treated as the start of the media
func sanitize(t float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0
	}
	return t
}
