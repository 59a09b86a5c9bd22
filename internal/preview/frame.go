package preview

import (
	"github.com/mgpai22/lyricsync/internal/highlight"
	"github.com/mgpai22/lyricsync/internal/timing"
)

// highlight params for one active line, parallel to its phrase states
type LineHighlights struct {
	Main       []highlight.Params
	Background []highlight.Params
}

// Frame is everything a renderer needs to draw one instant.
// Highlights is parallel to Snapshot.Lines.
type Frame struct {
	timing.Snapshot
	Highlights []LineHighlights
}

// Build resolves t and computes the highlight of every phrase of every
// active line.
func Build(r *timing.Resolver, t float64) Frame {
	snap := r.Resolve(t)
	f := Frame{
		Snapshot:   snap,
		Highlights: make([]LineHighlights, len(snap.Lines)),
	}
	for i, ls := range snap.Lines {
		f.Highlights[i].Main = compute(ls.Main)
		if ls.Background != nil {
			f.Highlights[i].Background = compute(*ls.Background)
		}
	}
	return f
}

func compute(ts timing.TrackState) []highlight.Params {
	out := make([]highlight.Params, len(ts.Phrases))
	for i, p := range ts.Phrases {
		out[i] = highlight.Compute(p.Progress, p.Emphasized)
	}
	return out
}
