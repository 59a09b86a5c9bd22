package translate

import (
	"strings"

	"github.com/mgpai22/lyricsync/internal/lyric"
)

// Item indices address tracks of a collection of n lines: i is the main
// track of line i, n+i is the background voice of line i.

// ItemsFromLines collects the tracks that need a translation. Marker lines
// and tracks without text are skipped, as are tracks that already have a
// translation unless overwrite is set.
func ItemsFromLines(c lyric.Collection, includeBackground, overwrite bool) []TranslationItem {
	n := len(c)
	var items []TranslationItem

	add := func(index int, tr lyric.Track) {
		text := strings.TrimSpace(tr.PhraseText())
		if text == "" {
			return
		}
		if tr.Translation != "" && !overwrite {
			return
		}
		items = append(items, TranslationItem{Index: index, Text: text})
	}

	for i, line := range c {
		if line.EffectiveKind().IsMarker() {
			continue
		}
		add(i, line.Track)
	}
	if includeBackground {
		for i, line := range c {
			if line.EffectiveKind().IsMarker() || line.Background == nil {
				continue
			}
			add(n+i, *line.Background)
		}
	}

	return items
}

// Apply returns a copy of c with the results written into the addressed
// tracks, and the result indices that address nothing.
func Apply(c lyric.Collection, results []TranslationResult) (lyric.Collection, []int) {
	out := c.Clone()
	n := len(out)

	var skipped []int
	for _, r := range results {
		switch {
		case r.Index >= 0 && r.Index < n:
			out[r.Index].Translation = r.Text
		case r.Index >= n && r.Index < 2*n && out[r.Index-n].Background != nil:
			out[r.Index-n].Background.Translation = r.Text
		default:
			skipped = append(skipped, r.Index)
		}
	}
	return out, skipped
}
