package lyric

import (
	"fmt"

	"github.com/mgpai22/lyricsync/internal/timecode"
)

// tolerated but suspicious state found by Validate
type Issue struct {
	Line       int
	Background bool
	Message    string
}

func (i Issue) String() string {
	where := fmt.Sprintf("line %d", i.Line)
	if i.Background {
		where += " (background)"
	}
	return where + ": " + i.Message
}

// Validate lists states the data model tolerates but an author most likely
// did not intend. Nothing here blocks playback or export.
func (c Collection) Validate() []Issue {
	var issues []Issue
	for i, l := range c {
		issues = append(issues, l.Track.validate(i, false)...)

		if l.EffectiveKind().IsMarker() && len(l.Phrases) > 0 {
			issues = append(issues, Issue{
				Line:    i,
				Message: fmt.Sprintf("%s line carries phrases; they are timed as authored", l.EffectiveKind()),
			})
		}
		if l.Background != nil {
			issues = append(issues, l.Background.validate(i, true)...)
			if l.EffectiveKind().IsMarker() {
				issues = append(issues, Issue{
					Line:       i,
					Background: true,
					Message:    fmt.Sprintf("%s line has a background voice", l.EffectiveKind()),
				})
			}
		}
	}
	return issues
}

func (t Track) validate(line int, bg bool) []Issue {
	var issues []Issue
	if !timecode.Valid(t.Time) {
		issues = append(issues, Issue{
			Line:       line,
			Background: bg,
			Message:    fmt.Sprintf("time %q is not MM:SS.cc; it reads as %s", t.Time, timecode.Format(t.Start(), timecode.PrecisionCentiseconds)),
		})
	}
	for p, phrase := range t.Phrases {
		if phrase.Duration < 0 {
			issues = append(issues, Issue{
				Line:       line,
				Background: bg,
				Message:    fmt.Sprintf("phrase %d has negative duration %g", p, phrase.Duration),
			})
		}
	}
	return issues
}
