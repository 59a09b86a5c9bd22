package timecode

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// output precision for Format
type Precision int

const (
	PrecisionSeconds      Precision = 0 // MM:SS
	PrecisionCentiseconds Precision = 1 // MM:SS.cc
)

// only the leading MM:SS[.frac] group is read; anything after it is ignored
var timeRegexp = regexp.MustCompile(`^\s*(\d+):(\d+)(?:\.(\d+))?`)

var canonicalRegexp = regexp.MustCompile(`^\d{2,}:[0-5]\d(\.\d{2})?$`)

// Parse converts an MM:SS or MM:SS.cc string to seconds.
// Empty or malformed input yields 0; strings typed live in the editor are
// often incomplete, so this never fails.
func Parse(text string) float64 {
	matches := timeRegexp.FindStringSubmatch(text)
	if matches == nil {
		return 0
	}

	minutes, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0
	}
	seconds, err := strconv.ParseInt(matches[2], 10, 64)
	if err != nil {
		return 0
	}

	total := float64(minutes*60 + seconds)
	// the digits after the dot count centiseconds whatever their width,
	// so "00:10.5" is 10.05s
	if matches[3] != "" {
		centis, err := strconv.ParseInt(matches[3], 10, 64)
		if err != nil {
			return 0
		}
		total += float64(centis) / 100
	}

	return total
}

// Valid reports whether text is in canonical MM:SS or MM:SS.cc form.
func Valid(text string) bool {
	return canonicalRegexp.MatchString(text)
}

// Format renders seconds as MM:SS or MM:SS.cc.
func Format(seconds float64, p Precision) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}

	// round on total centiseconds so .cc never overflows to 100
	centis := int64(math.Round(seconds * 100))
	minutes := centis / 6000
	secs := (centis / 100) % 60
	cc := centis % 100

	if p == PrecisionSeconds {
		return fmt.Sprintf("%02d:%02d", minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d.%02d", minutes, secs, cc)
}
