package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mgpai22/lyricsync/internal/timecode"
)

// parseTime accepts MM:SS, MM:SS.cc or plain seconds.
func parseTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("time is required")
	}

	if timecode.Valid(s) {
		return timecode.Parse(s), nil
	}

	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("invalid time %q: use MM:SS.cc or seconds", s)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("invalid time %q: must not be negative", s)
	}
	return seconds, nil
}

func parseIndex(name, s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, s)
	}
	return i, nil
}

func parseIndexes(names []string, args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := parseIndex(names[i], a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
