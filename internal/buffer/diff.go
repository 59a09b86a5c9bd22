package buffer

import (
	"strings"

	"github.com/mgpai22/lyricsync/internal/lyric"
)

type Op int

const (
	OpEqual Op = iota
	OpDelete
	OpAdd
)

// change runs at least this long are shown as all deletions, then all
// additions, instead of interleaved
const regroupThreshold = 5

type DiffLine struct {
	Op   Op
	Text string
}

func (d DiffLine) String() string {
	switch d.Op {
	case OpDelete:
		return "- " + d.Text
	case OpAdd:
		return "+ " + d.Text
	default:
		return d.Text
	}
}

// Diff compares two JSON documents line by line. It looks one line
// ahead on each side to tell insertions and deletions from in-place
// modifications.
func Diff(committedJSON, stagedJSON string) []DiffLine {
	a := strings.Split(strings.TrimSpace(committedJSON), "\n")
	b := strings.Split(strings.TrimSpace(stagedJSON), "\n")

	var raw []DiffLine
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i < len(a) && j < len(b) && a[i] == b[j]:
			raw = append(raw, DiffLine{OpEqual, a[i]})
			i++
			j++
		case i < len(a) && j < len(b) && i+1 < len(a) && a[i+1] == b[j]:
			raw = append(raw, DiffLine{OpDelete, a[i]})
			i++
		case i < len(a) && j < len(b) && j+1 < len(b) && b[j+1] == a[i]:
			raw = append(raw, DiffLine{OpAdd, b[j]})
			j++
		case i >= len(a):
			raw = append(raw, DiffLine{OpAdd, b[j]})
			j++
		case j >= len(b):
			raw = append(raw, DiffLine{OpDelete, a[i]})
			i++
		default:
			raw = append(raw, DiffLine{OpDelete, a[i]}, DiffLine{OpAdd, b[j]})
			i++
			j++
		}
	}

	return regroup(raw)
}

func regroup(raw []DiffLine) []DiffLine {
	out := make([]DiffLine, 0, len(raw))
	var chunk []DiffLine

	flush := func() {
		if len(chunk) >= regroupThreshold {
			for _, d := range chunk {
				if d.Op == OpDelete {
					out = append(out, d)
				}
			}
			for _, d := range chunk {
				if d.Op == OpAdd {
					out = append(out, d)
				}
			}
		} else {
			out = append(out, chunk...)
		}
		chunk = chunk[:0]
	}

	for _, d := range raw {
		if d.Op != OpEqual {
			chunk = append(chunk, d)
			continue
		}
		flush()
		out = append(out, d)
	}
	flush()

	return out
}

// Diff compares the encoded committed and staged lyrics. Slots that are
// lyric.Equal produce an unchanged diff even when their encodings differ
// only in optional keys, such as an explicit "kiai": false.
func (b *Buffer) Diff() ([]DiffLine, error) {
	committed, staged := b.Snapshot()

	after, err := lyric.Marshal(staged)
	if err != nil {
		return nil, err
	}
	if lyric.Equal(committed, staged) {
		return Diff(string(after), string(after)), nil
	}
	before, err := lyric.Marshal(committed)
	if err != nil {
		return nil, err
	}
	return Diff(string(before), string(after)), nil
}

// Changed reports whether any line of the diff is an addition or deletion.
func Changed(diff []DiffLine) bool {
	for _, d := range diff {
		if d.Op != OpEqual {
			return true
		}
	}
	return false
}
