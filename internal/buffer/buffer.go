package buffer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mgpai22/lyricsync/internal/lyric"
	"github.com/mgpai22/lyricsync/internal/timecode"
	"github.com/mgpai22/lyricsync/internal/timing"
)

var ErrIndexOutOfRange = errors.New("index out of range")

// placeholder phrase for lines added by the editor
const (
	PlaceholderText     = "新行歌詞"
	PlaceholderDuration = 20
)

// Buffer holds the committed lyrics (what the preview plays) and the
// staged lyrics (what the editor changes). All reads return deep copies.
type Buffer struct {
	mu        sync.RWMutex
	committed lyric.Collection
	staged    lyric.Collection
}

func New(initial lyric.Collection) *Buffer {
	return &Buffer{
		committed: initial.Clone(),
		staged:    initial.Clone(),
	}
}

// Restore builds a buffer from both slots, as persisted by a session.
func Restore(committed, staged lyric.Collection) *Buffer {
	return &Buffer{
		committed: committed.Clone(),
		staged:    staged.Clone(),
	}
}

func (b *Buffer) Committed() lyric.Collection {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.committed.Clone()
}

func (b *Buffer) Staged() lyric.Collection {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.staged.Clone()
}

// Snapshot returns both slots under one lock.
func (b *Buffer) Snapshot() (committed, staged lyric.Collection) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.committed.Clone(), b.staged.Clone()
}

func (b *Buffer) HasUncommittedChanges() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !lyric.Equal(b.committed, b.staged)
}

// Commit publishes the staged lyrics. It reports false and changes
// nothing when there is nothing to commit.
func (b *Buffer) Commit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if lyric.Equal(b.committed, b.staged) {
		return false
	}
	b.committed = b.staged.Clone()
	return true
}

// Discard reverts the staged lyrics to the committed ones. It reports
// false and changes nothing when there is nothing to discard.
func (b *Buffer) Discard() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if lyric.Equal(b.committed, b.staged) {
		return false
	}
	b.staged = b.committed.Clone()
	return true
}

// Replace sets both slots, as when importing a document.
func (b *Buffer) Replace(c lyric.Collection) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.committed = c.Clone()
	b.staged = c.Clone()
}

// SetStaged replaces the staged lyrics wholesale.
func (b *Buffer) SetStaged(c lyric.Collection) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.staged = c.Clone()
}

// AddLine inserts a placeholder line stamped at t right after the line
// the editor is focused on at t, or appends it when nothing is focused.
// It returns the index of the new line.
func (b *Buffer) AddLine(t float64) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	line := lyric.NewLine(t, lyric.Phrase{Text: PlaceholderText, Duration: PlaceholderDuration})

	current := timing.CurrentIndex(b.staged, t)
	if current < 0 {
		b.staged = append(b.staged, line)
		return len(b.staged) - 1
	}

	at := current + 1
	next := make(lyric.Collection, 0, len(b.staged)+1)
	next = append(next, b.staged[:at]...)
	next = append(next, line)
	next = append(next, b.staged[at:]...)
	b.staged = next
	return at
}

// UpdateLine replaces the staged line at i.
func (b *Buffer) UpdateLine(i int, line lyric.Line) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkLine(i); err != nil {
		return err
	}
	b.staged[i] = line.Clone()
	return nil
}

func (b *Buffer) DeleteLine(i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkLine(i); err != nil {
		return err
	}
	next := make(lyric.Collection, 0, len(b.staged)-1)
	next = append(next, b.staged[:i]...)
	b.staged = append(next, b.staged[i+1:]...)
	return nil
}

// StampLineTime sets the start of line i (or of its background voice)
// to playback time t at centisecond precision.
func (b *Buffer) StampLineTime(i int, background bool, t float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	tr, err := b.track(i, background)
	if err != nil {
		return err
	}
	tr.Time = timecode.Format(t, timecode.PrecisionCentiseconds)
	return nil
}

// AddPhrase appends a placeholder phrase to line i.
func (b *Buffer) AddPhrase(i int, background bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	tr, err := b.track(i, background)
	if err != nil {
		return err
	}
	tr.Phrases = append(tr.Phrases, lyric.Phrase{Duration: PlaceholderDuration})
	return nil
}

func (b *Buffer) DeletePhrase(i int, background bool, p int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	tr, err := b.track(i, background)
	if err != nil {
		return err
	}
	if p < 0 || p >= len(tr.Phrases) {
		return fmt.Errorf("phrase %d of line %d: %w", p, i, ErrIndexOutOfRange)
	}
	phrases := make([]lyric.Phrase, 0, len(tr.Phrases)-1)
	phrases = append(phrases, tr.Phrases[:p]...)
	tr.Phrases = append(phrases, tr.Phrases[p+1:]...)
	return nil
}

// MovePhrase moves a phrase within line i, shifting the ones between.
func (b *Buffer) MovePhrase(i int, background bool, from, to int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	tr, err := b.track(i, background)
	if err != nil {
		return err
	}
	n := len(tr.Phrases)
	if from < 0 || from >= n {
		return fmt.Errorf("phrase %d of line %d: %w", from, i, ErrIndexOutOfRange)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("phrase %d of line %d: %w", to, i, ErrIndexOutOfRange)
	}
	if from == to {
		return nil
	}

	phrases := make([]lyric.Phrase, 0, n)
	moved := tr.Phrases[from]
	for k, p := range tr.Phrases {
		if k != from {
			phrases = append(phrases, p)
		}
	}
	phrases = append(phrases[:to], append([]lyric.Phrase{moved}, phrases[to:]...)...)
	tr.Phrases = phrases
	return nil
}

func (b *Buffer) checkLine(i int) error {
	if i < 0 || i >= len(b.staged) {
		return fmt.Errorf("line %d of %d: %w", i, len(b.staged), ErrIndexOutOfRange)
	}
	return nil
}

// track returns the staged track to edit; callers hold the write lock
func (b *Buffer) track(i int, background bool) (*lyric.Track, error) {
	if err := b.checkLine(i); err != nil {
		return nil, err
	}
	if !background {
		return &b.staged[i].Track, nil
	}
	if b.staged[i].Background == nil {
		return nil, fmt.Errorf("line %d has no background voice: %w", i, ErrIndexOutOfRange)
	}
	return b.staged[i].Background, nil
}
