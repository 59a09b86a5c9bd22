package buffer

import (
	"errors"
	"sync"
	"testing"

	"github.com/mgpai22/lyricsync/internal/lyric"
)

func sample() lyric.Collection {
	return lyric.Collection{
		lyric.NewMarker(lyric.KindPrelude, 0),
		lyric.NewLine(5, lyric.Phrase{Text: "a", Duration: 50}, lyric.Phrase{Text: "b", Duration: 50}),
		lyric.NewLine(10, lyric.Phrase{Text: "c", Duration: 100}),
		lyric.NewMarker(lyric.KindEnd, 20),
	}
}

func TestNewStartsClean(t *testing.T) {
	b := New(sample())
	if b.HasUncommittedChanges() {
		t.Error("new buffer should have no uncommitted changes")
	}
	if !lyric.Equal(b.Committed(), sample()) || !lyric.Equal(b.Staged(), sample()) {
		t.Error("both slots should hold the initial lyrics")
	}
}

func TestCommitNoOp(t *testing.T) {
	b := New(sample())
	before := b.Committed()

	if b.Commit() {
		t.Error("commit with no changes should report false")
	}
	if !lyric.Equal(b.Committed(), before) {
		t.Error("no-op commit changed committed lyrics")
	}
	if b.Discard() {
		t.Error("discard with no changes should report false")
	}
}

func TestCommit(t *testing.T) {
	b := New(sample())
	if err := b.StampLineTime(1, false, 6.5); err != nil {
		t.Fatalf("StampLineTime failed: %v", err)
	}
	if !b.HasUncommittedChanges() {
		t.Fatal("expected uncommitted changes after an edit")
	}

	stagedBefore := b.Staged()
	if !b.Commit() {
		t.Fatal("commit should report true")
	}
	if !lyric.Equal(b.Committed(), stagedBefore) {
		t.Error("committed should equal the staged lyrics before commit")
	}
	if b.HasUncommittedChanges() {
		t.Error("expected no uncommitted changes after commit")
	}
	if got := b.Committed()[1].Time; got != "00:06.50" {
		t.Errorf("expected 00:06.50, got %q", got)
	}
}

func TestDiscard(t *testing.T) {
	b := New(sample())
	if err := b.DeleteLine(2); err != nil {
		t.Fatalf("DeleteLine failed: %v", err)
	}
	if !b.Discard() {
		t.Fatal("discard should report true")
	}
	if !lyric.Equal(b.Staged(), sample()) {
		t.Error("discard should restore the committed lyrics")
	}
	if b.HasUncommittedChanges() {
		t.Error("expected no uncommitted changes after discard")
	}
}

func TestReadsAreCopies(t *testing.T) {
	b := New(sample())
	staged := b.Staged()
	staged[1].Phrases[0].Text = "changed"
	committed := b.Committed()
	committed[2].Time = "09:99.99"

	if b.HasUncommittedChanges() {
		t.Error("mutating returned collections leaked into the buffer")
	}
}

func TestReplace(t *testing.T) {
	b := New(sample())
	if err := b.DeleteLine(0); err != nil {
		t.Fatalf("DeleteLine failed: %v", err)
	}

	b.Replace(lyric.Default())
	if !lyric.Equal(b.Committed(), lyric.Default()) || !lyric.Equal(b.Staged(), lyric.Default()) {
		t.Error("replace should set both slots")
	}
	if b.HasUncommittedChanges() {
		t.Error("expected no uncommitted changes after replace")
	}
}

func TestAddLine(t *testing.T) {
	tests := []struct {
		name  string
		at    float64
		index int
		time  string
	}{
		{"after focused line", 7.25, 2, "00:07.25"},
		{"after prelude", 1, 1, "00:01.00"},
		{"after last line", 30, 4, "00:30.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(sample())
			got := b.AddLine(tt.at)
			if got != tt.index {
				t.Fatalf("expected index %d, got %d", tt.index, got)
			}

			staged := b.Staged()
			if len(staged) != 5 {
				t.Fatalf("expected 5 lines, got %d", len(staged))
			}
			line := staged[got]
			if line.Time != tt.time {
				t.Errorf("expected time %q, got %q", tt.time, line.Time)
			}
			if len(line.Phrases) != 1 || line.Phrases[0].Text != PlaceholderText || line.Phrases[0].Duration != PlaceholderDuration {
				t.Errorf("unexpected placeholder: %+v", line.Phrases)
			}
			if len(b.Committed()) != 4 {
				t.Error("AddLine must not touch committed lyrics")
			}
		})
	}
}

func TestAddLineBeforeFirstLineAppends(t *testing.T) {
	b := New(lyric.Collection{lyric.NewLine(10)})
	if got := b.AddLine(2); got != 1 {
		t.Errorf("expected append at 1, got %d", got)
	}

	empty := New(nil)
	if got := empty.AddLine(0); got != 0 {
		t.Errorf("expected 0 for empty buffer, got %d", got)
	}
}

func TestIndexErrorsLeaveStateUnchanged(t *testing.T) {
	tests := []struct {
		name string
		fn   func(b *Buffer) error
	}{
		{"update", func(b *Buffer) error { return b.UpdateLine(9, lyric.Line{}) }},
		{"delete negative", func(b *Buffer) error { return b.DeleteLine(-1) }},
		{"stamp", func(b *Buffer) error { return b.StampLineTime(4, false, 1) }},
		{"stamp missing background", func(b *Buffer) error { return b.StampLineTime(1, true, 1) }},
		{"add phrase", func(b *Buffer) error { return b.AddPhrase(10, false) }},
		{"delete phrase", func(b *Buffer) error { return b.DeletePhrase(1, false, 2) }},
		{"move phrase from", func(b *Buffer) error { return b.MovePhrase(1, false, 5, 0) }},
		{"move phrase to", func(b *Buffer) error { return b.MovePhrase(1, false, 0, -1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(sample())
			err := tt.fn(b)
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("expected ErrIndexOutOfRange, got %v", err)
			}
			if b.HasUncommittedChanges() {
				t.Error("failed edit changed staged lyrics")
			}
		})
	}
}

func TestPhraseEdits(t *testing.T) {
	b := New(sample())

	if err := b.AddPhrase(2, false); err != nil {
		t.Fatalf("AddPhrase failed: %v", err)
	}
	if err := b.MovePhrase(2, false, 1, 0); err != nil {
		t.Fatalf("MovePhrase failed: %v", err)
	}
	phrases := b.Staged()[2].Phrases
	if len(phrases) != 2 || phrases[0].Text != "" || phrases[1].Text != "c" {
		t.Errorf("unexpected phrases after move: %+v", phrases)
	}

	if err := b.DeletePhrase(2, false, 0); err != nil {
		t.Fatalf("DeletePhrase failed: %v", err)
	}
	if b.HasUncommittedChanges() {
		t.Error("add, move and delete should net out to no change")
	}
}

func TestMovePhraseOrder(t *testing.T) {
	line := lyric.NewLine(0,
		lyric.Phrase{Text: "a"}, lyric.Phrase{Text: "b"},
		lyric.Phrase{Text: "c"}, lyric.Phrase{Text: "d"},
	)

	tests := []struct {
		from, to int
		want     string
	}{
		{0, 3, "bcda"},
		{3, 0, "dabc"},
		{1, 2, "acbd"},
		{2, 2, "abcd"},
	}
	for _, tt := range tests {
		b := New(lyric.Collection{line})
		if err := b.MovePhrase(0, false, tt.from, tt.to); err != nil {
			t.Fatalf("MovePhrase failed: %v", err)
		}
		if got := b.Staged()[0].PhraseText(); got != tt.want {
			t.Errorf("move %d->%d: expected %q, got %q", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestStampBackground(t *testing.T) {
	b := New(lyric.Default())
	if err := b.StampLineTime(1, true, 52.5); err != nil {
		t.Fatalf("StampLineTime failed: %v", err)
	}
	staged := b.Staged()
	if got := staged[1].Background.Time; got != "00:52.50" {
		t.Errorf("expected background 00:52.50, got %q", got)
	}
	if got := staged[1].Time; got != "00:51.56" {
		t.Errorf("main time should be untouched, got %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	b := New(sample())
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = b.StampLineTime(1, false, float64(i))
			b.Commit()
		}(i)
		go func() {
			defer wg.Done()
			c, s := b.Snapshot()
			if len(c) != len(s) {
				t.Errorf("torn read: %d vs %d lines", len(c), len(s))
			}
		}()
	}
	wg.Wait()
}
