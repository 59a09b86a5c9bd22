package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mgpai22/lyricsync/internal/buffer"
	"github.com/mgpai22/lyricsync/internal/fsutil"
	"github.com/mgpai22/lyricsync/internal/lyric"
)

var ErrNotFound = errors.New("session not found")

// State is everything the editor keeps between commands.
type State struct {
	VideoID string
	// Video is an optional local media file used by preview and probe.
	Video  string
	Buffer *buffer.Buffer
}

type document struct {
	VideoID   string           `json:"video_id"`
	Video     string           `json:"video,omitempty"`
	Committed lyric.Collection `json:"committed"`
	Staged    lyric.Collection `json:"staged"`
}

func New(videoID string, initial lyric.Collection) *State {
	return &State{
		VideoID: videoID,
		Buffer:  buffer.New(initial),
	}
}

// Load reads a session file. A missing file is ErrNotFound.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", path, err)
	}
	if doc.Committed == nil {
		doc.Committed = lyric.Collection{}
	}
	if doc.Staged == nil {
		doc.Staged = doc.Committed.Clone()
	}

	return &State{
		VideoID: doc.VideoID,
		Video:   doc.Video,
		Buffer:  buffer.Restore(doc.Committed, doc.Staged),
	}, nil
}

// Save writes the session atomically, creating parent directories.
func (s *State) Save(path string) error {
	committed, staged := s.Buffer.Snapshot()
	doc := document{
		VideoID:   s.VideoID,
		Video:     s.Video,
		Committed: nonNil(committed),
		Staged:    nonNil(staged),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create session directory %s: %w", dir, err)
		}
	}
	if err := fsutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write session %s: %w", path, err)
	}
	return nil
}

// empty slots are stored as [] rather than null
func nonNil(c lyric.Collection) lyric.Collection {
	if c == nil {
		return lyric.Collection{}
	}
	return c
}
