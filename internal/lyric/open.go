package lyric

import (
	"fmt"
	"os"

	"github.com/mgpai22/lyricsync/internal/fsutil"
)

// Open reads a lyric JSON document from disk.
func Open(path string) (Collection, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lyric file: %w", err)
	}
	defer file.Close()

	c, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// WriteFile writes c to path atomically.
func WriteFile(path string, c Collection) error {
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0o644)
}
