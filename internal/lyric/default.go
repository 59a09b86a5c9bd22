package lyric

import (
	_ "embed"
	"fmt"
)

//go:embed default.json
var defaultDocument []byte

// Default returns the sample collection a new session starts with.
func Default() Collection {
	c, err := Unmarshal(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("embedded default lyrics: %v", err))
	}
	return c
}
