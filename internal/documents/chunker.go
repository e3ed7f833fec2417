package documents

import (
	"errors"
	"fmt"
)

// ErrInvalidChunkConfig is returned for a size/overlap pair that cannot make progress
var ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

// DocumentChunk is one bounded excerpt of a source document
type DocumentChunk struct {
	Text     string
	Metadata map[string]any
}

// Split cuts text into windows of at most size characters.
// Consecutive windows share exactly overlap characters, so the first size-overlap
// characters of every chunk but the last, followed by the whole last chunk,
// reproduce text. Empty text yields no chunks.
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidChunkConfig, size, overlap)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	step := size - overlap
	chunks := make([]string, 0, len(runes)/step+1)
	for start := 0; ; start += step {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
