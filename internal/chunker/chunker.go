// Package chunker splits extracted document text into the fixed-size pieces
// that are embedded and stored individually.
package chunker

import "fmt"

// Chunk partitions text into consecutive non-overlapping pieces of exactly
// size characters (runes), except the final piece which holds the remainder.
// Concatenating the result in order reproduces text exactly. An empty text
// yields an empty slice.
func Chunk(text string, size int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if text == "" {
		return []string{}, nil
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}
