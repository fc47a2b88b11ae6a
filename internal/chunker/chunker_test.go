package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_PartitionsExactly(t *testing.T) {
	text := strings.Repeat("A", 2500)

	chunks, err := Chunk(text, 1000)
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 1000)
	assert.Len(t, chunks[1], 1000)
	assert.Len(t, chunks[2], 500)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestChunk_ExactMultiple(t *testing.T) {
	chunks, err := Chunk(strings.Repeat("x", 300), 100)
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Len(t, c, 100)
	}
}

func TestChunk_ShorterThanSize(t *testing.T) {
	chunks, err := Chunk("short", 1000)
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0])
}

func TestChunk_EmptyText(t *testing.T) {
	chunks, err := Chunk("", 1000)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunk_NonPositiveSize(t *testing.T) {
	_, err := Chunk("anything", 0)
	require.Error(t, err)

	_, err = Chunk("anything", -5)
	require.Error(t, err)
}

func TestChunk_CountsRunesNotBytes(t *testing.T) {
	text := strings.Repeat("ü", 10) // 20 bytes, 10 runes

	chunks, err := Chunk(text, 4)
	require.NoError(t, err)

	require.Len(t, chunks, 3) // 4 + 4 + 2 runes
	assert.Equal(t, "üüüü", chunks[0])
	assert.Equal(t, "üü", chunks[2])
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestChunk_OrderPreserved(t *testing.T) {
	chunks, err := Chunk("abcdefghij", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "def", "ghi", "j"}, chunks)
}
