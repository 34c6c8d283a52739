package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecursiveSplitterShortTextIsOneChunk(t *testing.T) {
	s := NewRecursiveSplitter(1000, 200)
	assert.Equal(t, []string{"Drink plenty of water."}, s.Split("  Drink plenty of water.  \n"))
}

func TestRecursiveSplitterEmptyText(t *testing.T) {
	s := NewRecursiveSplitter(1000, 200)
	assert.Empty(t, s.Split("   \n\n  "))
}

func TestRecursiveSplitterParagraphs(t *testing.T) {
	s := &RecursiveSplitter{ChunkSize: 9, ChunkOverlap: 0, Separators: DefaultSeparators}
	got := s.Split("aaaa\n\nbbbb\n\ncccc")
	assert.Equal(t, []string{"aaaa", "bbbb", "cccc"}, got)
}

func TestRecursiveSplitterOverlapCarriesTrailingWords(t *testing.T) {
	s := &RecursiveSplitter{ChunkSize: 10, ChunkOverlap: 4, Separators: DefaultSeparators}
	got := s.Split("one two three four")
	assert.Equal(t, []string{"one two", "two three", "four"}, got)
}

func TestRecursiveSplitterFallsBackToCharacters(t *testing.T) {
	s := &RecursiveSplitter{ChunkSize: 4, ChunkOverlap: 0, Separators: DefaultSeparators}
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, s.Split("abcdefghij"))
}

func TestRecursiveSplitterCountsRunes(t *testing.T) {
	s := &RecursiveSplitter{ChunkSize: 3, ChunkOverlap: 0, Separators: DefaultSeparators}
	assert.Equal(t, []string{"αβγ", "δε"}, s.Split("αβγδε"))
}

func TestRecursiveSplitterRespectsChunkSize(t *testing.T) {
	para := strings.Repeat("Kidney function declines slowly. ", 40)
	text := para + "\n\n" + para + "\n" + para
	s := NewRecursiveSplitter(200, 50)

	chunks := s.Split(text)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, runeLen(c), 200)
		assert.Equal(t, strings.TrimSpace(c), c)
		assert.NotEmpty(t, c)
	}
}

func TestNewRecursiveSplitterClampsOverlap(t *testing.T) {
	s := NewRecursiveSplitter(100, 100)
	assert.Equal(t, 0, s.ChunkOverlap)
	assert.Equal(t, 1000, NewRecursiveSplitter(0, 0).ChunkSize)
}
