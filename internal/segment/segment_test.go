package segment_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulcrumlabs/docscope/internal/segment"
)

func TestNew_RejectsBadParameters(t *testing.T) {
	tests := []struct {
		name    string
		window  int
		overlap int
	}{
		{name: "zero window", window: 0, overlap: 0},
		{name: "negative window", window: -1, overlap: 0},
		{name: "overlap equals window", window: 10, overlap: 10},
		{name: "overlap exceeds window", window: 10, overlap: 20},
		{name: "negative overlap", window: 10, overlap: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := segment.New(tt.window, tt.overlap)
			require.Error(t, err)
			assert.ErrorIs(t, err, segment.ErrInvalidParameters)
		})
	}
}

func TestChunks_Reconstruction(t *testing.T) {
	texts := []string{
		"",
		"short",
		"Alpha line one. Beta line two. Gamma line three.",
		strings.Repeat("the quick brown fox jumps over the lazy dog. ", 40),
		"unicode: žluťoučký kůň úpěl ďábelské ódy, žluťoučký kůň úpěl ďábelské ódy",
	}
	params := []struct{ window, overlap int }{
		{20, 5}, {400, 100}, {7, 3}, {3, 0}, {2, 1},
	}

	for _, p := range params {
		seg, err := segment.New(p.window, p.overlap)
		require.NoError(t, err)

		for _, text := range texts {
			chunks := seg.Split(text)
			assert.Equal(t, text, segment.Join(chunks, p.overlap),
				"window=%d overlap=%d", p.window, p.overlap)
		}
	}
}

func TestChunks_AdjacentOverlap(t *testing.T) {
	const text = "Alpha line one. Beta line two. Gamma line three."

	seg, err := segment.New(20, 5)
	require.NoError(t, err)

	chunks := seg.Split(text)
	require.Len(t, chunks, 3)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := string(prev[len(prev)-5:])
		head := string([]rune(chunks[i])[:5])
		assert.Equal(t, tail, head, "chunks %d and %d must share a 5-rune overlap", i-1, i)
	}
}

func TestChunks_ShortText(t *testing.T) {
	seg, err := segment.New(400, 100)
	require.NoError(t, err)

	chunks := seg.Split("tiny document")
	require.Len(t, chunks, 1)
	assert.Equal(t, "tiny document", chunks[0])
}

func TestChunks_EmptyText(t *testing.T) {
	seg, err := segment.New(400, 100)
	require.NoError(t, err)
	assert.Empty(t, seg.Split(""))
}

func TestChunks_Restartable(t *testing.T) {
	seg, err := segment.New(10, 2)
	require.NoError(t, err)

	it := seg.Chunks("a restartable sequence of chunks")
	var first, second []string
	for c := range it {
		first = append(first, c)
	}
	for c := range it {
		second = append(second, c)
	}
	assert.Equal(t, first, second)
}

func TestChunks_EarlyBreak(t *testing.T) {
	seg, err := segment.New(5, 1)
	require.NoError(t, err)

	count := 0
	for range seg.Chunks(strings.Repeat("x", 100)) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}
