// Package segment splits document text into overlapping fixed-size chunks.
//
// Chunks are the atomic retrievable unit: each chunk of a document is
// embedded and indexed independently, and the overlap between consecutive
// chunks keeps facts from being cut in half at a chunk boundary.
package segment

import (
	"errors"
	"fmt"
	"iter"
)

// ErrInvalidParameters is returned for a non-positive window or an overlap
// that is not strictly smaller than the window.
var ErrInvalidParameters = errors.New("invalid segmenter parameters")

// Default window/overlap sizes, in runes. A 400-rune window with a 100-rune
// overlap keeps a salient sentence from falling entirely on a boundary.
const (
	DefaultWindow  = 400
	DefaultOverlap = 100
)

// Segmenter produces overlapping fixed-size chunks from text.
//
// Window and overlap are measured in runes. Consecutive chunks share exactly
// Overlap runes; the final chunk may be shorter than Window. Segmentation has
// no side effects and is independent of any namespace.
type Segmenter struct {
	window  int
	overlap int
}

// New creates a Segmenter. Fails with ErrInvalidParameters unless
// 0 <= overlap < window.
func New(window, overlap int) (*Segmenter, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: window must be positive, got %d", ErrInvalidParameters, window)
	}
	if overlap < 0 || overlap >= window {
		return nil, fmt.Errorf("%w: overlap must satisfy 0 <= overlap < window, got overlap=%d window=%d", ErrInvalidParameters, overlap, window)
	}
	return &Segmenter{window: window, overlap: overlap}, nil
}

// Window returns the chunk window size in runes.
func (s *Segmenter) Window() int { return s.window }

// Overlap returns the overlap size in runes.
func (s *Segmenter) Overlap() int { return s.overlap }

// Chunks returns a lazy, restartable sequence of chunks of text.
//
// The sequence is finite and can be ranged over any number of times.
// Empty text yields no chunks. Joining the first chunk with every
// subsequent chunk minus its leading overlap reconstructs text exactly.
func (s *Segmenter) Chunks(text string) iter.Seq[string] {
	runes := []rune(text)
	step := s.window - s.overlap

	return func(yield func(string) bool) {
		for start := 0; start < len(runes); start += step {
			end := start + s.window
			if end > len(runes) {
				end = len(runes)
			}
			if !yield(string(runes[start:end])) {
				return
			}
			if end == len(runes) {
				return
			}
		}
	}
}

// Split materializes Chunks into a slice.
func (s *Segmenter) Split(text string) []string {
	var chunks []string
	for chunk := range s.Chunks(text) {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// Join reconstructs the original text from chunks produced by a segmenter
// with the given overlap. It is the inverse of Split.
func Join(chunks []string, overlap int) string {
	if len(chunks) == 0 {
		return ""
	}
	out := []rune(chunks[0])
	for _, chunk := range chunks[1:] {
		runes := []rune(chunk)
		if overlap < len(runes) {
			out = append(out, runes[overlap:]...)
		}
	}
	return string(out)
}
