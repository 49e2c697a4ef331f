// Package chunker splits oversized documents into overlapping windows that
// stay under the completion service's input limit.
package chunker

import (
	"errors"
	"fmt"
	"strconv"

	"docsummarizer/internal/domain"
)

const (
	DefaultMaxSize = 4000
	DefaultOverlap = 200
	Separator      = '\n'
)

// Splitter cuts text into windows of at most maxSize characters that end on a
// separator. Consecutive windows share exactly overlap characters.
type Splitter struct {
	maxSize int
	overlap int
}

func New(maxSize int, overlap int) (*Splitter, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("max size must be positive, got %d", maxSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("overlap must not be negative, got %d", overlap)
	}
	if overlap >= maxSize {
		return nil, errors.New("overlap must be smaller than max size")
	}

	return &Splitter{maxSize: maxSize, overlap: overlap}, nil
}

func Default() *Splitter {
	return &Splitter{maxSize: DefaultMaxSize, overlap: DefaultOverlap}
}

func (s *Splitter) MaxSize() int {
	return s.maxSize
}

func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split returns the windows of doc as new documents carrying the source
// metadata plus a 1-based chunk number.
func (s *Splitter) Split(doc domain.Document) []domain.Document {
	windows := s.SplitText(doc.Content)

	docs := make([]domain.Document, 0, len(windows))
	for i, w := range windows {
		chunk := doc.Clone()
		chunk.Content = w
		if chunk.Metadata == nil {
			chunk.Metadata = make(map[string]any, 1)
		}
		chunk.Metadata[domain.MetaChunk] = strconv.Itoa(i + 1)

		docs = append(docs, chunk)
	}

	return docs
}

// SplitText is deterministic. A window can exceed maxSize only when no
// separator exists where the window would have to end; it then runs to the
// next separator or to the end of text.
func (s *Splitter) SplitText(text string) []string {
	runes := []rune(text)
	n := len(runes)

	if n == 0 {
		return nil
	}
	if n <= s.maxSize {
		return []string{text}
	}

	var windows []string
	start := 0

	for {
		if n-start <= s.maxSize {
			return append(windows, string(runes[start:]))
		}

		end := s.windowEnd(runes, start)
		windows = append(windows, string(runes[start:end]))

		if end >= n {
			return windows
		}

		start = end - s.overlap
	}
}

// windowEnd returns the exclusive end of the window that begins at start. The
// end is always past start+overlap so the next window makes progress.
func (s *Splitter) windowEnd(runes []rune, start int) int {
	limit := start + s.maxSize
	floor := start + s.overlap

	for i := limit; i > floor; i-- {
		if runes[i-1] == Separator {
			return i
		}
	}

	for i := limit; i < len(runes); i++ {
		if runes[i] == Separator {
			return i + 1
		}
	}

	return len(runes)
}

// Join reverses SplitText by dropping the shared prefix of every window after
// the first.
func Join(windows []string, overlap int) string {
	if len(windows) == 0 {
		return ""
	}

	out := []rune(windows[0])
	for _, w := range windows[1:] {
		r := []rune(w)
		if len(r) < overlap {
			out = append(out, r...)
			continue
		}

		out = append(out, r[overlap:]...)
	}

	return string(out)
}
