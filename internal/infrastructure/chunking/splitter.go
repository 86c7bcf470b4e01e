package chunking

import "strings"

type Splitter struct {
	ChunkSize    int
	Overlap      int
	MinChars     int
	MaxPageChars int
}

func NewSplitter(chunkSize, overlap, minChars, maxPageChars int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1200
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	if minChars < 0 {
		minChars = 0
	}
	if maxPageChars <= 0 {
		maxPageChars = 120000
	}
	return &Splitter{
		ChunkSize:    chunkSize,
		Overlap:      overlap,
		MinChars:     minChars,
		MaxPageChars: maxPageChars,
	}
}

// Split normalizes whitespace, caps pathological pages at MaxPageChars and
// slides a ChunkSize window with Overlap. Fragments below MinChars are
// dropped. The advance is guarded so the window always moves forward.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) > s.MaxPageChars {
		runes = runes[:s.MaxPageChars]
	}
	n := len(runes)
	if n == 0 {
		return nil
	}

	out := make([]string, 0, n/s.ChunkSize+1)
	i := 0
	for i < n {
		j := i + s.ChunkSize
		if j > n {
			j = n
		}
		if j-i >= s.MinChars {
			out = append(out, string(runes[i:j]))
		}
		if j == n {
			break
		}
		next := j - s.Overlap
		if next <= i {
			next = j
		}
		i = next
	}
	return out
}
