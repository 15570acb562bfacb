package ingest

import (
	"strings"
	"unicode/utf8"
)

var defaultSeparators = []string{"\n\n\n", "\n\n", "\n", ". ", ", ", " "}

// Splitter cuts text into pieces of at most Size runes, preferring the
// coarsest separator that occurs in the text. Adjacent pieces share up to
// Overlap runes of context.
type Splitter struct {
	Size       int
	Overlap    int
	Separators []string
}

func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 1500
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 2
	}
	return &Splitter{Size: size, Overlap: overlap, Separators: defaultSeparators}
}

func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.split(text, s.Separators)
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func (s *Splitter) split(text string, separators []string) []string {
	sep := ""
	rest := []string(nil)
	for i, candidate := range separators {
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		pieces = splitRunes(text)
	} else {
		pieces = strings.Split(text, sep)
	}

	var out, small []string
	for _, p := range pieces {
		if p == "" {
			continue
		}
		if runeLen(p) <= s.Size {
			small = append(small, p)
			continue
		}
		if len(small) > 0 {
			out = append(out, s.merge(small, sep)...)
			small = nil
		}
		if sep == "" {
			out = append(out, p)
		} else {
			out = append(out, s.split(p, rest)...)
		}
	}
	if len(small) > 0 {
		out = append(out, s.merge(small, sep)...)
	}
	return out
}

// merge packs pieces into chunks up to Size, carrying a tail of at most
// Overlap runes into the next chunk.
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)
	var (
		out     []string
		current []string
		total   int
	)
	joinedLen := func(extra int) int {
		if len(current) == 0 {
			return extra
		}
		return total + sepLen + extra
	}
	for _, p := range pieces {
		n := runeLen(p)
		if joinedLen(n) > s.Size && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
				out = append(out, chunk)
			}
			for len(current) > 0 && (total > s.Overlap || joinedLen(n) > s.Size) {
				total -= runeLen(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, p)
		total += n
	}
	if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
		out = append(out, chunk)
	}
	return out
}

func splitRunes(text string) []string {
	out := make([]string, 0, len(text))
	for _, r := range text {
		out = append(out, string(r))
	}
	return out
}
