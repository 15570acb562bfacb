package prompt

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates how many model tokens a text costs.
type TokenCounter func(string) int

// RuneCounter is a coarse estimate used when no encoder is available.
// Cyrillic text averages roughly three runes per token.
func RuneCounter(s string) int {
	return (utf8.RuneCountInString(s) + 2) / 3
}

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

// TiktokenCounter counts with the cl100k_base encoding, falling back to
// RuneCounter when the encoding cannot be loaded.
func TiktokenCounter() TokenCounter {
	encOnce.Do(func() {
		e, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			enc = e
		}
	})
	if enc == nil {
		return RuneCounter
	}
	return func(s string) int {
		return len(enc.Encode(s, nil, nil))
	}
}
