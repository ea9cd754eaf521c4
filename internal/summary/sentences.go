package summary

import (
	"strings"
	"unicode"
)

// DefaultAbbreviations are tokens whose trailing period never ends a sentence.
var DefaultAbbreviations = []string{
	"mr.", "mrs.", "ms.", "dr.", "prof.", "sr.", "jr.", "st.", "vs.", "etc.",
	"e.g.", "i.e.", "inc.", "ltd.", "co.", "no.", "fig.", "approx.",
}

// Splitter cuts text into sentences. A boundary is sentence-terminal
// punctuation followed by whitespace and an upper-case letter, unless the
// word ending at the punctuation is a known abbreviation.
type Splitter struct {
	abbreviations map[string]bool
}

// NewSplitter creates a Splitter. Abbreviations are matched case-insensitively
// and include their trailing period.
func NewSplitter(abbreviations []string) *Splitter {
	m := make(map[string]bool, len(abbreviations))
	for _, a := range abbreviations {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if !strings.HasSuffix(a, ".") {
			a += "."
		}
		m[a] = true
	}
	return &Splitter{abbreviations: m}
}

// Split returns the trimmed, non-empty sentences of text in order.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && isTerminal(runes[j]) {
			j++
		}
		k := j
		for k < len(runes) && unicode.IsSpace(runes[k]) {
			k++
		}
		if k == j || k >= len(runes) || !unicode.IsUpper(runes[k]) {
			i = j - 1
			continue
		}
		if runes[i] == '.' && s.isAbbreviation(runes[start:j]) {
			i = j - 1
			continue
		}
		if sentence := strings.TrimSpace(string(runes[start:j])); sentence != "" {
			out = append(out, sentence)
		}
		start = k
		i = k - 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		out = append(out, tail)
	}
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// isAbbreviation reports whether the last word of chunk is a known abbreviation.
func (s *Splitter) isAbbreviation(chunk []rune) bool {
	end := len(chunk)
	begin := end
	for begin > 0 && !unicode.IsSpace(chunk[begin-1]) {
		begin--
	}
	word := strings.ToLower(strings.TrimLeft(string(chunk[begin:end]), "([{\"'"))
	return s.abbreviations[word]
}
