// Package summary builds a keyword-driven abstract from paragraph blocks.
package summary

import (
	"sort"
	"strings"

	"docintel/internal/domain"
)

// FallbackText is the summary text used when no sentence matches a keyword.
const FallbackText = "The document content is limited. Provided keywords indicate the primary subject matter."

// Summarizer scores sentences against keywords.
type Summarizer struct {
	splitter *Splitter
}

// New creates a Summarizer using the given abbreviation list.
func New(abbreviations []string) *Summarizer {
	return &Summarizer{splitter: NewSplitter(abbreviations)}
}

// ParseKeywords splits a comma-separated keyword string, trimming entries,
// dropping empties and removing case-insensitive duplicates.
func ParseKeywords(raw string) []string {
	return normalizeKeywords(strings.Split(raw, ","))
}

func normalizeKeywords(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, k := range in {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		lk := strings.ToLower(k)
		if seen[lk] {
			continue
		}
		seen[lk] = true
		out = append(out, k)
	}
	return out
}

// Score counts case-insensitive, non-overlapping occurrences of every keyword
// in sentence. Repeated mentions all count.
func Score(sentence string, keywords []string) int {
	s := strings.ToLower(sentence)
	total := 0
	for _, k := range keywords {
		total += strings.Count(s, strings.ToLower(k))
	}
	return total
}

// Summarize selects up to maxSentences of the highest-scoring sentences from
// the paragraph blocks and returns them in document order. Ties keep document
// order. Sentences scoring zero are never selected, so an abstract with no
// keyword match is empty. Non-paragraph blocks are ignored.
func (s *Summarizer) Summarize(paragraphs []domain.Block, keywords []string, maxSentences int) domain.Abstract {
	keywords = normalizeKeywords(keywords)
	abstract := domain.Abstract{Keywords: keywords, Sentences: []domain.ScoredSentence{}}
	if len(keywords) == 0 || maxSentences <= 0 {
		return abstract
	}

	var scored []domain.ScoredSentence
	pos := 0
	for _, b := range paragraphs {
		if b.Kind != domain.BlockParagraph {
			continue
		}
		for _, sentence := range s.splitter.Split(b.Paragraph.Text) {
			scored = append(scored, domain.ScoredSentence{Text: sentence, Score: Score(sentence, keywords), Position: pos})
			pos++
		}
	}

	ranked := make([]domain.ScoredSentence, 0, len(scored))
	for _, sc := range scored {
		if sc.Score > 0 {
			ranked = append(ranked, sc)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > maxSentences {
		ranked = ranked[:maxSentences]
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Position < ranked[j].Position })

	abstract.Sentences = append(abstract.Sentences, ranked...)
	return abstract
}

// Text renders an abstract as prose: the selected sentences joined by a
// space, or FallbackText when there are none.
func Text(a domain.Abstract) string {
	if a.IsEmpty() {
		return FallbackText
	}
	parts := make([]string, len(a.Sentences))
	for i, sc := range a.Sentences {
		parts[i] = sc.Text
	}
	return strings.Join(parts, " ")
}
