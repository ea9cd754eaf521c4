// Package contact finds email addresses, phone numbers and URLs in block text.
package contact

import (
	"regexp"
	"sort"
	"strings"

	"docintel/internal/domain"
)

var (
	urlPattern   = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"']+`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	// Digit groups joined by at most one separator, so " - " ends a number.
	phonePattern = regexp.MustCompile(`\+?(?:\(\d+\)|\d)(?:[ \t.-]?(?:\(\d+\)|\d))+`)
	datePrefix   = regexp.MustCompile(`^(?:\d{4}-\d{2}-\d{2}|\d{2}[./-]\d{2}[./-]\d{4})\b`)
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

type span struct{ start, end int }

func overlaps(s span, taken []span) bool {
	for _, t := range taken {
		if s.start < t.end && t.start < s.end {
			return true
		}
	}
	return false
}

type match struct {
	span
	kind  domain.ContactKind
	value string
}

// Extract returns the contacts found in blocks, ordered by block and then by
// position in the block text. Text claimed by a URL is not matched again as
// an email or phone, and text claimed by an email is not matched as a phone.
func Extract(blocks []domain.Block) []domain.Contact {
	var out []domain.Contact
	for i, b := range blocks {
		for _, m := range scan(b.Text()) {
			out = append(out, domain.Contact{Kind: m.kind, Value: m.value, PageIndex: b.PageIndex, BlockIndex: i})
		}
	}
	return out
}

func scan(text string) []match {
	var taken []span
	var found []match

	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && text[loc[0]-1] == '@' {
			continue
		}
		value := strings.TrimRight(text[loc[0]:loc[1]], ".,;:!?)]}")
		s := span{loc[0], loc[0] + len(value)}
		taken = append(taken, s)
		found = append(found, match{span: s, kind: domain.ContactURL, value: value})
	}

	for _, loc := range emailPattern.FindAllStringIndex(text, -1) {
		s := span{loc[0], loc[1]}
		if overlaps(s, taken) {
			continue
		}
		taken = append(taken, s)
		found = append(found, match{span: s, kind: domain.ContactEmail, value: text[loc[0]:loc[1]]})
	}

	for _, loc := range phonePattern.FindAllStringIndex(text, -1) {
		s := span{loc[0], loc[1]}
		if overlaps(s, taken) {
			continue
		}
		value := strings.TrimSpace(text[loc[0]:loc[1]])
		if !plausiblePhone(value) {
			continue
		}
		taken = append(taken, s)
		found = append(found, match{span: s, kind: domain.ContactPhone, value: value})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].start < found[j].start })
	return found
}

func plausiblePhone(v string) bool {
	if datePrefix.MatchString(v) {
		return false
	}
	digits := 0
	for _, r := range v {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigits && digits <= maxPhoneDigits
}
