package structure

import (
	"strings"
	"unicode"
)

type lineKind int

const (
	lineParagraph lineKind = iota
	lineHeading
	lineKeyValue
)

type keyValue struct {
	key, sep, value string
}

// splitKeyValue detects a label-separator-value line. The first qualifying
// separator wins. A '-' only separates when whitespace is next to it, and a
// ':' is skipped inside times ("10:30") and URL schemes ("https://"). The
// key must have fewer than wordCap words.
func splitKeyValue(text, separators string, wordCap int) (keyValue, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return keyValue{}, false
	}
	if onlySeparators(text, separators) {
		r := []rune(text)
		return keyValue{sep: string(r[0])}, true
	}

	runes := []rune(text)
	for i, r := range runes {
		if !strings.ContainsRune(separators, r) || !isSeparatorAt(runes, i) {
			continue
		}
		key := strings.TrimSpace(string(runes[:i]))
		value := strings.TrimSpace(string(runes[i+1:]))
		if key == "" || value == "" {
			return keyValue{}, false
		}
		if len(strings.Fields(key)) >= wordCap {
			return keyValue{}, false
		}
		return keyValue{key: key, sep: string(r), value: value}, true
	}
	return keyValue{}, false
}

func isSeparatorAt(runes []rune, i int) bool {
	prevSpace := i == 0 || unicode.IsSpace(runes[i-1])
	nextSpace := i == len(runes)-1 || unicode.IsSpace(runes[i+1])
	switch runes[i] {
	case '-':
		return prevSpace || nextSpace
	case ':':
		if i > 0 && i < len(runes)-1 && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
			return false
		}
		if i+2 < len(runes) && runes[i+1] == '/' && runes[i+2] == '/' {
			return false
		}
	}
	return true
}

func onlySeparators(text, separators string) bool {
	seen := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
		case strings.ContainsRune(separators, r):
			seen = true
		default:
			return false
		}
	}
	return seen
}

// isShoutedHeading reports whether text is entirely upper case, has at least
// one letter and fewer than wordCap words.
func isShoutedHeading(text string, wordCap int) bool {
	hasUpper := false
	for _, r := range text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper && len(strings.Fields(text)) < wordCap
}
