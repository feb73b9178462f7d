package simplify

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)

// Tokenize lowercases sentence and returns every maximal run of word
// characters (letters, marks, digits, underscore). Punctuation and whitespace
// are dropped, so punctuation-only input yields no tokens.
func Tokenize(sentence string) []string {
	tokens := wordPattern.FindAllString(strings.ToLower(sentence), -1)
	if tokens == nil {
		return []string{}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsNumber(r)
}

// wordMatcher finds case-insensitive matches that start and end on a word
// boundary. Word runes are the ones Tokenize keeps, so "one" does not match
// inside "señone".
type wordMatcher struct {
	re *regexp.Regexp
}

// wholeWord matches phrase literally.
func wholeWord(phrase string) wordMatcher {
	return wordMatcher{re: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase))}
}

// wholeWords matches the regular expression expr.
func wholeWords(expr string) wordMatcher {
	return wordMatcher{re: regexp.MustCompile(`(?i)` + expr)}
}

// replaceAll replaces every bounded match in text with the literal with. A
// match rejected at a boundary resumes the search one rune later, so an
// overlapping bounded match is still found.
func (m wordMatcher) replaceAll(text, with string) string {
	var b strings.Builder
	last, pos := 0, 0
	for pos <= len(text) {
		loc := m.re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end > start && atBoundary(text, start) && atBoundary(text, end) {
			b.WriteString(text[last:start])
			b.WriteString(with)
			last, pos = end, end
			continue
		}
		if start == len(text) {
			break
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// atBoundary reports whether word-ness changes at byte offset i. The ends of
// text count as non-word.
func atBoundary(text string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWordRune(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWordRune(r)
	}
	return before != after
}
