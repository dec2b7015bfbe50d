package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type keywordMatcher struct {
	word string
	re   *regexp.Regexp
}

// keywordSet matches keywords against lowercase text. Phrases and longer words are
// substring matches; words of three runes or fewer must stand alone so "ai" does not
// hit "said".
type keywordSet []keywordMatcher

func newKeywordSet(words ...string) keywordSet {
	set := make(keywordSet, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		m := keywordMatcher{word: w}
		if !strings.Contains(w, " ") && utf8.RuneCountInString(w) <= 3 {
			m.re = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
		}
		set = append(set, m)
	}
	return set
}

// newWordSet matches every entry as whole words or phrases, so "oman" does not hit
// "woman" and "paris" does not hit "comparison".
func newWordSet(words ...string) keywordSet {
	set := make(keywordSet, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		set = append(set, keywordMatcher{
			word: w,
			re:   regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(w) + `(?:$|[^\p{L}\p{N}_])`),
		})
	}
	return set
}

func (m keywordMatcher) matches(text string) bool {
	if m.re != nil {
		return m.re.MatchString(text)
	}
	return strings.Contains(text, m.word)
}

// count returns how many distinct keywords occur in text.
func (k keywordSet) count(text string) int {
	n := 0
	for _, m := range k {
		if m.matches(text) {
			n++
		}
	}
	return n
}

func (k keywordSet) any(text string) bool {
	for _, m := range k {
		if m.matches(text) {
			return true
		}
	}
	return false
}

func (k keywordSet) words() []string {
	out := make([]string, len(k))
	for i, m := range k {
		out[i] = m.word
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
