// Package tokenizer normalises free text into the word stream the
// spectral filters are built from and queried with. Both sides must use
// the same pipeline: a filter only recognises a word in exactly the form
// it was inserted.
package tokenizer

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
}

// Tokenize lower-cases text, splits on non-alphanumeric boundaries,
// drops stop words and single characters, and stems each word.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) < 2 {
			continue
		}
		if _, isStop := stopWords[word]; isStop {
			continue
		}
		out = append(out, stem(word))
	}
	return out
}

// TermFrequencies tokenizes text and counts occurrences per term.
func TermFrequencies(text string) map[string]uint32 {
	freq := make(map[string]uint32)
	for _, term := range Tokenize(text) {
		freq[term]++
	}
	return freq
}

// stem strips suffixes until no rule applies. Running to a fixpoint keeps
// the stemmer consistent: "filters" and "filter" must land on the same
// term or plural documents would never match singular queries.
func stem(word string) string {
	for {
		next := stemOnce(word)
		if next == word {
			return word
		}
		word = next
	}
}

func stemOnce(word string) string {
	suffixes := []struct {
		suffix      string
		replacement string
		minLen      int
	}{
		{"ational", "ate", 2},
		{"tional", "tion", 2},
		{"ments", "ment", 2},
		{"izing", "ize", 2},
		{"ating", "ate", 2},
		{"ously", "ous", 2},
		{"ively", "ive", 2},
		{"tion", "t", 3},
		{"sion", "s", 3},
		{"ying", "y", 2},
		{"ies", "y", 2},
		{"ing", "", 3},
		{"ers", "er", 2},
		{"est", "", 3},
		{"ed", "", 3},
		{"er", "", 3},
		{"ly", "", 3},
		{"es", "", 3},
		{"ss", "ss", 2},
		{"s", "", 3},
	}
	for _, rule := range suffixes {
		if strings.HasSuffix(word, rule.suffix) {
			stemmed := word[:len(word)-len(rule.suffix)] + rule.replacement
			if len(stemmed) >= rule.minLen {
				return stemmed
			}
		}
	}
	return word
}
