package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeNormalises(t *testing.T) {
	terms := Tokenize("The Quick, quick brown FOX!")
	assert.Equal(t, []string{"quick", "quick", "brown", "fox"}, terms)
}

func TestTokenizeDropsStopWordsAndShortTokens(t *testing.T) {
	terms := Tokenize("a is the of x y")
	assert.Empty(t, terms)
}

func TestStemIsConsistentAcrossInflections(t *testing.T) {
	// Document and query sides must agree regardless of inflection.
	assert.Equal(t, Tokenize("filter"), Tokenize("filters"))
	assert.Equal(t, Tokenize("filter"), Tokenize("filtering"))
	assert.Equal(t, Tokenize("search"), Tokenize("searchers"))
}

func TestTokenizeStems(t *testing.T) {
	cases := map[string]string{
		"running":  "runn",
		"queries":  "query",
		"searched": "search",
		"filters":  "filt",
	}
	for in, want := range cases {
		terms := Tokenize(in)
		if assert.Len(t, terms, 1, "input %q", in) {
			assert.Equal(t, want, terms[0], "input %q", in)
		}
	}
}

func TestTokenizeQueryAndDocumentAgree(t *testing.T) {
	// A query for a word must normalise identically to the document side.
	doc := TermFrequencies("Spectral filters estimate frequencies. Frequencies!")
	query := Tokenize("frequencies")
	assert.Len(t, query, 1)
	assert.Equal(t, uint32(2), doc[query[0]])
}

func TestTermFrequencies(t *testing.T) {
	freq := TermFrequencies("go go go fox")
	assert.Equal(t, uint32(3), freq["go"])
	assert.Equal(t, uint32(1), freq["fox"])
}
