package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decimalpack/Static-Website-Search/internal/index"
	"github.com/decimalpack/Static-Website-Search/internal/indexer"
	"github.com/decimalpack/Static-Website-Search/internal/indexer/tokenizer"
	"github.com/decimalpack/Static-Website-Search/internal/sbf"
	"github.com/decimalpack/Static-Website-Search/internal/searcher/handler"
	"github.com/decimalpack/Static-Website-Search/internal/searcher/ranker"
)

// TestSearchPipeline runs the whole flow in-process: documents are
// tokenized and built into filters, the records round-trip through the JSON
// export format, and the HTTP search endpoint ranks them.
func TestSearchPipeline(t *testing.T) {
	docs := []struct {
		title, url, body string
	}{
		{
			"Spectral Bloom Filters",
			"https://example.com/sbf",
			"Spectral bloom filters answer frequency queries. Filters filters filters.",
		},
		{
			"Static Site Generators",
			"https://example.com/ssg",
			"Static sites ship no backend. A filter index makes them searchable.",
		},
		{
			"Cooking With Garlic",
			"https://example.com/garlic",
			"Garlic, olive oil, and patience.",
		},
	}

	records := make([]index.Record, 0, len(docs))
	for _, doc := range docs {
		termFreq := tokenizer.TermFrequencies(doc.title + " " + doc.body)
		f, err := sbf.Build(termFreq, 0.01, 8, doc.title, doc.url)
		require.NoError(t, err)
		records = append(records, index.FromFilter(f))
	}

	// Round-trip through the portable JSON index format.
	var buf bytes.Buffer
	require.NoError(t, indexer.ExportJSON(records, &buf))
	imported, err := indexer.ImportJSON(&buf)
	require.NoError(t, err)

	idx, err := index.Load(imported)
	require.NoError(t, err)
	require.Equal(t, len(docs), idx.Len())

	h := handler.New(ranker.New(idx), nil, nil, nil, 10, 100)
	server := httptest.NewServer(http.HandlerFunc(h.Search))
	defer server.Close()

	t.Run("ranks by frequency", func(t *testing.T) {
		resp := get(t, server.URL+"/?q=filters")
		require.Len(t, resp.Results, 2)
		assert.Equal(t, "https://example.com/sbf", resp.Results[0].URL)
		assert.Equal(t, "https://example.com/ssg", resp.Results[1].URL)
		assert.Greater(t, resp.Results[0].Score, resp.Results[1].Score)
	})

	t.Run("query form matches document form", func(t *testing.T) {
		// "Filtering" stems to the same term the documents were indexed
		// under.
		resp := get(t, server.URL+"/?q=filtering")
		require.NotEmpty(t, resp.Results)
		assert.Equal(t, "https://example.com/sbf", resp.Results[0].URL)
	})

	t.Run("no match", func(t *testing.T) {
		resp := get(t, server.URL+"/?q=submarine")
		assert.Empty(t, resp.Results)
		assert.Equal(t, 0, resp.TotalHits)
	})

	t.Run("limit", func(t *testing.T) {
		resp := get(t, server.URL+"/?q=filters&limit=1")
		assert.Len(t, resp.Results, 1)
		assert.Equal(t, 2, resp.TotalHits)
	})
}

func get(t *testing.T, url string) handler.SearchResponse {
	t.Helper()
	httpResp, err := http.Get(url)
	require.NoError(t, err)
	defer httpResp.Body.Close()
	require.Equal(t, http.StatusOK, httpResp.StatusCode)

	var resp handler.SearchResponse
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&resp))
	return resp
}
