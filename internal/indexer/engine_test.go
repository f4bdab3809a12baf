package indexer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decimalpack/Static-Website-Search/internal/index"
	"github.com/decimalpack/Static-Website-Search/pkg/config"
)

type memStore struct {
	records []index.Record
}

func (m *memStore) Save(_ context.Context, rec index.Record) error {
	for i, existing := range m.records {
		if existing.URL == rec.URL {
			m.records[i] = rec
			return nil
		}
	}
	m.records = append(m.records, rec)
	return nil
}

func testBuilderConfig() config.BuilderConfig {
	return config.BuilderConfig{FalsePositiveRate: 0.01, CounterWidth: 8}
}

func TestIndexDocumentBuildsQueryableFilter(t *testing.T) {
	store := &memStore{}
	engine := NewEngine(store, testBuilderConfig())

	rec, err := engine.IndexDocument(context.Background(), Document{
		Title: "Spectral Filters",
		URL:   "https://example.com/sbf",
		Body:  "filters filters filters estimate frequencies",
	})
	require.NoError(t, err)
	require.Len(t, store.records, 1)
	assert.Equal(t, rec, store.records[0])

	f, err := rec.Filter()
	require.NoError(t, err)
	// "filters" appears four times, once in the title.
	freq, err := f.Frequency("filt")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, freq, uint32(4))
}

func TestIndexDocumentUpsertsByURL(t *testing.T) {
	store := &memStore{}
	engine := NewEngine(store, testBuilderConfig())
	ctx := context.Background()

	_, err := engine.IndexDocument(ctx, Document{Title: "v1", URL: "https://example.com/a", Body: "alpha"})
	require.NoError(t, err)
	_, err = engine.IndexDocument(ctx, Document{Title: "v2", URL: "https://example.com/a", Body: "beta"})
	require.NoError(t, err)

	require.Len(t, store.records, 1)
	assert.Equal(t, "v2", store.records[0].Title)
}

func TestBuildBatchKeepsDocumentOrder(t *testing.T) {
	store := &memStore{}
	engine := NewEngine(store, testBuilderConfig())

	docs := []Document{
		{Title: "first", URL: "https://example.com/1", Body: "one"},
		{Title: "second", URL: "https://example.com/2", Body: "two"},
		{Title: "third", URL: "https://example.com/3", Body: "three"},
	}
	records, err := engine.BuildBatch(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, docs[i].URL, rec.URL)
	}
	assert.Equal(t, records, store.records)
}

func TestBuildBatchMinimizesWidths(t *testing.T) {
	cfg := testBuilderConfig()
	cfg.MinimizeWidths = true
	store := &memStore{}
	engine := NewEngine(store, cfg)

	docs := []Document{
		{Title: "a", URL: "https://example.com/a", Body: strings.Repeat("word ", 100)},
		{Title: "b", URL: "https://example.com/b", Body: "word"},
	}
	records, err := engine.BuildBatch(context.Background(), docs)
	require.NoError(t, err)

	fa, err := records[0].Filter()
	require.NoError(t, err)
	fb, err := records[1].Filter()
	require.NoError(t, err)

	// Ranks replace raw counts: 100 occurrences become 3, one becomes 1.
	freqA, err := fa.Frequency("word")
	require.NoError(t, err)
	freqB, err := fb.Frequency("word")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), freqA)
	assert.Equal(t, uint32(1), freqB)
}
