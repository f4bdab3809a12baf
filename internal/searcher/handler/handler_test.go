package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decimalpack/Static-Website-Search/internal/searcher/ranker"
)

type fakeSearcher struct {
	gotWords []string
	gotLimit int
	result   *ranker.Ranked
	err      error
}

func (f *fakeSearcher) Search(_ context.Context, words []string, limit int) (*ranker.Ranked, error) {
	f.gotWords = words
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &ranker.Ranked{Results: []ranker.Result{}}, nil
}

func doSearch(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	return rec
}

func TestSearchRequiresQuery(t *testing.T) {
	h := New(&fakeSearcher{}, nil, nil, nil, 10, 100)
	rec := doSearch(t, h, "/api/v1/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchReturnsRankedResults(t *testing.T) {
	fake := &fakeSearcher{
		result: &ranker.Ranked{
			Results: []ranker.Result{
				{Title: "doc", URL: "https://example.com/doc", Score: 7},
			},
			TotalHits: 1,
		},
	}
	h := New(fake, nil, nil, nil, 10, 100)

	rec := doSearch(t, h, "/api/v1/search?q=spectral+filters")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "spectral filters", resp.Query)
	assert.Equal(t, 1, resp.TotalHits)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, uint64(7), resp.Results[0].Score)

	// The query reaches the ranker tokenized and stemmed.
	assert.Equal(t, []string{"spectral", "filt"}, fake.gotWords)
	assert.Equal(t, 10, fake.gotLimit)
}

func TestSearchStopWordOnlyQuery(t *testing.T) {
	fake := &fakeSearcher{}
	h := New(fake, nil, nil, nil, 10, 100)

	rec := doSearch(t, h, "/api/v1/search?q=the+and+of")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Results)
	assert.Nil(t, fake.gotWords)
}

func TestSearchRejectsBadLimit(t *testing.T) {
	h := New(&fakeSearcher{}, nil, nil, nil, 10, 100)
	for _, bad := range []string{"0", "-3", "abc"} {
		rec := doSearch(t, h, "/api/v1/search?q=go&limit="+bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit %q", bad)
	}
}

func TestSearchClampsLimitToMaxResults(t *testing.T) {
	fake := &fakeSearcher{}
	h := New(fake, nil, nil, nil, 10, 25)

	rec := doSearch(t, h, "/api/v1/search?q=go&limit=9999")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, fake.gotLimit)
}

func TestSearchReportsFailure(t *testing.T) {
	fake := &fakeSearcher{err: errors.New("index unavailable")}
	h := New(fake, nil, nil, nil, 10, 100)

	rec := doSearch(t, h, "/api/v1/search?q=go")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
