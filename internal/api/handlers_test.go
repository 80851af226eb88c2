package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newscope/searcher/internal/config"
	"github.com/newscope/searcher/internal/errors"
	"github.com/newscope/searcher/internal/query"
	"github.com/newscope/searcher/internal/search"
	"github.com/newscope/searcher/internal/store"
)

type fakeStore struct {
	result *store.Result
	err    error
	seen   []*query.Descriptor
}

func (f *fakeStore) Search(_ context.Context, _ string, d *query.Descriptor) (*store.Result, error) {
	f.seen = append(f.seen, d)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeEncoder struct{}

func (fakeEncoder) Encode(context.Context, string) ([]float32, error) { return []float32{1}, nil }
func (fakeEncoder) Dimensions() int                                   { return 1 }
func (fakeEncoder) ModelName() string                                 { return "fake" }

func newTestRouter(st *fakeStore) *gin.Engine {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := search.NewService(st, fakeEncoder{}, log)
	return NewRouter(svc, config.Default().CORS, log)
}

func get(t *testing.T, router *gin.Engine, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSearchArticles_OK(t *testing.T) {
	st := &fakeStore{result: &store.Result{
		Total: 1,
		Hits: []store.Hit{{
			ID:     "a1",
			Source: json.RawMessage(`{"article":{"title":["Breaking"],"paragraphs":["p1","p2","p3","p4"]}}`),
		}},
	}}
	router := newTestRouter(st)

	rec := get(t, router, "/api/v1/search/articles?query=climate")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total   int64 `json:"total"`
		Results []struct {
			ID         string   `json:"id"`
			Title      string   `json:"title"`
			Paragraphs []string `json:"paragraphs"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, int64(1), body.Total)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "a1", body.Results[0].ID)
	assert.Equal(t, "Breaking", body.Results[0].Title)
	// Reader-facing preview keeps three paragraphs at most.
	assert.Equal(t, []string{"p1", "p2", "p3"}, body.Results[0].Paragraphs)
}

func TestSearchArticles_RepeatedQueryParams(t *testing.T) {
	st := &fakeStore{result: &store.Result{}}
	router := newTestRouter(st)

	rec := get(t, router, "/api/v1/search/articles?ids=a1&ids=a2&return_attributes=title")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, st.seen, 1)
	d := st.seen[0]
	assert.Equal(t, []string{"article.title"}, d.SourceIncludes)
}

func TestSearchArticles_ValidationError(t *testing.T) {
	router := newTestRouter(&fakeStore{result: &store.Result{}})

	rec := get(t, router, "/api/v1/search/articles?page_size=31")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Detail []struct {
			Msg   string   `json:"msg"`
			Loc   []string `json:"loc"`
			Input any      `json:"input"`
		} `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Detail, 1)
	assert.Equal(t, "'page_size' must be between 1 and 30.", body.Detail[0].Msg)
	assert.Equal(t, []string{"query", "page_size"}, body.Detail[0].Loc)
	assert.Equal(t, float64(31), body.Detail[0].Input)
}

func TestSearchArticles_SemanticWithoutQuery(t *testing.T) {
	router := newTestRouter(&fakeStore{result: &store.Result{}})

	rec := get(t, router, "/api/v1/search/articles?search_type=semantic")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(),
		"'query' must not be empty for 'semantic' or 'combined' search.")
}

func TestSearchArticles_CombinedWithPage(t *testing.T) {
	router := newTestRouter(&fakeStore{result: &store.Result{}})

	rec := get(t, router, "/api/v1/search/articles?search_type=combined&query=x&page=1")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(),
		"'page' must be 0 for 'semantic' or 'combined' search.")
}

func TestSearchArticles_BadDateRendersDetail(t *testing.T) {
	router := newTestRouter(&fakeStore{result: &store.Result{}})

	rec := get(t, router, "/api/v1/search/articles?date_min=yesterday")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "detail")
}

func TestSearchArticles_TransientStoreErrorIs503(t *testing.T) {
	st := &fakeStore{err: errors.StoreTransient("search backend down", nil)}
	router := newTestRouter(st)

	rec := get(t, router, "/api/v1/search/articles")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSearchArticles_ContractErrorIs500(t *testing.T) {
	st := &fakeStore{err: errors.StoreContract("hit without _id", nil)}
	router := newTestRouter(st)

	rec := get(t, router, "/api/v1/search/articles")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSearchTopics_OK(t *testing.T) {
	st := &fakeStore{result: &store.Result{
		Total: 1,
		Hits:  []store.Hit{{ID: "t1", Source: json.RawMessage(`{"topic":"energy"}`)}},
	}}
	router := newTestRouter(st)

	rec := get(t, router, "/api/v1/search/topics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"topic":"energy"`)
}

func TestSearchTopicBatches_OK(t *testing.T) {
	st := &fakeStore{result: &store.Result{
		Total: 1,
		Hits:  []store.Hit{{ID: "b1", Source: json.RawMessage(`{"article_count":7}`)}},
	}}
	router := newTestRouter(st)

	rec := get(t, router, "/api/v1/search/topic-batches")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"article_count":7`)
}

func TestSearchCategories_OK(t *testing.T) {
	st := &fakeStore{result: &store.Result{
		Total: 1,
		Hits:  []store.Hit{{ID: "1", Source: json.RawMessage(`{"name":"sports"}`)}},
	}}
	router := newTestRouter(st)

	rec := get(t, router, "/api/v1/search/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"sports"`)
}

func TestSearchCategories_PageSizeBound(t *testing.T) {
	router := newTestRouter(&fakeStore{result: &store.Result{}})

	rec := get(t, router, "/api/v1/search/categories?page_size=51")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "'page_size' must be between 1 and 50.")
}
