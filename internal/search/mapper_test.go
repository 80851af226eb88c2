package search

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newscope/searcher/internal/errors"
	"github.com/newscope/searcher/internal/store"
)

func TestMapArticles_FullDocument(t *testing.T) {
	source := `{
		"article": {
			"url": "https://example.com/a1",
			"source": "example",
			"publish_date": "2024-03-01T12:00:00Z",
			"author": ["Jane Doe", "John Roe"],
			"title": ["Breaking", "News"],
			"paragraphs": ["p1", "p2"],
			"categories": {"ids": ["1", "2"], "names": ["politics", "economy"]}
		},
		"analyzer": {
			"category_ids": ["2"],
			"entities": ["ACME"]
		},
		"topics": {"topic_ids": ["t1"], "topic_names": ["elections"]}
	}`

	list, err := MapArticles(&store.Result{
		Total: 7,
		Hits:  []store.Hit{{ID: "a1", Score: 1.5, Source: json.RawMessage(source)}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), list.TotalCount)
	require.Len(t, list.Articles, 1)

	a := list.Articles[0]
	assert.Equal(t, "a1", a.ID)
	require.NotNil(t, a.Author)
	assert.Equal(t, "Jane Doe\nJohn Roe", *a.Author)
	require.NotNil(t, a.Title)
	assert.Equal(t, "Breaking\nNews", *a.Title)
	assert.Equal(t, []string{"p1", "p2"}, a.Paragraphs)

	require.Len(t, a.Categories, 2)
	assert.Equal(t, "1", a.Categories[0].ID)
	assert.Equal(t, "politics", a.Categories[0].Name)

	require.Len(t, a.AnalyzedCategories, 1)
	assert.Equal(t, "2", a.AnalyzedCategories[0].ID)
	assert.Equal(t, "economy", a.AnalyzedCategories[0].Name)

	require.Len(t, a.Topics, 1)
	assert.Equal(t, "t1", a.Topics[0].ID)
	assert.Equal(t, "elections", a.Topics[0].Name)

	require.NotNil(t, a.PublishDate)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), a.PublishDate.UTC())
}

func TestMapArticles_ProjectedAwayGroups(t *testing.T) {
	list, err := MapArticles(&store.Result{
		Total: 1,
		Hits:  []store.Hit{{ID: "a1", Source: json.RawMessage(`{}`)}},
	})
	require.NoError(t, err)

	a := list.Articles[0]
	assert.Equal(t, "a1", a.ID)
	assert.Nil(t, a.Author)
	assert.Nil(t, a.Title)
	assert.Nil(t, a.Categories)
	assert.Nil(t, a.AnalyzedCategories)
	assert.Nil(t, a.Topics)
}

func TestMapArticles_AnalyzedRequiresMergedCategories(t *testing.T) {
	// Without the merged categories the analyzed subset cannot be built.
	source := `{"analyzer": {"category_ids": ["1"]}}`

	list, err := MapArticles(&store.Result{
		Total: 1,
		Hits:  []store.Hit{{ID: "a1", Source: json.RawMessage(source)}},
	})
	require.NoError(t, err)
	assert.Nil(t, list.Articles[0].AnalyzedCategories)
}

func TestMapArticles_MissingID(t *testing.T) {
	_, err := MapArticles(&store.Result{
		Total: 1,
		Hits:  []store.Hit{{Source: json.RawMessage(`{}`)}},
	})

	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindStoreContract))
}

func TestMapArticles_EmptyAuthorListJoinsToEmptyString(t *testing.T) {
	source := `{"article": {"author": []}}`

	list, err := MapArticles(&store.Result{
		Total: 1,
		Hits:  []store.Hit{{ID: "a1", Source: json.RawMessage(source)}},
	})
	require.NoError(t, err)

	require.NotNil(t, list.Articles[0].Author)
	assert.Equal(t, "", *list.Articles[0].Author)
}

func TestMapTopics(t *testing.T) {
	source := `{
		"batch_id": "b1",
		"batch_query": {"publish_date": {"start": "2024-01-01T00:00:00Z", "end": "2024-02-01T00:00:00Z"}},
		"create_time": "2024-02-02T00:00:00Z",
		"topic": "energy prices",
		"count": 42,
		"representative_articles": [
			{"id": "a1", "url": "https://example.com/a1", "publish_date": "2024-01-15T00:00:00Z",
			 "author": ["Jane"], "title": ["Energy"]}
		]
	}`

	list, err := MapTopics(&store.Result{
		Total: 3,
		Hits:  []store.Hit{{ID: "t1", Source: json.RawMessage(source)}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), list.TotalCount)
	topic := list.Topics[0]
	assert.Equal(t, "t1", topic.ID)
	require.NotNil(t, topic.BatchID)
	assert.Equal(t, "b1", *topic.BatchID)
	require.NotNil(t, topic.BatchQuery)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), topic.BatchQuery.PublishDate.Start.UTC())
	require.NotNil(t, topic.Count)
	assert.Equal(t, int64(42), *topic.Count)
	require.Len(t, topic.RepresentativeArticles, 1)
	assert.Equal(t, "a1", topic.RepresentativeArticles[0].ID)
	assert.Equal(t, []string{"Jane"}, topic.RepresentativeArticles[0].Author)
}

func TestMapTopicBatches(t *testing.T) {
	source := `{
		"query": {"publish_date": {"start": "2024-01-01T00:00:00Z", "end": "2024-02-01T00:00:00Z"}},
		"article_count": 100,
		"topic_count": 12,
		"create_time": "2024-02-02T00:00:00Z"
	}`

	list, err := MapTopicBatches(&store.Result{
		Total: 1,
		Hits:  []store.Hit{{ID: "b1", Source: json.RawMessage(source)}},
	})
	require.NoError(t, err)

	batch := list.Batches[0]
	assert.Equal(t, "b1", batch.ID)
	require.NotNil(t, batch.Query)
	require.NotNil(t, batch.ArticleCount)
	assert.Equal(t, int64(100), *batch.ArticleCount)
	require.NotNil(t, batch.TopicCount)
	assert.Equal(t, int64(12), *batch.TopicCount)
}

func TestMapCategories(t *testing.T) {
	list, err := MapCategories(&store.Result{
		Total: 2,
		Hits: []store.Hit{
			{ID: "1", Source: json.RawMessage(`{"name": "politics"}`)},
			{ID: "2", Source: json.RawMessage(`{}`)},
		},
	})
	require.NoError(t, err)

	require.Len(t, list.Categories, 2)
	assert.Equal(t, "politics", list.Categories[0].Name)
	assert.Equal(t, "", list.Categories[1].Name)
}
