package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newscope/searcher/internal/domain"
)

func TestFromArticles_TruncatesParagraphs(t *testing.T) {
	list := &domain.ArticleList{
		TotalCount: 1,
		Articles: []domain.Article{{
			ID:         "a1",
			Paragraphs: []string{"p1", "p2", "p3", "p4", "p5"},
		}},
	}

	res := FromArticles(list)

	require.Len(t, res.Results, 1)
	assert.Equal(t, []string{"p1", "p2", "p3"}, res.Results[0].Paragraphs)
}

func TestFromArticles_ShortParagraphListKeptWhole(t *testing.T) {
	list := &domain.ArticleList{
		Articles: []domain.Article{{ID: "a1", Paragraphs: []string{"p1"}}},
	}

	res := FromArticles(list)

	assert.Equal(t, []string{"p1"}, res.Results[0].Paragraphs)
}

func TestFromArticles_SuppressesAbsentFields(t *testing.T) {
	list := &domain.ArticleList{
		TotalCount: 1,
		Articles:   []domain.Article{{ID: "a1"}},
	}

	body, err := json.Marshal(FromArticles(list))
	require.NoError(t, err)

	assert.JSONEq(t, `{"total":1,"results":[{"id":"a1"}]}`, string(body))
}

func TestFromArticles_MapsTopicsAndCategories(t *testing.T) {
	list := &domain.ArticleList{
		Articles: []domain.Article{{
			ID:         "a1",
			Categories: []domain.Category{{ID: "1", Name: "politics"}},
			Topics:     []domain.ArticleTopic{{ID: "t1", Name: "elections"}},
		}},
	}

	res := FromArticles(list)

	a := res.Results[0]
	require.Len(t, a.Categories, 1)
	assert.Equal(t, CategoryResult{ID: "1", Name: "politics"}, a.Categories[0])
	require.Len(t, a.Topics, 1)
	assert.Equal(t, ArticleTopicResult{ID: "t1", Topic: "elections"}, a.Topics[0])
}

func TestFromTopics(t *testing.T) {
	batchID := "b1"
	count := int64(5)
	name := "energy"
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	list := &domain.TopicList{
		TotalCount: 2,
		Topics: []domain.Topic{{
			ID:      "t1",
			BatchID: &batchID,
			BatchQuery: &domain.TopicArticleQuery{
				PublishDate: domain.PublishDateRange{Start: start, End: end},
			},
			Name:  &name,
			Count: &count,
			RepresentativeArticles: []domain.TopicArticle{{
				ID: "a1", URL: "https://example.com", PublishDate: start,
				Author: []string{"Jane"}, Title: []string{"T"},
			}},
		}},
	}

	res := FromTopics(list)

	assert.Equal(t, int64(2), res.Total)
	topic := res.Results[0]
	require.NotNil(t, topic.BatchQuery)
	assert.Equal(t, start, topic.BatchQuery.PublishDate.Start)
	require.Len(t, topic.RepresentativeArticles, 1)
	assert.Equal(t, "a1", topic.RepresentativeArticles[0].ID)
}

func TestFromTopicBatches_NilQueryStaysAbsent(t *testing.T) {
	list := &domain.TopicBatchList{
		TotalCount: 1,
		Batches:    []domain.TopicBatch{{ID: "b1"}},
	}

	body, err := json.Marshal(FromTopicBatches(list))
	require.NoError(t, err)

	assert.JSONEq(t, `{"total":1,"results":[{"id":"b1"}]}`, string(body))
}

func TestFromCategories_EmptyListRendersEmptyArray(t *testing.T) {
	body, err := json.Marshal(FromCategories(&domain.CategoryList{}))
	require.NoError(t, err)

	assert.JSONEq(t, `{"total":0,"results":[]}`, string(body))
}
