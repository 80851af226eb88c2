package search

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/newscope/searcher/internal/domain"
	"github.com/newscope/searcher/internal/errors"
	"github.com/newscope/searcher/internal/store"
)

// Source document shapes. Every field may be projected away, so
// everything is optional on decode.

type articleSource struct {
	Article *struct {
		URL         *string    `json:"url"`
		Source      *string    `json:"source"`
		PublishDate *time.Time `json:"publish_date"`
		Image       *string    `json:"image"`
		Author      []string   `json:"author"`
		Title       []string   `json:"title"`
		Paragraphs  []string   `json:"paragraphs"`
		Categories  *struct {
			IDs   []string `json:"ids"`
			Names []string `json:"names"`
		} `json:"categories"`
	} `json:"article"`
	Analyzer *struct {
		CategoryIDs []string  `json:"category_ids"`
		Embeddings  []float32 `json:"embeddings"`
		Entities    []string  `json:"entities"`
	} `json:"analyzer"`
	Topics *struct {
		TopicIDs   []string `json:"topic_ids"`
		TopicNames []string `json:"topic_names"`
	} `json:"topics"`
}

type dateRangeSource struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type topicSource struct {
	BatchID    *string `json:"batch_id"`
	BatchQuery *struct {
		PublishDate dateRangeSource `json:"publish_date"`
	} `json:"batch_query"`
	CreateTime             *time.Time `json:"create_time"`
	Topic                  *string    `json:"topic"`
	Count                  *int64     `json:"count"`
	RepresentativeArticles []struct {
		ID          string    `json:"id"`
		URL         string    `json:"url"`
		Image       *string   `json:"image"`
		PublishDate time.Time `json:"publish_date"`
		Author      []string  `json:"author"`
		Title       []string  `json:"title"`
	} `json:"representative_articles"`
}

type topicBatchSource struct {
	Query *struct {
		PublishDate dateRangeSource `json:"publish_date"`
	} `json:"query"`
	ArticleCount *int64     `json:"article_count"`
	TopicCount   *int64     `json:"topic_count"`
	CreateTime   *time.Time `json:"create_time"`
}

type categorySource struct {
	Name *string `json:"name"`
}

// MapArticles converts an articles search result into the domain model.
func MapArticles(res *store.Result) (*domain.ArticleList, error) {
	articles := make([]domain.Article, 0, len(res.Hits))
	for _, hit := range res.Hits {
		article, err := mapArticleHit(hit)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return &domain.ArticleList{TotalCount: res.Total, Articles: articles}, nil
}

func mapArticleHit(hit store.Hit) (domain.Article, error) {
	var src articleSource
	if err := decodeSource(hit, &src); err != nil {
		return domain.Article{}, err
	}

	article := domain.Article{ID: hit.ID}
	if src.Article != nil {
		art := src.Article
		article.URL = art.URL
		article.Source = art.Source
		article.PublishDate = art.PublishDate
		article.Image = art.Image
		article.Author = joinLines(art.Author)
		article.Title = joinLines(art.Title)
		article.Paragraphs = art.Paragraphs
		if art.Categories != nil {
			article.Categories = zipCategories(art.Categories.IDs, art.Categories.Names)
		}
	}
	if src.Analyzer != nil {
		article.Entities = src.Analyzer.Entities
		article.Embeddings = src.Analyzer.Embeddings

		// The analyzed subset can only be reconstructed when the merged
		// categories are present too.
		if len(src.Analyzer.CategoryIDs) > 0 && len(article.Categories) > 0 {
			analyzed := make(map[string]struct{}, len(src.Analyzer.CategoryIDs))
			for _, id := range src.Analyzer.CategoryIDs {
				analyzed[id] = struct{}{}
			}
			for _, cat := range article.Categories {
				if _, ok := analyzed[cat.ID]; ok {
					article.AnalyzedCategories = append(article.AnalyzedCategories, cat)
				}
			}
		}
	}
	if src.Topics != nil {
		n := min(len(src.Topics.TopicIDs), len(src.Topics.TopicNames))
		for i := 0; i < n; i++ {
			article.Topics = append(article.Topics, domain.ArticleTopic{
				ID:   src.Topics.TopicIDs[i],
				Name: src.Topics.TopicNames[i],
			})
		}
	}
	return article, nil
}

// MapTopics converts a topics search result into the domain model.
func MapTopics(res *store.Result) (*domain.TopicList, error) {
	topics := make([]domain.Topic, 0, len(res.Hits))
	for _, hit := range res.Hits {
		var src topicSource
		if err := decodeSource(hit, &src); err != nil {
			return nil, err
		}

		topic := domain.Topic{
			ID:         hit.ID,
			BatchID:    src.BatchID,
			CreateTime: src.CreateTime,
			Name:       src.Topic,
			Count:      src.Count,
		}
		if src.BatchQuery != nil {
			topic.BatchQuery = &domain.TopicArticleQuery{
				PublishDate: domain.PublishDateRange{
					Start: src.BatchQuery.PublishDate.Start,
					End:   src.BatchQuery.PublishDate.End,
				},
			}
		}
		for _, ra := range src.RepresentativeArticles {
			topic.RepresentativeArticles = append(topic.RepresentativeArticles, domain.TopicArticle{
				ID:          ra.ID,
				URL:         ra.URL,
				Image:       ra.Image,
				PublishDate: ra.PublishDate,
				Author:      ra.Author,
				Title:       ra.Title,
			})
		}
		topics = append(topics, topic)
	}
	return &domain.TopicList{TotalCount: res.Total, Topics: topics}, nil
}

// MapTopicBatches converts a topic-batch search result into the domain model.
func MapTopicBatches(res *store.Result) (*domain.TopicBatchList, error) {
	batches := make([]domain.TopicBatch, 0, len(res.Hits))
	for _, hit := range res.Hits {
		var src topicBatchSource
		if err := decodeSource(hit, &src); err != nil {
			return nil, err
		}

		batch := domain.TopicBatch{
			ID:           hit.ID,
			ArticleCount: src.ArticleCount,
			TopicCount:   src.TopicCount,
			CreateTime:   src.CreateTime,
		}
		if src.Query != nil {
			batch.Query = &domain.TopicArticleQuery{
				PublishDate: domain.PublishDateRange{
					Start: src.Query.PublishDate.Start,
					End:   src.Query.PublishDate.End,
				},
			}
		}
		batches = append(batches, batch)
	}
	return &domain.TopicBatchList{TotalCount: res.Total, Batches: batches}, nil
}

// MapCategories converts a categories search result into the domain model.
func MapCategories(res *store.Result) (*domain.CategoryList, error) {
	categories := make([]domain.Category, 0, len(res.Hits))
	for _, hit := range res.Hits {
		var src categorySource
		if err := decodeSource(hit, &src); err != nil {
			return nil, err
		}

		category := domain.Category{ID: hit.ID}
		if src.Name != nil {
			category.Name = *src.Name
		}
		categories = append(categories, category)
	}
	return &domain.CategoryList{TotalCount: res.Total, Categories: categories}, nil
}

func decodeSource(hit store.Hit, out any) error {
	if hit.ID == "" {
		return errors.StoreContract("hit without _id in search result", nil)
	}
	if len(hit.Source) == 0 {
		return nil
	}
	if err := json.Unmarshal(hit.Source, out); err != nil {
		return errors.StoreContract(fmt.Sprintf("decode source of hit %q", hit.ID), err)
	}
	return nil
}

// joinLines exposes a multi-valued text field as a single
// newline-joined value.
func joinLines(values []string) *string {
	if values == nil {
		return nil
	}
	joined := strings.Join(values, "\n")
	return &joined
}

func zipCategories(ids, names []string) []domain.Category {
	n := min(len(ids), len(names))
	categories := make([]domain.Category, 0, n)
	for i := 0; i < n; i++ {
		categories = append(categories, domain.Category{ID: ids[i], Name: names[i]})
	}
	return categories
}
