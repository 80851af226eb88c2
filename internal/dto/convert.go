package dto

import "github.com/newscope/searcher/internal/domain"

// maxParagraphs caps the paragraph preview on the reader-facing article.
const maxParagraphs = 3

// FromArticles converts a domain article list into the response envelope.
func FromArticles(list *domain.ArticleList) *ArticleResults {
	results := make([]ArticleResult, 0, len(list.Articles))
	for _, a := range list.Articles {
		results = append(results, fromArticle(a))
	}
	return &ArticleResults{Total: list.TotalCount, Results: results}
}

func fromArticle(a domain.Article) ArticleResult {
	res := ArticleResult{
		ID:          a.ID,
		Categories:  fromCategories(a.Categories),
		Entities:    a.Entities,
		URL:         a.URL,
		PublishDate: a.PublishDate,
		Source:      a.Source,
		Image:       a.Image,
		Author:      a.Author,
		Title:       a.Title,
		Paragraphs:  a.Paragraphs,
	}
	if len(res.Paragraphs) > maxParagraphs {
		res.Paragraphs = res.Paragraphs[:maxParagraphs]
	}
	for _, t := range a.Topics {
		res.Topics = append(res.Topics, ArticleTopicResult{ID: t.ID, Topic: t.Name})
	}
	return res
}

func fromCategories(categories []domain.Category) []CategoryResult {
	if categories == nil {
		return nil
	}
	out := make([]CategoryResult, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryResult{ID: c.ID, Name: c.Name})
	}
	return out
}

// FromTopics converts a domain topic list into the response envelope.
func FromTopics(list *domain.TopicList) *TopicResults {
	results := make([]TopicResult, 0, len(list.Topics))
	for _, t := range list.Topics {
		res := TopicResult{
			ID:         t.ID,
			BatchID:    t.BatchID,
			BatchQuery: fromBatchQuery(t.BatchQuery),
			CreateTime: t.CreateTime,
			Topic:      t.Name,
			Count:      t.Count,
		}
		for _, ra := range t.RepresentativeArticles {
			res.RepresentativeArticles = append(res.RepresentativeArticles, RepresentativeArticle{
				ID:          ra.ID,
				URL:         ra.URL,
				Image:       ra.Image,
				PublishDate: ra.PublishDate,
				Author:      ra.Author,
				Title:       ra.Title,
			})
		}
		results = append(results, res)
	}
	return &TopicResults{Total: list.TotalCount, Results: results}
}

// FromTopicBatches converts a domain batch list into the response envelope.
func FromTopicBatches(list *domain.TopicBatchList) *TopicBatchResults {
	results := make([]TopicBatchResult, 0, len(list.Batches))
	for _, b := range list.Batches {
		results = append(results, TopicBatchResult{
			ID:           b.ID,
			Query:        fromBatchQuery(b.Query),
			ArticleCount: b.ArticleCount,
			TopicCount:   b.TopicCount,
			CreateTime:   b.CreateTime,
		})
	}
	return &TopicBatchResults{Total: list.TotalCount, Results: results}
}

// FromCategories converts a domain category list into the response envelope.
func FromCategories(list *domain.CategoryList) *CategoryResults {
	results := fromCategories(list.Categories)
	if results == nil {
		results = []CategoryResult{}
	}
	return &CategoryResults{Total: list.TotalCount, Results: results}
}

func fromBatchQuery(q *domain.TopicArticleQuery) *BatchQueryResult {
	if q == nil {
		return nil
	}
	return &BatchQueryResult{
		PublishDate: DateRangeResult{
			Start: q.PublishDate.Start,
			End:   q.PublishDate.End,
		},
	}
}
