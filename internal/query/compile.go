package query

import (
	"github.com/newscope/searcher/internal/dto"
)

// kNN parameters. The kNN side is not paginable: the store returns at
// most K hits regardless of page size.
const (
	KNNNumCandidates = 50
	KNNK             = 10
)

// CompileArticleLexical builds the lexical article descriptor.
//
// Free-text matches go into should (title boosted 2x) with
// minimum_should_match 1; without a free-text term the query degenerates
// into a pure filter+sort. Field predicates that should contribute to
// the score go into must; identity and date predicates into filter.
func CompileArticleLexical(q *dto.ArticleQuery) *Descriptor {
	var should []M
	if q.Query != "" {
		should = []M{
			matchClause("article.paragraphs", q.Query),
			matchBoostClause("article.title", q.Query, 2),
		}
	}

	var must []M
	if q.Source != "" {
		must = append(must, matchClause("article.source", q.Source))
	}
	if q.Author != "" {
		must = append(must, matchClause("article.author", q.Author))
	}
	if q.Categories != "" {
		must = append(must, matchClause("article.categories.names", q.Categories))
	}
	if q.Topic != "" {
		must = append(must, matchClause("topics.topic_names", q.Topic))
	}

	filter := []M{dateRangeClause("article.publish_date", q.DateMin, q.DateMax)}
	if len(q.IDs) > 0 {
		filter = append(filter, idsClause(q.IDs))
	}
	if len(q.CategoryIDs) > 0 {
		filter = append(filter, matchClause("article.categories.ids", q.CategoryIDs))
	}
	if len(q.TopicIDs) > 0 {
		filter = append(filter, termsClause("topics.topic_ids", q.TopicIDs))
	}

	minShould := 0
	if len(should) > 0 {
		minShould = 1
	}

	return &Descriptor{
		Kind: Lexical,
		Bool: &Bool{
			Must:               must,
			Should:             should,
			Filter:             filter,
			MinimumShouldMatch: minShould,
		},
		Sort:           articleSort(q),
		TrackScores:    true,
		From:           q.Page * q.PageSize,
		Size:           q.PageSize,
		SourceIncludes: dto.Articles.ProjectionMask(q.ReturnAttributes),
		SourceExcludes: []string{"analyzer.embeddings"},
	}
}

// CompileArticleKNN builds the kNN article descriptor. Every predicate
// becomes a pre-filter; only cosine similarity scores.
func CompileArticleKNN(q *dto.ArticleQuery, vector []float32) *Descriptor {
	filter := []M{dateRangeClause("article.publish_date", q.DateMin, q.DateMax)}
	if len(q.IDs) > 0 {
		filter = append(filter, idsClause(q.IDs))
	}
	if q.Source != "" {
		filter = append(filter, matchClause("article.source", q.Source))
	}
	if q.Author != "" {
		filter = append(filter, matchClause("article.author", q.Author))
	}
	if q.Categories != "" {
		filter = append(filter, matchClause("article.categories.names", q.Categories))
	}
	if len(q.CategoryIDs) > 0 {
		filter = append(filter, matchClause("article.categories.ids", q.CategoryIDs))
	}
	if q.Topic != "" {
		filter = append(filter, matchClause("topics.topic_names", q.Topic))
	}
	if len(q.TopicIDs) > 0 {
		filter = append(filter, termsClause("topics.topic_ids", q.TopicIDs))
	}

	return &Descriptor{
		Kind: KNN,
		KNN: &KNNQuery{
			Field:         "analyzer.embeddings",
			QueryVector:   vector,
			K:             KNNK,
			NumCandidates: KNNNumCandidates,
			Filter:        filter,
		},
		Sort:           articleSort(q),
		TrackScores:    true,
		SourceIncludes: dto.Articles.ProjectionMask(q.ReturnAttributes),
		SourceExcludes: []string{"analyzer.embeddings"},
	}
}

func articleSort(q *dto.ArticleQuery) []M {
	if q.SortField != "" {
		if field, ok := dto.Articles.SortField(q.SortField); ok {
			return []M{sortClause(field, string(q.SortDir)), scoreTiebreaker()}
		}
	}
	return []M{sortClause("article.publish_date", "desc"), scoreTiebreaker()}
}

// CompileTopics builds the lexical topic descriptor. Topic batches are
// matched whole: both ends of the batch window must lie inside the
// queried date range.
func CompileTopics(q *dto.TopicQuery) *Descriptor {
	var must []M
	if q.Topic != "" {
		must = append(must, matchClause("topic", q.Topic))
	}

	var filter []M
	if len(q.IDs) > 0 {
		filter = append(filter, idsClause(q.IDs))
	}
	if len(q.BatchIDs) > 0 {
		filter = append(filter, termsClause("batch_id", q.BatchIDs))
	}
	if q.CountMin != nil || q.CountMax != nil {
		filter = append(filter, countRangeClause("count", q.CountMin, q.CountMax))
	}
	filter = append(filter,
		dateRangeClause("batch_query.publish_date.start", q.DateMin, q.DateMax),
		dateRangeClause("batch_query.publish_date.end", q.DateMin, q.DateMax),
	)

	sort := []M{
		sortClause("batch_query.publish_date.end", "desc"),
		sortClause("count", "desc"),
		scoreTiebreaker(),
	}
	if q.SortField != "" {
		if field, ok := dto.Topics.SortField(q.SortField); ok {
			sort = []M{sortClause(field, string(q.SortDir)), scoreTiebreaker()}
		}
	}

	return &Descriptor{
		Kind:           Lexical,
		Bool:           &Bool{Must: must, Filter: filter},
		Sort:           sort,
		TrackScores:    true,
		From:           q.Page * q.PageSize,
		Size:           q.PageSize,
		SourceIncludes: dto.Topics.ProjectionMask(q.ReturnAttributes),
	}
}

// CompileTopicBatches builds the lexical topic-batch descriptor.
func CompileTopicBatches(q *dto.TopicBatchQuery) *Descriptor {
	var filter []M
	if len(q.IDs) > 0 {
		filter = append(filter, idsClause(q.IDs))
	}
	if q.CountMin != nil || q.CountMax != nil {
		filter = append(filter, countRangeClause("article_count", q.CountMin, q.CountMax))
	}
	if q.TopicCountMin != nil || q.TopicCountMax != nil {
		filter = append(filter, countRangeClause("topic_count", q.TopicCountMin, q.TopicCountMax))
	}
	filter = append(filter,
		dateRangeClause("query.publish_date.start", q.DateMin, q.DateMax),
		dateRangeClause("query.publish_date.end", q.DateMin, q.DateMax),
	)

	sort := []M{
		sortClause("query.publish_date.end", "desc"),
		sortClause("article_count", "desc"),
		scoreTiebreaker(),
	}
	if q.SortField != "" {
		if field, ok := dto.TopicBatches.SortField(q.SortField); ok {
			sort = []M{sortClause(field, string(q.SortDir)), scoreTiebreaker()}
		}
	}

	return &Descriptor{
		Kind:           Lexical,
		Bool:           &Bool{Filter: filter},
		Sort:           sort,
		TrackScores:    true,
		From:           q.Page * q.PageSize,
		Size:           q.PageSize,
		SourceIncludes: dto.TopicBatches.ProjectionMask(q.ReturnAttributes),
	}
}

// CompileCategories builds the lexical category descriptor. Categories
// are ordered by score only.
func CompileCategories(q *dto.CategoryQuery) *Descriptor {
	var should []M
	if q.Query != "" {
		should = append(should, matchClause("name", q.Query))
	}

	var filter []M
	if len(q.IDs) > 0 {
		filter = append(filter, idsClause(q.IDs))
	}

	minShould := 0
	if len(should) > 0 {
		minShould = 1
	}

	return &Descriptor{
		Kind: Lexical,
		Bool: &Bool{
			Should:             should,
			Filter:             filter,
			MinimumShouldMatch: minShould,
		},
		From:           q.Page * q.PageSize,
		Size:           q.PageSize,
		SourceIncludes: dto.Categories.ProjectionMask(q.ReturnAttributes),
	}
}
