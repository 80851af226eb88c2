package domain

import "time"

// PublishDateRange is a closed date interval with Start <= End.
type PublishDateRange struct {
	Start time.Time
	End   time.Time
}

// TopicArticleQuery is the article query a topic-modelling run was
// generated from.
type TopicArticleQuery struct {
	PublishDate PublishDateRange
}

// TopicArticle is the projection of an article kept on a topic as a
// representative sample.
type TopicArticle struct {
	ID          string
	URL         string
	Image       *string
	PublishDate time.Time
	Author      []string
	Title       []string
}

// Topic is a cluster of articles produced by one topic-modelling run.
// Every field other than the id can be projected away by a search.
type Topic struct {
	ID                     string
	BatchID                *string
	BatchQuery             *TopicArticleQuery
	CreateTime             *time.Time
	Name                   *string
	Count                  *int64
	RepresentativeArticles []TopicArticle
}

// TopicBatch is the snapshot of a single topic-modelling run.
type TopicBatch struct {
	ID           string
	Query        *TopicArticleQuery
	ArticleCount *int64
	TopicCount   *int64
	CreateTime   *time.Time
}

// TopicList is a page of topics with the store's total hit count.
type TopicList struct {
	TotalCount int64
	Topics     []Topic
}

// TopicBatchList is a page of topic batches with the store's total hit count.
type TopicBatchList struct {
	TotalCount int64
	Batches    []TopicBatch
}
