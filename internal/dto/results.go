// Package dto defines the inbound query objects and outbound result
// shapes of the search API, plus the projection schema derived from the
// result shapes. Result fields are pointers or slices with omitempty so
// that projected-away attributes disappear from the response body.
package dto

import "time"

// CategoryResult is a category as returned to the client.
type CategoryResult struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ArticleTopicResult is the topic membership entry on an article.
type ArticleTopicResult struct {
	ID    string `json:"id"`
	Topic string `json:"topic"`
}

// ArticleResult is an article as returned to the client. Which fields
// are populated depends on the query's return_attributes mask.
type ArticleResult struct {
	ID          string               `json:"id,omitempty"`
	Categories  []CategoryResult     `json:"categories,omitempty"`
	Entities    []string             `json:"entities,omitempty"`
	Topics      []ArticleTopicResult `json:"topics,omitempty"`
	URL         *string              `json:"url,omitempty"`
	PublishDate *time.Time           `json:"publish_date,omitempty"`
	Source      *string              `json:"source,omitempty"`
	Image       *string              `json:"image,omitempty"`
	Author      *string              `json:"author,omitempty"`
	Title       *string              `json:"title,omitempty"`
	Paragraphs  []string             `json:"paragraphs,omitempty"`
}

// ArticleResults is the article search response envelope.
type ArticleResults struct {
	Total   int64           `json:"total"`
	Results []ArticleResult `json:"results"`
}

// DateRangeResult is a closed publish-date interval.
type DateRangeResult struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BatchQueryResult is the article query a topic batch was generated from.
type BatchQueryResult struct {
	PublishDate DateRangeResult `json:"publish_date"`
}

// RepresentativeArticle is the article projection kept on a topic.
type RepresentativeArticle struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Image       *string   `json:"image,omitempty"`
	PublishDate time.Time `json:"publish_date"`
	Author      []string  `json:"author"`
	Title       []string  `json:"title"`
}

// TopicResult is a topic as returned to the client.
type TopicResult struct {
	ID                     string                  `json:"id,omitempty"`
	BatchID                *string                 `json:"batch_id,omitempty"`
	BatchQuery             *BatchQueryResult       `json:"batch_query,omitempty"`
	CreateTime             *time.Time              `json:"create_time,omitempty"`
	Topic                  *string                 `json:"topic,omitempty"`
	Count                  *int64                  `json:"count,omitempty"`
	RepresentativeArticles []RepresentativeArticle `json:"representative_articles,omitempty"`
}

// TopicResults is the topic search response envelope.
type TopicResults struct {
	Total   int64         `json:"total"`
	Results []TopicResult `json:"results"`
}

// TopicBatchResult is a topic batch as returned to the client.
type TopicBatchResult struct {
	ID           string            `json:"id,omitempty"`
	Query        *BatchQueryResult `json:"query,omitempty"`
	ArticleCount *int64            `json:"article_count,omitempty"`
	TopicCount   *int64            `json:"topic_count,omitempty"`
	CreateTime   *time.Time        `json:"create_time,omitempty"`
}

// TopicBatchResults is the topic-batch search response envelope.
type TopicBatchResults struct {
	Total   int64              `json:"total"`
	Results []TopicBatchResult `json:"results"`
}

// CategoryResults is the category search response envelope.
type CategoryResults struct {
	Total   int64            `json:"total"`
	Results []CategoryResult `json:"results"`
}
