// Package domain holds the entities served by the search API. Optional
// fields are pointers (or nil slices): a search may project them away,
// so absence must be representable.
package domain

import "time"

// Category is a news category. Identity is the id.
type Category struct {
	ID   string
	Name string
}

// ArticleTopic is the topic membership of an article.
type ArticleTopic struct {
	ID   string
	Name string
}

// Article is a denormalised news article as stored in the articles index.
type Article struct {
	ID          string
	URL         *string
	Source      *string
	PublishDate *time.Time
	Image       *string

	// Author and Title are multi-valued in the store; they are exposed
	// joined with newlines.
	Author *string
	Title  *string

	Paragraphs []string

	// Categories merges the analyzer-assigned and predefined categories.
	Categories []Category

	// AnalyzedCategories is the subset of Categories assigned by the
	// analyzer. Nil when either side needed to derive it is missing.
	AnalyzedCategories []Category

	Embeddings []float32
	Entities   []string
	Topics     []ArticleTopic
}

// ArticleList is a page of articles with the store's total hit count.
type ArticleList struct {
	TotalCount int64
	Articles   []Article
}

// CategoryList is a page of categories with the store's total hit count.
type CategoryList struct {
	TotalCount int64
	Categories []Category
}
