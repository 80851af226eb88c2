package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/newscope/searcher/internal/errors"
)

// SortDirection orders search results on the sort field.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SearchType selects the article search strategy.
type SearchType string

const (
	SearchText     SearchType = "text"
	SearchSemantic SearchType = "semantic"
	SearchCombined SearchType = "combined"
)

// Pagination bounds per entity.
const (
	MaxArticlePageSize  = 30
	MaxTopicPageSize    = 30
	MaxCategoryPageSize = 50
	DefaultPageSize     = 10

	// MaxCategoryIDs caps the id filter list on category queries.
	MaxCategoryIDs = 100
)

// timeFormat is the ISO-8601 layout used for date query parameters.
const timeFormat = "2006-01-02T15:04:05Z07:00"

// defaultDateMin is the lower bound applied when date_min is absent.
var defaultDateMin = time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC)

// ArticleQuery is the inbound article search query.
type ArticleQuery struct {
	IDs []string `form:"ids"`

	// Query matches against title and paragraphs.
	Query string `form:"query"`

	CategoryIDs []string `form:"category_ids"`
	Categories  string   `form:"categories"`
	Source      string   `form:"source"`
	Author      string   `form:"author"`

	DateMin time.Time `form:"date_min" time_format:"2006-01-02T15:04:05Z07:00"`
	DateMax time.Time `form:"date_max" time_format:"2006-01-02T15:04:05Z07:00"`

	TopicIDs []string `form:"topic_ids"`
	Topic    string   `form:"topic"`

	Page     int `form:"page"`
	PageSize int `form:"page_size,default=10"`

	SortField string        `form:"sort_field"`
	SortDir   SortDirection `form:"sort_dir"`

	SearchType SearchType `form:"search_type"`

	// ReturnAttributes restricts the returned attributes. Empty means all.
	ReturnAttributes []string `form:"return_attributes"`
}

// Normalize fills request-time defaults. date_max defaults to the time
// of the request, not of process start.
func (q *ArticleQuery) Normalize(now time.Time) {
	if q.SearchType == "" {
		q.SearchType = SearchText
	}
	if q.SortDir == "" {
		q.SortDir = SortDesc
	}
	if q.DateMin.IsZero() {
		q.DateMin = defaultDateMin
	}
	if q.DateMax.IsZero() {
		q.DateMax = now
	}
}

// Validate enforces the query invariants. Must be called after Normalize.
func (q *ArticleQuery) Validate() error {
	if err := validateCommon(q.Page, q.PageSize, MaxArticlePageSize, q.DateMin, q.DateMax); err != nil {
		return err
	}
	if err := validateSort(Articles, q.SortField, q.SortDir); err != nil {
		return err
	}
	if err := validateReturnAttributes(Articles, q.ReturnAttributes); err != nil {
		return err
	}

	switch q.SearchType {
	case SearchText, SearchSemantic, SearchCombined:
	default:
		return errors.ValidationField("search_type",
			fmt.Sprintf("Invalid search type %q. Must be one of 'text', 'semantic' or 'combined'.", q.SearchType),
			string(q.SearchType))
	}

	if q.SearchType == SearchSemantic || q.SearchType == SearchCombined {
		if strings.TrimSpace(q.Query) == "" {
			return errors.Validation("'query' must not be empty for 'semantic' or 'combined' search.")
		}
		if q.Page != 0 {
			return errors.Validation("'page' must be 0 for 'semantic' or 'combined' search.")
		}
	}
	return nil
}

// TopicQuery is the inbound topic search query.
type TopicQuery struct {
	IDs      []string `form:"ids"`
	BatchIDs []string `form:"batch_ids"`

	// Topic matches against the topic name.
	Topic string `form:"topic"`

	CountMin *int64 `form:"count_min"`
	CountMax *int64 `form:"count_max"`

	DateMin time.Time `form:"date_min" time_format:"2006-01-02T15:04:05Z07:00"`
	DateMax time.Time `form:"date_max" time_format:"2006-01-02T15:04:05Z07:00"`

	Page     int `form:"page"`
	PageSize int `form:"page_size,default=10"`

	SortField string        `form:"sort_field"`
	SortDir   SortDirection `form:"sort_dir"`

	ReturnAttributes []string `form:"return_attributes"`
}

// Normalize fills request-time defaults.
func (q *TopicQuery) Normalize(now time.Time) {
	if q.SortDir == "" {
		q.SortDir = SortDesc
	}
	if q.DateMin.IsZero() {
		q.DateMin = defaultDateMin
	}
	if q.DateMax.IsZero() {
		q.DateMax = now
	}
}

// Validate enforces the query invariants. Must be called after Normalize.
func (q *TopicQuery) Validate() error {
	if err := validateCommon(q.Page, q.PageSize, MaxTopicPageSize, q.DateMin, q.DateMax); err != nil {
		return err
	}
	if err := validateSort(Topics, q.SortField, q.SortDir); err != nil {
		return err
	}
	return validateReturnAttributes(Topics, q.ReturnAttributes)
}

// TopicBatchQuery is the inbound topic-batch search query.
type TopicBatchQuery struct {
	IDs []string `form:"ids"`

	// CountMin/CountMax bound the batch's article count.
	CountMin *int64 `form:"count_min"`
	CountMax *int64 `form:"count_max"`

	TopicCountMin *int64 `form:"topic_count_min"`
	TopicCountMax *int64 `form:"topic_count_max"`

	DateMin time.Time `form:"date_min" time_format:"2006-01-02T15:04:05Z07:00"`
	DateMax time.Time `form:"date_max" time_format:"2006-01-02T15:04:05Z07:00"`

	Page     int `form:"page"`
	PageSize int `form:"page_size,default=10"`

	SortField string        `form:"sort_field"`
	SortDir   SortDirection `form:"sort_dir"`

	ReturnAttributes []string `form:"return_attributes"`
}

// Normalize fills request-time defaults.
func (q *TopicBatchQuery) Normalize(now time.Time) {
	if q.SortDir == "" {
		q.SortDir = SortDesc
	}
	if q.DateMin.IsZero() {
		q.DateMin = defaultDateMin
	}
	if q.DateMax.IsZero() {
		q.DateMax = now
	}
}

// Validate enforces the query invariants. Must be called after Normalize.
func (q *TopicBatchQuery) Validate() error {
	if err := validateCommon(q.Page, q.PageSize, MaxTopicPageSize, q.DateMin, q.DateMax); err != nil {
		return err
	}
	if err := validateSort(TopicBatches, q.SortField, q.SortDir); err != nil {
		return err
	}
	return validateReturnAttributes(TopicBatches, q.ReturnAttributes)
}

// CategoryQuery is the inbound category search query.
type CategoryQuery struct {
	IDs []string `form:"ids"`

	// Query matches against the category name.
	Query string `form:"query"`

	Page     int `form:"page"`
	PageSize int `form:"page_size,default=10"`

	ReturnAttributes []string `form:"return_attributes"`
}

// Normalize drops blank id entries.
func (q *CategoryQuery) Normalize() {
	if q.IDs == nil {
		return
	}
	kept := q.IDs[:0]
	for _, id := range q.IDs {
		if strings.TrimSpace(id) != "" {
			kept = append(kept, id)
		}
	}
	q.IDs = kept
}

// Validate enforces the query invariants. Must be called after Normalize.
func (q *CategoryQuery) Validate() error {
	if q.Page < 0 {
		return errors.ValidationField("page", "'page' must not be negative.", q.Page)
	}
	if q.PageSize < 1 || q.PageSize > MaxCategoryPageSize {
		return errors.ValidationField("page_size",
			fmt.Sprintf("'page_size' must be between 1 and %d.", MaxCategoryPageSize), q.PageSize)
	}
	if len(q.IDs) > MaxCategoryIDs {
		return errors.ValidationField("ids", "'ids' contains too many items.", len(q.IDs))
	}
	return validateReturnAttributes(Categories, q.ReturnAttributes)
}

func validateCommon(page, pageSize, maxPageSize int, dateMin, dateMax time.Time) error {
	if page < 0 {
		return errors.ValidationField("page", "'page' must not be negative.", page)
	}
	if pageSize < 1 || pageSize > maxPageSize {
		return errors.ValidationField("page_size",
			fmt.Sprintf("'page_size' must be between 1 and %d.", maxPageSize), pageSize)
	}
	if dateMax.Before(dateMin) {
		return errors.ValidationField("date_max",
			"'date_max' must not be before 'date_min'.", dateMax.Format(timeFormat))
	}
	return nil
}

func validateSort(schema *Schema, sortField string, sortDir SortDirection) error {
	if sortField != "" {
		if _, ok := schema.SortField(sortField); !ok {
			return errors.ValidationField("sort_field",
				fmt.Sprintf("Invalid sort field %q. Must be one of %v.", sortField, schema.SortKeys()),
				sortField)
		}
	}
	if sortDir != SortAsc && sortDir != SortDesc {
		return errors.ValidationField("sort_dir",
			fmt.Sprintf("Invalid sort direction %q. Must be 'asc' or 'desc'.", sortDir),
			string(sortDir))
	}
	return nil
}

func validateReturnAttributes(schema *Schema, attrs []string) error {
	for _, attr := range attrs {
		if !schema.ValidAttr(attr) {
			return errors.ValidationField("return_attributes",
				fmt.Sprintf("Invalid return attribute %q. Must be one of %v.", attr, schema.AttrPaths()),
				attr)
		}
	}
	return nil
}
