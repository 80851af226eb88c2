package dto

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// IDAlwaysReturned is the sentinel backend path for the id attribute.
// The backend document id is present on every hit regardless of the
// projection, so including the sentinel in a source mask is a no-op.
const IDAlwaysReturned = "id_is_always_returned"

// BackendPaths is the value of a request-path mapping: a request
// attribute maps to either a single backend path or several.
type BackendPaths struct {
	single string
	multi  []string
}

// Single builds a one-path mapping value.
func Single(path string) BackendPaths {
	return BackendPaths{single: path}
}

// Multi builds a multi-path mapping value.
func Multi(paths ...string) BackendPaths {
	return BackendPaths{multi: paths}
}

// Expand flattens the variant into the list of backend paths.
func (b BackendPaths) Expand() []string {
	if b.multi != nil {
		return b.multi
	}
	return []string{b.single}
}

// Schema owns the projection tables of one entity: the flattened
// attribute-path set of its result DTO, the request-path to
// backend-path mapping, and the sortable-field allow-list.
type Schema struct {
	name      string
	attrPaths map[string]struct{}
	backend   map[string]BackendPaths
	sortKeys  map[string]string
}

// Entity schemas, built once at process start. Construction panics on a
// mismatch between the reflected attribute set and the table domains;
// that is a programming error, not a runtime condition.
var (
	Articles     = newSchema("articles", ArticleResult{}, articleBackendPaths, articleSortKeys)
	Topics       = newSchema("topics", TopicResult{}, topicBackendPaths, topicSortKeys)
	TopicBatches = newSchema("topic_batches", TopicBatchResult{}, topicBatchBackendPaths, topicBatchSortKeys)
	Categories   = newSchema("categories", CategoryResult{}, categoryBackendPaths, nil)
)

var articleBackendPaths = map[string]BackendPaths{
	"id": Single(IDAlwaysReturned),
	// The merged categories live under article.categories; the analyzer
	// subset marker is needed to reconstruct analyzed_categories.
	"categories":   Multi("article.categories", "analyzer.category_ids"),
	"entities":     Single("analyzer.entities"),
	"topics":       Single("topics"),
	"url":          Single("article.url"),
	"publish_date": Single("article.publish_date"),
	"source":       Single("article.source"),
	"image":        Single("article.image"),
	"author":       Single("article.author"),
	"title":        Single("article.title"),
	"paragraphs":   Single("article.paragraphs"),
}

var articleSortKeys = map[string]string{
	"publish_date": "article.publish_date",
}

var topicBackendPaths = map[string]BackendPaths{
	"id":                             Single(IDAlwaysReturned),
	"batch_id":                       Single("batch_id"),
	"batch_query.publish_date.start": Single("batch_query.publish_date.start"),
	"batch_query.publish_date.end":   Single("batch_query.publish_date.end"),
	"create_time":                    Single("create_time"),
	"topic":                          Single("topic"),
	"count":                          Single("count"),
	"representative_articles":        Single("representative_articles"),
}

var topicSortKeys = map[string]string{
	"date_min": "batch_query.publish_date.start",
	"date_max": "batch_query.publish_date.end",
	"count":    "count",
}

var topicBatchBackendPaths = map[string]BackendPaths{
	"id":                       Single(IDAlwaysReturned),
	"query.publish_date.start": Single("query.publish_date.start"),
	"query.publish_date.end":   Single("query.publish_date.end"),
	"article_count":            Single("article_count"),
	"topic_count":              Single("topic_count"),
	"create_time":              Single("create_time"),
}

var topicBatchSortKeys = map[string]string{
	"date_min":      "query.publish_date.start",
	"date_max":      "query.publish_date.end",
	"article_count": "article_count",
	"topic_count":   "topic_count",
}

var categoryBackendPaths = map[string]BackendPaths{
	"id":   Single(IDAlwaysReturned),
	"name": Single("name"),
}

func newSchema(name string, sample any, backend map[string]BackendPaths, sortKeys map[string]string) *Schema {
	attrs := make(map[string]struct{})
	flattenAttrPaths(reflect.TypeOf(sample), "", attrs)

	s := &Schema{
		name:      name,
		attrPaths: attrs,
		backend:   backend,
		sortKeys:  sortKeys,
	}

	// The mapping domain must be exactly the reflected attribute set.
	for path := range backend {
		if _, ok := attrs[path]; !ok {
			panic(fmt.Sprintf("dto: schema %q maps unknown attribute %q", name, path))
		}
	}
	for path := range attrs {
		if _, ok := backend[path]; !ok {
			panic(fmt.Sprintf("dto: schema %q has no backend mapping for attribute %q", name, path))
		}
	}
	return s
}

// flattenAttrPaths collects the dot-joined leaf paths of a result DTO.
// Pointers are crossed, nested structs are recursed into, and slices,
// maps and time.Time count as leaves.
func flattenAttrPaths(t reflect.Type, prefix string, out map[string]struct{}) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := jsonName(field)
		if name == "" {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		ft := field.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && ft != reflect.TypeOf(time.Time{}) {
			flattenAttrPaths(ft, path, out)
			continue
		}
		out[path] = struct{}{}
	}
}

func jsonName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if idx := strings.Index(tag, ","); idx >= 0 {
		tag = tag[:idx]
	}
	if tag == "" {
		return field.Name
	}
	return tag
}

// Name returns the entity name of the schema.
func (s *Schema) Name() string { return s.name }

// ValidAttr reports whether path is a known attribute path.
func (s *Schema) ValidAttr(path string) bool {
	_, ok := s.attrPaths[path]
	return ok
}

// AttrPaths returns the sorted attribute-path set, for error messages
// and tests.
func (s *Schema) AttrPaths() []string {
	paths := make([]string, 0, len(s.attrPaths))
	for p := range s.attrPaths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ProjectionMask expands the requested attributes through the backend
// mapping into a store source mask. A nil or empty request means
// "return everything" and yields nil.
func (s *Schema) ProjectionMask(attrs []string) []string {
	if len(attrs) == 0 {
		return nil
	}
	mask := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		if bp, ok := s.backend[attr]; ok {
			mask = append(mask, bp.Expand()...)
		}
	}
	return mask
}

// SortField resolves a request sort key to its backend sort field.
func (s *Schema) SortField(key string) (string, bool) {
	field, ok := s.sortKeys[key]
	return field, ok
}

// SortKeys returns the sorted sortable-field allow-list.
func (s *Schema) SortKeys() []string {
	keys := make([]string, 0, len(s.sortKeys))
	for k := range s.sortKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
