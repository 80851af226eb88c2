package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/newscope/searcher/internal/errors"
)

// Index names.
const (
	ArticlesIndex     = "articles"
	TopicsIndex       = "topics"
	TopicBatchesIndex = "topic_batches"
	CategoriesIndex   = "categories"
)

// EmbeddingDims is the vector width of the articles mapping. It must
// match the embedding model feeding the index.
const EmbeddingDims = 384

type M = map[string]any

// textWithKeyword adds a keyword subfield so the field supports
// aggregations besides full-text matching.
func textWithKeyword() M {
	return M{
		"type": "text",
		"fields": M{
			"keyword": M{"type": "keyword", "ignore_above": 256},
		},
	}
}

var articlesMapping = M{
	"properties": M{
		"topics": M{
			"properties": M{
				"topic_ids":   M{"type": "keyword"},
				"topic_names": M{"type": "text"},
			},
		},
		"analyzer": M{
			"properties": M{
				// Only the merged categories are indexed; the analyzer ids
				// exist to tell predicted categories apart from predefined
				// ones.
				"category_ids": M{"type": "keyword", "enabled": "false"},
				"embeddings": M{
					"type": "dense_vector",
					"dims": EmbeddingDims,
				},
				"entities": M{"type": "text"},
			},
		},
		"article": M{
			"properties": M{
				"id":           M{"type": "keyword"},
				"url":          M{"type": "keyword"},
				"source":       textWithKeyword(),
				"publish_date": M{"type": "date"},
				"image":        M{"type": "keyword", "enabled": "false"},
				"author":       M{"type": "text"},
				"title":        M{"type": "text"},
				"paragraphs":   M{"type": "text"},
				"categories": M{
					"properties": M{
						"ids":   M{"type": "keyword"},
						"names": textWithKeyword(),
					},
				},
			},
		},
	},
}

var topicsMapping = M{
	"properties": M{
		"batch_id": M{"type": "keyword"},
		"batch_query": M{
			"properties": M{
				"publish_date": M{
					"properties": M{
						"start": M{"type": "date"},
						"end":   M{"type": "date"},
					},
				},
			},
		},
		"create_time": M{"type": "date"},
		"topic":       M{"type": "text"},
		"count":       M{"type": "long"},
		"representative_articles": M{
			"properties": M{
				"id":           M{"type": "keyword"},
				"url":          M{"type": "keyword"},
				"image":        M{"type": "keyword", "enabled": "false"},
				"publish_date": M{"type": "date"},
				"author":       M{"type": "text"},
				"title":        M{"type": "text"},
			},
		},
	},
}

var topicBatchesMapping = M{
	"properties": M{
		"query": M{
			"properties": M{
				"publish_date": M{
					"properties": M{
						"start": M{"type": "date"},
						"end":   M{"type": "date"},
					},
				},
			},
		},
		"article_count": M{"type": "long"},
		"topic_count":   M{"type": "long"},
		"create_time":   M{"type": "date"},
	},
}

var categoriesMapping = M{
	"properties": M{
		"name": M{"type": "text"},
	},
}

var indexMappings = map[string]M{
	ArticlesIndex:     articlesMapping,
	TopicsIndex:       topicsMapping,
	TopicBatchesIndex: topicBatchesMapping,
	CategoriesIndex:   categoriesMapping,
}

// AssertIndex creates the named index with its mapping. An index that
// already exists is left untouched, so the call is safe on every
// startup.
func (s *Store) AssertIndex(ctx context.Context, index string) error {
	mapping, ok := indexMappings[index]
	if !ok {
		return errors.Startup(fmt.Sprintf("unknown index %q", index), nil)
	}

	body, err := json.Marshal(M{"mappings": mapping})
	if err != nil {
		return errors.Startup(fmt.Sprintf("marshal mapping for index %q", index), err)
	}

	s.log.Info("asserting index", "index", index)
	res, err := s.es.Indices.Create(
		index,
		s.es.Indices.Create.WithContext(ctx),
		s.es.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return errors.StoreTransient(fmt.Sprintf("create index %q", index), err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		raw, _ := readBody(res.Body)
		if strings.Contains(raw, "resource_already_exists_exception") {
			s.log.Info("index already exists", "index", index)
			return nil
		}
		return errors.Startup(fmt.Sprintf("create index %q: %s: %s", index, res.Status(), raw), nil)
	}
	return nil
}

// AssertIndices asserts every index the searcher reads from.
func (s *Store) AssertIndices(ctx context.Context) error {
	for _, index := range []string{ArticlesIndex, TopicsIndex, TopicBatchesIndex, CategoriesIndex} {
		if err := s.AssertIndex(ctx, index); err != nil {
			return err
		}
	}
	return nil
}
