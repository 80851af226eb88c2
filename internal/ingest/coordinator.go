package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/newscope/searcher/internal/store"
)

// BatchSource fetches analyzed articles by id from the intermediate
// store.
type BatchSource interface {
	GetBatch(ctx context.Context, ids []string) ([]store.BulkDoc, error)
}

// Upserter writes documents into the search index.
type Upserter interface {
	BulkUpsert(ctx context.Context, index string, docs []store.BulkDoc) error
}

// Coordinator turns analyzer notifications into index upserts. Upserts
// are idempotent on the article id, so redelivered notifications are
// safe.
type Coordinator struct {
	source BatchSource
	store  Upserter
	log    *slog.Logger
}

// NewCoordinator creates an ingest coordinator.
func NewCoordinator(source BatchSource, st Upserter, log *slog.Logger) *Coordinator {
	return &Coordinator{source: source, store: st, log: log}
}

// HandleNotification processes one notification payload: the id batch
// announced by the analyzer, as a JSON string list or a single string.
// An empty fetch is logged and dropped; returning nil lets the message
// be acked, since retrying a batch that is not there cannot help.
func (c *Coordinator) HandleNotification(ctx context.Context, payload []byte) error {
	ids, err := decodeIDs(payload)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		c.log.Warn("notification with no article ids")
		return nil
	}

	docs, err := c.source.GetBatch(ctx, ids)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		c.log.Warn("no documents found for notified batch", "ids", len(ids))
		return nil
	}

	if err := c.store.BulkUpsert(ctx, store.ArticlesIndex, docs); err != nil {
		return err
	}
	c.log.Info("stored analyzed articles", "notified", len(ids), "stored", len(docs))
	return nil
}

func decodeIDs(payload []byte) ([]string, error) {
	var ids []string
	if err := json.Unmarshal(payload, &ids); err == nil {
		return ids, nil
	}
	var id string
	if err := json.Unmarshal(payload, &id); err == nil {
		if id == "" {
			return nil, nil
		}
		return []string{id}, nil
	}
	return nil, fmt.Errorf("undecodable notification payload: %s", payload)
}
