package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/newscope/searcher/internal/errors"
)

// BulkDoc is one document of a bulk upsert: the target document id and
// the full source body.
type BulkDoc struct {
	ID   string
	Body json.RawMessage
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// BulkUpsert indexes the documents into index, overwriting existing ones
// with the same id. Per-document failures are logged and skipped; only a
// transport-level failure aborts the batch.
func (s *Store) BulkUpsert(ctx context.Context, index string, docs []BulkDoc) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, doc := range docs {
		action, err := json.Marshal(M{"index": M{"_index": index, "_id": doc.ID}})
		if err != nil {
			return errors.StoreContract("marshal bulk action", err)
		}
		buf.Write(action)
		buf.WriteByte('\n')
		buf.Write(doc.Body)
		buf.WriteByte('\n')
	}

	res, err := s.es.Bulk(
		bytes.NewReader(buf.Bytes()),
		s.es.Bulk.WithContext(ctx),
		s.es.Bulk.WithIndex(index),
	)
	if err != nil {
		return errors.StoreTransient(fmt.Sprintf("bulk upsert into %q", index), err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		raw, _ := readBody(res.Body)
		if res.StatusCode >= 500 || res.StatusCode == 429 {
			return errors.StoreTransient(fmt.Sprintf("bulk upsert into %q: %s: %s", index, res.Status(), raw), nil)
		}
		return errors.StoreContract(fmt.Sprintf("bulk upsert into %q: %s: %s", index, res.Status(), raw), nil)
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return errors.StoreContract("decode bulk response", err)
	}
	if !br.Errors {
		s.log.Info("bulk upsert complete", "index", index, "docs", len(docs))
		return nil
	}

	failed := 0
	for _, item := range br.Items {
		for op, detail := range item {
			if detail.Error == nil {
				continue
			}
			failed++
			s.log.Error("bulk item failed",
				"index", index,
				"op", op,
				"id", detail.ID,
				"status", detail.Status,
				"type", detail.Error.Type,
				"reason", detail.Error.Reason)
		}
	}
	s.log.Warn("bulk upsert finished with failures", "index", index, "docs", len(docs), "failed", failed)
	return nil
}
