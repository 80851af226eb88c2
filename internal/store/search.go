package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/newscope/searcher/internal/errors"
	"github.com/newscope/searcher/internal/query"
)

// Hit is one search result: the backend document id, its relevance
// score and the projected source document.
type Hit struct {
	ID     string
	Score  float64
	Source json.RawMessage
}

// Result is the hit page plus the total match count.
type Result struct {
	Total int64
	Hits  []Hit
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string          `json:"_id"`
			Score  *float64        `json:"_score"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search executes a compiled descriptor against the given index.
func (s *Store) Search(ctx context.Context, index string, d *query.Descriptor) (*Result, error) {
	body, err := json.Marshal(d.Body())
	if err != nil {
		return nil, errors.StoreContract("marshal search body", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(index),
		s.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, errors.StoreTransient(fmt.Sprintf("search %q", index), err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		raw, _ := readBody(res.Body)
		if res.StatusCode >= 500 || res.StatusCode == 429 {
			return nil, errors.StoreTransient(fmt.Sprintf("search %q: %s: %s", index, res.Status(), raw), nil)
		}
		return nil, errors.StoreContract(fmt.Sprintf("search %q: %s: %s", index, res.Status(), raw), nil)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, errors.StoreContract(fmt.Sprintf("decode search response for %q", index), err)
	}

	out := &Result{
		Total: sr.Hits.Total.Value,
		Hits:  make([]Hit, 0, len(sr.Hits.Hits)),
	}
	for _, h := range sr.Hits.Hits {
		if h.ID == "" {
			return nil, errors.StoreContract(fmt.Sprintf("hit without _id in %q response", index), nil)
		}
		hit := Hit{ID: h.ID, Source: h.Source}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

func readBody(r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, 8192))
	return string(raw), err
}
