// Package ingest moves analyzed articles from the intermediate store
// into the search index, driven by stream notifications.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/newscope/searcher/internal/config"
	"github.com/newscope/searcher/internal/errors"
	"github.com/newscope/searcher/internal/store"
)

// MongoSource reads analyzed article batches from the analyzer's
// intermediate collection.
type MongoSource struct {
	client *mongo.Client
	coll   *mongo.Collection
	log    *slog.Logger
}

// NewMongoSource connects to the intermediate store. The connection is
// verified with a ping so misconfiguration fails at startup.
func NewMongoSource(ctx context.Context, cfg config.MongoConfig, log *slog.Logger) (*MongoSource, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI()))
	if err != nil {
		return nil, errors.Startup("create intermediate store client", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Startup(fmt.Sprintf("connect to intermediate store at %s", cfg.URI()), err)
	}

	log.Info("connected to intermediate store", "database", cfg.Database, "collection", cfg.Collection)
	return &MongoSource{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		log:    log,
	}, nil
}

// GetBatch fetches the documents with the given ids and shapes them for
// the bulk upsert: the document id comes from the nested article id, the
// body is the document minus the intermediate store's own id field.
func (m *MongoSource) GetBatch(ctx context.Context, ids []string) ([]store.BulkDoc, error) {
	cur, err := m.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.StoreTransient("fetch analyzed article batch", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var docs []store.BulkDoc
	for cur.Next(ctx) {
		doc, err := shapeDoc(cur.Current)
		if err != nil {
			// A malformed intermediate document must not poison the batch.
			m.log.Error("skipping malformed document", "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.StoreTransient("iterate analyzed article batch", err)
	}
	return docs, nil
}

func shapeDoc(raw bson.Raw) (store.BulkDoc, error) {
	id, ok := raw.Lookup("article", "id").StringValueOK()
	if !ok || id == "" {
		return store.BulkDoc{}, fmt.Errorf("document without article id: %s", raw.String())
	}

	// The intermediate id duplicates the article id and the index would
	// reject it as a metadata field.
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return store.BulkDoc{}, fmt.Errorf("decode document %q: %w", id, err)
	}
	kept := make(bson.D, 0, len(doc))
	for _, el := range doc {
		if el.Key == "_id" {
			continue
		}
		kept = append(kept, el)
	}

	body, err := bson.MarshalExtJSON(kept, false, false)
	if err != nil {
		return store.BulkDoc{}, fmt.Errorf("encode document %q: %w", id, err)
	}
	return store.BulkDoc{ID: id, Body: body}, nil
}

// Close disconnects from the intermediate store.
func (m *MongoSource) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
