package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/newscope/searcher/internal/ingest"
	"github.com/newscope/searcher/internal/store"
	"github.com/newscope/searcher/internal/stream"
)

// newIngestCmd creates the ingest command running the stream-driven
// index worker.
func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Run the index ingest worker",
		Long: `Consume analyzer notifications from the Redis stream and move the
announced article batches from the intermediate store into the search
index.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd.Context())
		},
	}
}

func runIngest(ctx context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateIngest(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(cfg.Elastic, log)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.AssertIndex(ctx, store.ArticlesIndex); err != nil {
		return err
	}

	source, err := ingest.NewMongoSource(ctx, cfg.Mongo, log)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close(context.Background()) }()

	coordinator := ingest.NewCoordinator(source, st, log)

	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer func() { _ = client.Close() }()

	consumer := stream.NewConsumer(client, cfg.Redis.StreamName, cfg.Redis.ConsumerGroup, log)
	return consumer.Run(ctx, func(ctx context.Context, id string, values map[string]any) error {
		payload, err := donePayload(values)
		if err != nil {
			return err
		}
		return coordinator.HandleNotification(ctx, payload)
	})
}

// donePayload extracts the notification body from the stream message.
// The analyzer publishes the batch under the "done" field, JSON-encoded.
func donePayload(values map[string]any) ([]byte, error) {
	raw, ok := values["done"]
	if !ok {
		return nil, fmt.Errorf("stream message without 'done' field")
	}
	switch v := raw.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}
