// Package stream consumes article notifications from a Redis stream
// through a consumer group, with at-least-once delivery: messages are
// acknowledged only after the handler succeeds, and messages stranded on
// dead consumers are reclaimed.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/newscope/searcher/internal/errors"
)

// Consumer tuning.
const (
	// readCount bounds the batch of one XREADGROUP call.
	readCount = 10
	// readBlock is how long a read blocks waiting for new messages.
	readBlock = 10 * time.Second

	// claimMinIdle is the idle time after which another consumer's
	// pending message may be claimed.
	claimMinIdle = time.Second
	// claimInterval is the pause between auto-claim attempts.
	claimInterval = 5 * time.Second
	// claimCount bounds the batch of one XAUTOCLAIM call.
	claimCount = 10

	// reconnect backoff bounds; the backoff doubles up to the cap.
	reconnectMin = 500 * time.Millisecond
	reconnectMax = time.Second
	reconnectCap = 30 * time.Second
)

// Client is the subset of the Redis client the consumer uses.
type Client interface {
	Ping(ctx context.Context) *redis.StatusCmd
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	XAutoClaimJustID(ctx context.Context, a *redis.XAutoClaimArgs) *redis.XAutoClaimJustIDCmd
}

// Handler processes one stream message. A non-nil error leaves the
// message un-acked so it stays pending for redelivery.
type Handler func(ctx context.Context, id string, values map[string]any) error

// Consumer reads a stream through a consumer group.
type Consumer struct {
	client   Client
	stream   string
	group    string
	consumer string
	log      *slog.Logger
}

// NewConsumer creates a consumer with a unique name within the group, so
// multiple replicas share the stream without stealing live messages from
// each other.
func NewConsumer(client Client, stream, group string, log *slog.Logger) *Consumer {
	name := fmt.Sprintf("%s_%s", group, strings.ReplaceAll(uuid.NewString(), "-", ""))
	return &Consumer{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: name,
		log:      log.With("stream", stream, "group", group, "consumer", name),
	}
}

// Run consumes the stream until ctx is cancelled.
//
// The loop first drains this consumer's pending entries (messages read
// but never acked before a crash), then switches to new messages. After
// every non-empty read it checks the pending cursor again, which also
// picks up messages the auto-claimer moved into this consumer's pending
// list.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	if err := c.createGroup(ctx); err != nil {
		return err
	}

	// The auto-claimer must not outlive the read loop, whichever way it
	// exits.
	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.autoClaim(ctx)
	}()

	c.log.Info("consumer starting")

	lastID := "0"
	checkPending := true
	for {
		if ctx.Err() != nil {
			c.log.Info("consumer shutting down")
			return nil
		}

		cursor := ">"
		if checkPending {
			cursor = lastID
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.consumer,
			Streams:  []string{c.stream, cursor},
			Count:    readCount,
			Block:    readBlock,
		}).Result()
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("consumer shutting down")
				return nil
			}
			if errors.Is(err, redis.Nil) {
				// Block timeout, nothing new.
				continue
			}
			if isConnectionError(err) {
				c.log.Warn("read failed, reconnecting", "error", err)
				c.waitForConnection(ctx)
				continue
			}
			// The server answered with an error; retrying would spin on
			// the same reply.
			c.log.Error("read failed", "error", err)
			return apperrors.Stream(fmt.Sprintf("read stream %q", c.stream), err)
		}
		if len(streams) == 0 {
			continue
		}

		batch := streams[0].Messages

		// An empty batch on the pending cursor means the backlog is
		// drained; a non-empty read always warrants another pending check
		// before moving on.
		checkPending = len(batch) != 0

		for _, msg := range batch {
			if err := handler(ctx, msg.ID, msg.Values); err != nil {
				c.log.Error("message handler failed", "id", msg.ID, "error", err)
				continue
			}
			if err := c.client.XAck(ctx, c.stream, c.group, msg.ID).Err(); err != nil {
				c.log.Error("ack failed", "id", msg.ID, "error", err)
				continue
			}
			lastID = msg.ID
		}
	}
}

// createGroup asserts the consumer group, creating the stream if needed.
// A group that already exists is fine.
func (c *Consumer) createGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %q on stream %q: %w", c.group, c.stream, err)
	}
	c.log.Info("consumer group asserted")
	return nil
}

// autoClaim periodically claims messages that sat pending on another
// consumer for too long, moving them into this consumer's pending list
// where the read loop's pending cursor picks them up.
func (c *Consumer) autoClaim(ctx context.Context) {
	ticker := time.NewTicker(claimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Debug("auto-claimer exiting")
			return
		case <-ticker.C:
		}

		ids, _, err := c.client.XAutoClaimJustID(ctx, &redis.XAutoClaimArgs{
			Stream:   c.stream,
			Group:    c.group,
			Consumer: c.consumer,
			MinIdle:  claimMinIdle,
			Start:    "0-0",
			Count:    claimCount,
		}).Result()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("auto-claim failed", "error", err)
			continue
		}
		if len(ids) > 0 {
			c.log.Debug("auto-claimed pending messages", "count", len(ids))
		}
	}
}

// isConnectionError reports whether err is a transport failure worth a
// reconnect, as opposed to an error reply from a reachable server.
func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, redis.ErrClosed)
}

// waitForConnection pings until the server answers, doubling the backoff
// between attempts.
func (c *Consumer) waitForConnection(ctx context.Context) {
	backoff := reconnectMin + time.Duration(rand.Int63n(int64(reconnectMax-reconnectMin)))
	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.client.Ping(ctx).Err(); err == nil {
			c.log.Info("reconnected")
			return
		}
		c.log.Info("server not ready, backing off", "backoff", backoff)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > reconnectCap {
			backoff = reconnectCap
		}
	}
}
