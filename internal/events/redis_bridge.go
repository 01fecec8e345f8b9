package events

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"project-tracker-api/internal/metrics"
)

// DefaultSubscribeRetryDelay is the pause between attempts to (re)subscribe
// to the event channel.
const DefaultSubscribeRetryDelay = 5 * time.Second

// RedisBridge publishes events on a redis channel so every replica's hub
// sees mutations made on any replica. Without a client it talks to the
// local hub directly.
type RedisBridge struct {
	client     *redis.Client
	channel    string
	hub        *Hub
	logger     *zap.Logger
	metrics    *metrics.Metrics
	retryDelay time.Duration

	// set while Run holds a confirmed subscription
	subscribed atomic.Bool
}

// NewRedisBridge creates a bridge. client may be nil.
func NewRedisBridge(client *redis.Client, channel string, hub *Hub, logger *zap.Logger, m *metrics.Metrics) *RedisBridge {
	if channel == "" {
		channel = "tracker:events"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBridge{
		client:     client,
		channel:    channel,
		hub:        hub,
		logger:     logger,
		metrics:    m,
		retryDelay: DefaultSubscribeRetryDelay,
	}
}

// Subscribed reports whether events from other replicas are being received
func (b *RedisBridge) Subscribed() bool {
	return b.subscribed.Load()
}

// Publish sends msg to every replica. While this replica holds no
// subscription it would never hear the message back, so local clients are
// served from the hub and redis gets a best-effort copy for the others.
func (b *RedisBridge) Publish(ctx context.Context, msg Message) error {
	if b.client == nil {
		return b.hub.Publish(ctx, msg)
	}

	frame, err := msg.Encode()
	if err != nil {
		return err
	}

	if !b.subscribed.Load() {
		if err := b.client.Publish(ctx, b.channel, frame).Err(); err != nil {
			b.logger.Debug("Event not relayed to other replicas",
				zap.String("type", string(msg.Type)),
				zap.Error(err),
			)
		}
		return b.hub.Publish(ctx, msg)
	}

	if err := b.client.Publish(ctx, b.channel, frame).Err(); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", msg.Type, err)
	}
	recordPublished(b.metrics, msg)
	return nil
}

// Run forwards channel messages to the local hub until ctx is cancelled. A
// failed or lost subscription is retried after a fixed delay.
func (b *RedisBridge) Run(ctx context.Context) error {
	if b.client == nil {
		<-ctx.Done()
		return nil
	}

	for {
		err := b.forward(ctx)
		if ctx.Err() != nil {
			return nil
		}
		b.logger.Warn("Event subscription lost, retrying",
			zap.String("channel", b.channel),
			zap.Duration("delay", b.retryDelay),
			zap.Error(err),
		)

		timer := time.NewTimer(b.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// forward holds one subscription and relays it to the hub until it ends
func (b *RedisBridge) forward(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	// wait for the subscription to be confirmed before reporting ready
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	b.subscribed.Store(true)
	defer b.subscribed.Store(false)
	b.logger.Info("Subscribed to event channel", zap.String("channel", b.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return errors.New("subscription channel closed")
			}
			if _, err := Decode([]byte(m.Payload)); err != nil {
				b.logger.Warn("Discarding malformed event from redis", zap.Error(err))
				continue
			}
			b.hub.Broadcast([]byte(m.Payload))
		}
	}
}
