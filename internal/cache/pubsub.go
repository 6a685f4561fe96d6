package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/constants"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/history"
)

// PubSub distributes newly observed wallet events over Redis Pub/Sub.
type PubSub struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewPubSub creates a publisher/subscriber on an existing Redis client.
func NewPubSub(client *redis.Client, logger *logrus.Logger) *PubSub {
	if logger == nil {
		logger = logrus.New()
	}
	return &PubSub{client: client, logger: logger}
}

// PublishEvents publishes each event to the firehose channel and the
// wallet-specific channel.
func (p *PubSub) PublishEvents(ctx context.Context, wallet string, events []history.Event) error {
	if len(events) == 0 {
		return nil
	}

	pipe := p.client.Pipeline()
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		pipe.Publish(ctx, constants.PubSubChannelEvents, data)
		pipe.Publish(ctx, constants.PubSubChannelWalletPrefix+wallet, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish events: %w", err)
	}
	return nil
}

// Subscribe consumes events from a channel until the context is cancelled or
// the subscription closes. Undecodable payloads are skipped.
func (p *PubSub) Subscribe(ctx context.Context, channel string, handler func(*history.Event)) error {
	sub := p.client.Subscribe(ctx, channel)
	defer sub.Close()

	p.logger.WithField("channel", channel).Info("subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev history.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				p.logger.WithError(err).Debug("skipping undecodable event payload")
				continue
			}
			handler(&ev)
		}
	}
}
