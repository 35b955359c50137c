package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"query-proxy/configs"
)

// Publisher sends JSON payloads to one pub/sub channel.
type Publisher struct {
	client  redis.UniversalClient
	channel string
}

// NewPublisher connects to the configured Redis and verifies it with PING.
func NewPublisher(ctx context.Context, conf configs.RedisConfig) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", conf.Addr, err)
	}
	return NewPublisherWithClient(rdb, conf.Channel), nil
}

func NewPublisherWithClient(client redis.UniversalClient, channel string) *Publisher {
	return &Publisher{client: client, channel: channel}
}

func (p *Publisher) Publish(ctx context.Context, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, b).Err()
}

func (p *Publisher) Close() error {
	return p.client.Close()
}
