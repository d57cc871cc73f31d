package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisChannelPrefix = "chat:"

// Redis publishes events on per-chat pub/sub channels and relays everything
// it hears into a local Memory broker.
type Redis struct {
	client *redis.Client
	pubsub *redis.PubSub
	local  *Memory
	log    *zap.Logger
	done   chan struct{}
}

func NewRedis(ctx context.Context, redisURL string, log *zap.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisWithClient(ctx, redis.NewClient(opts), log)
}

func NewRedisWithClient(ctx context.Context, client *redis.Client, log *zap.Logger) (*Redis, error) {
	if log == nil {
		log = zap.NewNop()
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	ps := client.PSubscribe(ctx, redisChannelPrefix+"*")
	if _, err := ps.Receive(pingCtx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe to chat channels: %w", err)
	}

	r := &Redis{
		client: client,
		pubsub: ps,
		local:  NewMemory(log),
		log:    log,
		done:   make(chan struct{}),
	}
	go r.relay()
	return r, nil
}

func (r *Redis) relay() {
	defer close(r.done)

	for msg := range r.pubsub.Channel() {
		var ev MessageEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			r.log.Error("unable to decode event", zap.String("channel", msg.Channel), zap.Error(err))
			continue
		}
		if ev.ChatID == "" {
			ev.ChatID = strings.TrimPrefix(msg.Channel, redisChannelPrefix)
		}
		r.local.deliver(&ev)
	}
}

func (r *Redis) Publish(ctx context.Context, ev *MessageEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return r.client.Publish(ctx, redisChannelPrefix+ev.ChatID, payload).Err()
}

func (r *Redis) Subscribe(ctx context.Context, chatID string) (<-chan *MessageEvent, error) {
	return r.local.Subscribe(ctx, chatID)
}

func (r *Redis) Close() error {
	err := r.pubsub.Close()
	<-r.done
	_ = r.local.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}
