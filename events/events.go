// Package events fans chat messages out to realtime subscribers. The memory
// broker delivers within one process; the redis and amqp brokers relay
// through an external bus so every instance sees every message.
package events

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"teamwork/config"
)

// ChatExchange is the amqp topic exchange; routing keys are chat ids.
const ChatExchange = "chat"

// subscriberBuffer bounds each subscriber's backlog. Events beyond it drop.
const subscriberBuffer = 32

type MessageEvent struct {
	ChatID         string
	MessageID      string
	SenderID       string
	SenderName     string
	SenderUsername string
	SenderPicture  string
	Content        string
	CreatedAt      time.Time
}

type Broker interface {
	Publish(ctx context.Context, ev *MessageEvent) error
	// Subscribe returns a channel of events for chatID. The channel closes
	// when ctx is done or the broker closes.
	Subscribe(ctx context.Context, chatID string) (<-chan *MessageEvent, error)
	Close() error
}

// Open builds the broker selected by events.driver.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (Broker, error) {
	log = log.Named("events")

	switch cfg.Events.Driver {
	case "memory":
		return NewMemory(log), nil
	case "redis":
		return NewRedis(ctx, cfg.Redis.URL, log)
	case "amqp":
		return NewAMQP(cfg.AMQP.URL, log)
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Events.Driver)
	}
}
