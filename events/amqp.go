package events

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// AMQP publishes gob-encoded events on a topic exchange keyed by chat id
// and relays its private queue into a local Memory broker.
type AMQP struct {
	conn  *amqp.Connection
	log   *zap.Logger
	local *Memory

	pubLock sync.Mutex
	pub     *amqp.Channel
	sub     *amqp.Channel
	done    chan struct{}
}

func NewAMQP(url string, log *zap.Logger) (*AMQP, error) {
	if log == nil {
		log = zap.NewNop()
	}

	conn, err := dialWithRetry(url, log)
	if err != nil {
		return nil, err
	}

	pub, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open publish channel: %w", err)
	}

	err = pub.ExchangeDeclare(
		ChatExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	sub, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open consume channel: %w", err)
	}

	q, err := sub.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	err = sub.QueueBind(
		q.Name,
		"#", // matches all chats
		ChatExchange,
		false,
		nil,
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	msgs, err := sub.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("consume queue: %w", err)
	}

	a := &AMQP{
		conn:  conn,
		log:   log,
		local: NewMemory(log),
		pub:   pub,
		sub:   sub,
		done:  make(chan struct{}),
	}
	go a.relay(msgs)
	return a, nil
}

func dialWithRetry(url string, log *zap.Logger) (*amqp.Connection, error) {
	wait := time.Second
	var lastErr error
	for i := 0; i < 6; i++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			log.Info("connected to rabbitmq")
			return conn, nil
		}
		lastErr = err
		log.Warn("rabbitmq not reachable, retrying", zap.Duration("wait", wait), zap.Error(err))
		time.Sleep(wait)
		wait *= 2
	}
	return nil, fmt.Errorf("dial rabbitmq: %w", lastErr)
}

func (a *AMQP) relay(msgs <-chan amqp.Delivery) {
	defer close(a.done)

	for d := range msgs {
		ev, err := decodeEvent(d.Body)
		if err != nil {
			a.log.Error("unable to decode event", zap.Error(err))
			continue
		}
		a.local.deliver(ev)
	}
}

func encodeEvent(ev *MessageEvent) ([]byte, error) {
	var b bytes.Buffer
	if err := gob.NewEncoder(&b).Encode(ev); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func decodeEvent(body []byte) (*MessageEvent, error) {
	var ev MessageEvent
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (a *AMQP) Publish(_ context.Context, ev *MessageEvent) error {
	body, err := encodeEvent(ev)
	if err != nil {
		return err
	}

	a.pubLock.Lock()
	defer a.pubLock.Unlock()

	return a.pub.Publish(ChatExchange, ev.ChatID, false, false, amqp.Publishing{
		ContentType: "application/x-gob",
		Timestamp:   ev.CreatedAt,
		Body:        body,
	})
}

func (a *AMQP) Subscribe(ctx context.Context, chatID string) (<-chan *MessageEvent, error) {
	return a.local.Subscribe(ctx, chatID)
}

func (a *AMQP) Close() error {
	if err := a.sub.Close(); err != nil {
		a.log.Error("unable to close channel", zap.Error(err))
	}
	<-a.done

	a.pubLock.Lock()
	_ = a.pub.Close()
	a.pubLock.Unlock()

	_ = a.local.Close()
	return a.conn.Close()
}
