package events

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("events: broker closed")

// Memory is an in-process broker. Delivery never blocks the publisher: a
// subscriber whose buffer is full misses the event.
type Memory struct {
	log *zap.Logger

	lock   sync.Mutex
	subs   map[string]map[uuid.UUID]chan *MessageEvent
	closed bool
}

func NewMemory(log *zap.Logger) *Memory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Memory{
		log:  log,
		subs: make(map[string]map[uuid.UUID]chan *MessageEvent),
	}
}

func (m *Memory) Publish(_ context.Context, ev *MessageEvent) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.deliverLocked(ev)
	return nil
}

func (m *Memory) deliver(ev *MessageEvent) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if !m.closed {
		m.deliverLocked(ev)
	}
}

func (m *Memory) deliverLocked(ev *MessageEvent) {
	for id, ch := range m.subs[ev.ChatID] {
		select {
		case ch <- ev:
		default:
			m.log.Warn("dropping event for slow subscriber",
				zap.String("chat_id", ev.ChatID),
				zap.String("subscriber", id.String()),
			)
		}
	}
}

func (m *Memory) Subscribe(ctx context.Context, chatID string) (<-chan *MessageEvent, error) {
	ch := make(chan *MessageEvent, subscriberBuffer)
	id := uuid.New()

	m.lock.Lock()
	if m.closed {
		m.lock.Unlock()
		return nil, ErrClosed
	}
	if m.subs[chatID] == nil {
		m.subs[chatID] = make(map[uuid.UUID]chan *MessageEvent)
	}
	m.subs[chatID][id] = ch
	m.lock.Unlock()

	go func() {
		<-ctx.Done()
		m.remove(chatID, id)
	}()

	return ch, nil
}

func (m *Memory) remove(chatID string, id uuid.UUID) {
	m.lock.Lock()
	defer m.lock.Unlock()

	ch, ok := m.subs[chatID][id]
	if !ok {
		return
	}
	delete(m.subs[chatID], id)
	if len(m.subs[chatID]) == 0 {
		delete(m.subs, chatID)
	}
	close(ch)
}

// Subscribers returns the number of live subscriptions for chatID.
func (m *Memory) Subscribers(chatID string) int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.subs[chatID])
}

func (m *Memory) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	for chatID, subs := range m.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(m.subs, chatID)
	}
	return nil
}
