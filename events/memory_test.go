package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan *MessageEvent) *MessageEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestMemoryDeliversToChatSubscribers(t *testing.T) {
	m := NewMemory(nil)
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := m.Subscribe(ctx, "chat-1")
	require.NoError(t, err)
	b, err := m.Subscribe(ctx, "chat-1")
	require.NoError(t, err)
	other, err := m.Subscribe(ctx, "chat-2")
	require.NoError(t, err)

	require.NoError(t, m.Publish(ctx, &MessageEvent{ChatID: "chat-1", Content: "hi"}))

	require.Equal(t, "hi", receive(t, a).Content)
	require.Equal(t, "hi", receive(t, b).Content)
	select {
	case ev := <-other:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestMemoryDropsForSlowSubscriber(t *testing.T) {
	m := NewMemory(nil)
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := m.Subscribe(ctx, "chat-1")
	require.NoError(t, err)

	for i := 0; i < subscriberBuffer+10; i++ {
		require.NoError(t, m.Publish(ctx, &MessageEvent{ChatID: "chat-1"}))
	}
	require.Len(t, ch, subscriberBuffer)
}

func TestMemoryUnsubscribesOnCancel(t *testing.T) {
	m := NewMemory(nil)
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := m.Subscribe(ctx, "chat-1")
	require.NoError(t, err)
	require.Equal(t, 1, m.Subscribers("chat-1"))

	cancel()
	require.Eventually(t, func() bool { return m.Subscribers("chat-1") == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-ch
	require.False(t, ok)
}

func TestMemoryClose(t *testing.T) {
	m := NewMemory(nil)

	ch, err := m.Subscribe(context.Background(), "chat-1")
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, ok := <-ch
	require.False(t, ok)

	require.ErrorIs(t, m.Publish(context.Background(), &MessageEvent{ChatID: "chat-1"}), ErrClosed)
	_, err = m.Subscribe(context.Background(), "chat-1")
	require.ErrorIs(t, err, ErrClosed)
}
