package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestRedisRelaysPublishedEvents(t *testing.T) {
	s := miniredis.RunT(t)

	ctx := context.Background()
	b, err := NewRedis(ctx, "redis://"+s.Addr(), nil)
	require.NoError(t, err)
	defer b.Close()

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	ch, err := b.Subscribe(subCtx, "chat-1")
	require.NoError(t, err)

	sent := &MessageEvent{
		ChatID:    "chat-1",
		MessageID: "m-1",
		SenderID:  "u-1",
		Content:   "hello",
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, b.Publish(ctx, sent))

	got := receive(t, ch)
	require.Equal(t, "m-1", got.MessageID)
	require.Equal(t, "hello", got.Content)
	require.True(t, sent.CreatedAt.Equal(got.CreatedAt))
}

func TestRedisBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "://nope", nil)
	require.Error(t, err)
}
