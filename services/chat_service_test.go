package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"teamwork/store/storetest"
)

func TestSendMessagePublishes(t *testing.T) {
	h := newHarness(t)
	alice := storetest.User(t, h.store, "alice")
	team := storetest.Team(t, h.store, "core", alice.ID)
	chat, err := h.store.GetChatByTeam(context.Background(), team.ID)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	live, err := h.svc.Chats.Subscribe(ctx, as(alice), chat.ID)
	require.NoError(t, err)

	msg, err := h.svc.Chats.SendMessage(ctx, as(alice), chat.ID, " hello ")
	require.NoError(t, err)
	require.Equal(t, "hello", msg.Content)
	require.Equal(t, "alice", msg.Sender.Username)

	select {
	case ev := <-live:
		require.Equal(t, msg.ID, ev.MessageID)
		require.Equal(t, "hello", ev.Content)
		require.Equal(t, alice.ID, ev.SenderID)
	case <-time.After(time.Second):
		t.Fatal("message was not published")
	}

	got, err := h.store.GetChat(ctx, chat.ID)
	require.NoError(t, err)
	require.Equal(t, msg.ID, got.LatestMessage)

	_, err = h.svc.Chats.SendMessage(ctx, as(alice), chat.ID, "   ")
	requireStatus(t, err, http.StatusBadRequest, "Message cannot be empty")

	_, err = h.svc.Chats.SendMessage(ctx, as(alice), "missing", "hi")
	requireStatus(t, err, http.StatusNotFound, "Chat not found")
}

func TestFetchChat(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := storetest.User(t, h.store, "alice")
	bob := storetest.User(t, h.store, "bob")
	team := storetest.Team(t, h.store, "core", alice.ID, bob.ID)
	chat, err := h.store.GetChatByTeam(ctx, team.ID)
	require.NoError(t, err)

	_, err = h.svc.Chats.SendMessage(ctx, as(alice), chat.ID, "first")
	require.NoError(t, err)
	_, err = h.svc.Chats.SendMessage(ctx, as(bob), chat.ID, "second")
	require.NoError(t, err)

	msgs, err := h.svc.Chats.FetchChat(ctx, as(bob), chat.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "first", msgs[0].Content)
	require.Equal(t, "alice", msgs[0].Sender.Username)
	require.Equal(t, "bob", msgs[1].Sender.Username)

	names, err := h.svc.Chats.FetchChatNames(ctx, as(bob))
	require.NoError(t, err)
	require.Len(t, names, 1)
	require.Equal(t, "core", names[0].Team.Name)
	require.Equal(t, msgs[1].ID, names[0].LatestMessage)
}
