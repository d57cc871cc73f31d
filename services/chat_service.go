// services/chat_service.go - Team chat messages
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"teamwork/authz"
	"teamwork/errs"
	"teamwork/events"
	"teamwork/models"
	"teamwork/store"
)

type ChatService struct {
	base
	broker events.Broker
}

// NewChatService wires the chat handlers. A nil broker disables realtime
// fan-out; messages are still stored.
func NewChatService(s store.Store, broker events.Broker, log *zap.Logger) *ChatService {
	return &ChatService{base: base{store: s, log: log.Named("chat")}, broker: broker}
}

// MessageView is a message with its sender expanded.
type MessageView struct {
	ID        string            `json:"id"`
	ChatID    string            `json:"groupChat"`
	Sender    models.PublicUser `json:"sender"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"createdAt"`
}

type ChatTeam struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ChatSummary names a chat after its team.
type ChatSummary struct {
	ID            string    `json:"id"`
	Team          ChatTeam  `json:"team"`
	LatestMessage string    `json:"latestMessage,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SendMessage stores the message, marks it as the chat's latest and
// publishes it to live subscribers.
func (s *ChatService) SendMessage(ctx context.Context, id authz.Identity, chatID, content string) (*MessageView, error) {
	const failed = "Failed to send message"

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.Validation("Message cannot be empty")
	}
	sender, err := s.store.GetUser(ctx, id.UserID)
	if err != nil {
		return nil, s.fail(err, "User not found", failed)
	}

	ts := now()
	msg := &models.Message{
		ID:        uuid.NewString(),
		Sender:    sender.ID,
		ChatID:    chatID,
		Content:   content,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	err = s.store.Atomic(ctx, func(tx store.Store) error {
		if err := tx.CreateMessage(ctx, msg); err != nil {
			return err
		}
		return tx.SetLatestMessage(ctx, chatID, msg.ID)
	})
	if err != nil {
		return nil, s.fail(err, "Chat not found", failed)
	}

	if s.broker != nil {
		ev := &events.MessageEvent{
			ChatID:         chatID,
			MessageID:      msg.ID,
			SenderID:       sender.ID,
			SenderName:     sender.Name,
			SenderUsername: sender.Username,
			SenderPicture:  sender.Picture,
			Content:        msg.Content,
			CreatedAt:      msg.CreatedAt,
		}
		if err := s.broker.Publish(ctx, ev); err != nil {
			s.log.Warn("publish message", zap.String("chat_id", chatID), zap.Error(err))
		}
	}

	return &MessageView{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		Sender:    sender.Public(),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}, nil
}

// FetchChat returns the chat's messages, oldest first.
func (s *ChatService) FetchChat(ctx context.Context, _ authz.Identity, chatID string) ([]MessageView, error) {
	const failed = "Failed to fetch chat"

	msgs, err := s.store.FindMessages(ctx, chatID)
	if err != nil {
		return nil, s.fail(err, "", failed)
	}

	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.Sender)
	}
	users, err := s.store.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, s.fail(err, "", failed)
	}
	senders := make(map[string]models.PublicUser, len(users))
	for _, u := range users {
		senders[u.ID] = u.Public()
	}

	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		sender, ok := senders[m.Sender]
		if !ok {
			sender = models.PublicUser{ID: m.Sender}
		}
		views = append(views, MessageView{
			ID:        m.ID,
			ChatID:    m.ChatID,
			Sender:    sender,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return views, nil
}

// FetchChatNames lists the caller's chats, most recently active first.
func (s *ChatService) FetchChatNames(ctx context.Context, id authz.Identity) ([]ChatSummary, error) {
	const failed = "Failed to fetch chats"

	chats, err := s.store.ChatsForUser(ctx, id.UserID)
	if err != nil {
		return nil, s.fail(err, "", failed)
	}

	out := make([]ChatSummary, 0, len(chats))
	for _, c := range chats {
		summary := ChatSummary{
			ID:            c.ID,
			Team:          ChatTeam{ID: c.TeamID},
			LatestMessage: c.LatestMessage,
			UpdatedAt:     c.UpdatedAt,
		}
		team, err := s.store.GetTeam(ctx, c.TeamID)
		switch {
		case err == nil:
			summary.Team.Name = team.Name
		case !errors.Is(err, store.ErrNotFound):
			return nil, s.fail(err, "", failed)
		}
		out = append(out, summary)
	}
	return out, nil
}

// Subscribe streams messages published to the chat until ctx is done.
func (s *ChatService) Subscribe(ctx context.Context, _ authz.Identity, chatID string) (<-chan *events.MessageEvent, error) {
	if s.broker == nil {
		return nil, errs.Dependency("Realtime chat is unavailable", nil)
	}
	ch, err := s.broker.Subscribe(ctx, chatID)
	if err != nil {
		return nil, s.fail(err, "", "Failed to subscribe to chat")
	}
	return ch, nil
}
