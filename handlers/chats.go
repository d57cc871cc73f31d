// handlers/chats.go - Chat HTTP and WebSocket handlers
package handlers

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"teamwork/authz"
	"teamwork/errs"
	"teamwork/events"
	"teamwork/models"
	"teamwork/services"
	"teamwork/utils"
)

// GET /api/chats
func (h *Handler) FetchChatNames(ctx context.Context, c *fiber.Ctx, id authz.Identity, _ authz.Params) error {
	chats, err := h.svc.Chats.FetchChatNames(ctx, id)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"chats": chats})
}

// GET /api/chats/:chatId/messages
func (h *Handler) FetchChat(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	msgs, err := h.svc.Chats.FetchChat(ctx, id, p.ChatID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"messages": msgs})
}

// POST /api/chats/:chatId/messages
func (h *Handler) SendMessage(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	msg, err := h.svc.Chats.SendMessage(ctx, id, p.ChatID, req.Content)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, fiber.Map{"message": msg})
}

// ================== WEBSOCKET ==================

func requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// ChatStreamGuard checks chat membership before the upgrade so a denial is
// still a plain HTTP response.
func (h *Handler) ChatStreamGuard(c *fiber.Ctx) error {
	return h.route(h.authz.Chain(h.authz.IsChatMember()), func(_ context.Context, c *fiber.Ctx, _ authz.Identity, _ authz.Params) error {
		return c.Next()
	})(c)
}

// ChatStream relays live messages of one chat to the socket and stores what
// the client sends as {"content": "..."}.
// GET /ws/chats/:chatId?token=
func (h *Handler) ChatStream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userId").(string)
		chatID := conn.Params("chatId")
		id := authz.Identity{UserID: userID}
		member := h.authz.Chain(h.authz.IsChatMember())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var wmu sync.Mutex
		write := func(v interface{}) error {
			wmu.Lock()
			defer wmu.Unlock()
			return conn.WriteJSON(v)
		}

		live, err := h.svc.Chats.Subscribe(ctx, id, chatID)
		if err != nil {
			_ = write(fiber.Map{"success": false, "error": errs.Reason(err)})
			return
		}

		go func() {
			defer cancel()
			for {
				var in struct {
					Content string `json:"content"`
				}
				if err := conn.ReadJSON(&in); err != nil {
					return
				}

				sctx, scancel := context.WithTimeout(ctx, h.timeout)
				if d := member.Run(sctx, id, authz.Params{ChatID: chatID}); !d.Allowed() {
					scancel()
					_ = write(fiber.Map{"success": false, "error": d.Err.Message})
					return
				}
				_, err := h.svc.Chats.SendMessage(sctx, id, chatID, in.Content)
				scancel()
				if err != nil {
					if werr := write(fiber.Map{"success": false, "error": errs.Reason(err)}); werr != nil {
						return
					}
				}
			}
		}()

		h.log.Debug("chat stream opened", zap.String("chat_id", chatID), zap.String("user_id", userID))
		defer h.log.Debug("chat stream closed", zap.String("chat_id", chatID), zap.String("user_id", userID))

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-live:
				if !ok {
					return
				}
				if err := write(messageFrame(ev)); err != nil {
					return
				}
			}
		}
	})
}

func messageFrame(ev *events.MessageEvent) services.MessageView {
	return services.MessageView{
		ID:     ev.MessageID,
		ChatID: ev.ChatID,
		Sender: models.PublicUser{
			ID:       ev.SenderID,
			Name:     ev.SenderName,
			Username: ev.SenderUsername,
			Picture:  ev.SenderPicture,
		},
		Content:   ev.Content,
		CreatedAt: ev.CreatedAt,
	}
}
