// middleware/auth.go
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"teamwork/token"
)

const userIDKey = "userId"

// Auth validates the bearer token and stores the caller's id in Locals.
// WebSocket upgrades cannot set headers from the browser, so on an upgrade
// request the token may also arrive as the token query parameter.
func Auth(issuer *token.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tokenString string
		if websocket.IsWebSocketUpgrade(c) {
			tokenString = c.Query("token")
		}

		if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return unauthorized(c, "Invalid authorization header format")
			}
			tokenString = parts[1]
		}

		if tokenString == "" {
			return unauthorized(c, "Missing authorization header")
		}

		claims, err := issuer.Verify(tokenString)
		if errors.Is(err, token.ErrExpired) {
			return unauthorized(c, "Token expired")
		}
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(userIDKey, claims.UserID)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": msg})
}

// GetUserID returns the id stored by Auth.
func GetUserID(c *fiber.Ctx) (string, error) {
	id, ok := c.Locals(userIDKey).(string)
	if !ok || id == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "User not authenticated")
	}
	return id, nil
}
