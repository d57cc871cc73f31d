// handlers/users.go
package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"teamwork/authz"
	"teamwork/services"
	"teamwork/utils"
)

// Register creates an account and returns it with a session token
// POST /api/users/register
func (h *Handler) Register(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Password string `json:"password"`
		Picture  string `json:"picture"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	sess, err := h.svc.Users.Register(ctx, services.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		Picture:  req.Picture,
	})
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, fiber.Map{"user": sess})
}

// Login
// POST /api/users/login
func (h *Handler) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	sess, err := h.svc.Users.Login(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"user": sess})
}

// GET /api/users/me
func (h *Handler) Me(ctx context.Context, c *fiber.Ctx, id authz.Identity, _ authz.Params) error {
	user, err := h.svc.Users.Me(ctx, id)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"user": user})
}

// GET /api/users/search?q=
func (h *Handler) SearchUsers(ctx context.Context, c *fiber.Ctx, id authz.Identity, _ authz.Params) error {
	users, err := h.svc.Users.SearchUsers(ctx, id, c.Query("q"))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"users": users})
}
