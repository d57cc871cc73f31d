// handlers/announcements.go
package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"teamwork/authz"
	"teamwork/models"
	"teamwork/services"
	"teamwork/utils"
)

type announcementRequest struct {
	Title   *string        `json:"title"`
	Content *string        `json:"content"`
	Files   *[]models.File `json:"files"`
}

func (r announcementRequest) input() services.AnnouncementInput {
	return services.AnnouncementInput{Title: r.Title, Content: r.Content, Files: r.Files}
}

// POST /api/teams/:teamId/announcements
func (h *Handler) CreateAnnouncement(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	var req announcementRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	a, err := h.svc.Announcements.CreateAnnouncement(ctx, id, p.TeamID, req.input())
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, fiber.Map{"announcement": a})
}

// GET /api/teams/:teamId/announcements
func (h *Handler) FetchAllAnnouncements(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	list, err := h.svc.Announcements.FetchAnnouncements(ctx, id, p.TeamID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"announcements": list})
}

// GET /api/teams/:teamId/announcements/:announcementId
func (h *Handler) FetchAnnouncement(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	a, err := h.svc.Announcements.FetchAnnouncement(ctx, id, p.AnnouncementID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"announcement": a})
}

// PUT /api/teams/:teamId/announcements/:announcementId
func (h *Handler) EditAnnouncement(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	var req announcementRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	a, err := h.svc.Announcements.EditAnnouncement(ctx, id, p.AnnouncementID, req.input())
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"announcement": a})
}

// DELETE /api/teams/:teamId/announcements/:announcementId
func (h *Handler) DeleteAnnouncement(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	if err := h.svc.Announcements.DeleteAnnouncement(ctx, id, p.AnnouncementID); err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"message": "Announcement deleted"})
}
