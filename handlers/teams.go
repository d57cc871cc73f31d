// handlers/teams.go - Team HTTP handlers
package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"teamwork/authz"
	"teamwork/services"
	"teamwork/utils"
)

// ================== TEAM CRUD ENDPOINTS ==================

// POST /api/teams
func (h *Handler) CreateTeam(ctx context.Context, c *fiber.Ctx, id authz.Identity, _ authz.Params) error {
	var req struct {
		Name    string   `json:"name"`
		Members []string `json:"members"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	team, err := h.svc.Teams.CreateTeam(ctx, id, services.CreateTeamInput{Name: req.Name, Members: req.Members})
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, fiber.Map{"team": team})
}

// GET /api/teams
func (h *Handler) FetchAllTeams(ctx context.Context, c *fiber.Ctx, id authz.Identity, _ authz.Params) error {
	teams, err := h.svc.Teams.FetchAllTeams(ctx, id)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"teams": teams})
}

// GET /api/teams/:teamId
func (h *Handler) FetchTeam(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	team, err := h.svc.Teams.FetchTeam(ctx, id, p.TeamID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"team": team})
}

// PUT /api/teams/:teamId
func (h *Handler) RenameTeam(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	team, err := h.svc.Teams.RenameTeam(ctx, id, p.TeamID, req.Name)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"team": team})
}

// DELETE /api/teams/:teamId
func (h *Handler) DeleteTeam(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	if err := h.svc.Teams.DeleteTeam(ctx, id, p.TeamID); err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"message": "Team deleted"})
}

// ================== MEMBERSHIP ENDPOINTS ==================

// PUT /api/teams/:teamId/leave
func (h *Handler) LeaveTeam(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	var req struct {
		NewAdminID string `json:"newAdminId"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.svc.Teams.LeaveTeam(ctx, id, p.TeamID, req.NewAdminID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"teamDeleted": res.TeamDeleted,
		"admin":       res.Admin,
	})
}

// POST /api/teams/:teamId/members
func (h *Handler) AddMember(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	var req struct {
		MemberID string `json:"memberId"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	team, err := h.svc.Teams.AddMember(ctx, id, p.TeamID, req.MemberID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"team": team})
}

// DELETE /api/teams/:teamId/members/:memberId
func (h *Handler) RemoveMember(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	team, err := h.svc.Teams.RemoveMember(ctx, id, p.TeamID, c.Params("memberId"))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"team": team})
}
