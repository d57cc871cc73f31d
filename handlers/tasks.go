// handlers/tasks.go - Task and list HTTP handlers
package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"teamwork/authz"
	"teamwork/services"
	"teamwork/utils"
)

type taskRequest struct {
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate"`
}

// ================== TASKS ==================

// POST /api/tasks[?addToList=true]
func (h *Handler) CreateTask(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	return h.createTask(ctx, c, id, p, "")
}

// POST /api/teams/:teamId/tasks[?addToList=true]
func (h *Handler) CreateTeamTask(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	return h.createTask(ctx, c, id, p, p.TeamID)
}

func (h *Handler) createTask(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params, teamID string) error {
	var req taskRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	task, err := h.svc.Tasks.CreateTask(ctx, id, services.CreateTaskInput{
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		TeamID:      teamID,
		ListID:      p.ListID,
		Assignee:    p.Assignee,
		AddToList:   c.QueryBool("addToList"),
	})
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, fiber.Map{"task": task})
}

// GET /api/tasks/assigned
func (h *Handler) FetchAssignedTasks(ctx context.Context, c *fiber.Ctx, id authz.Identity, _ authz.Params) error {
	tasks, err := h.svc.Tasks.FetchAssignedTasks(ctx, id)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"tasks": tasks})
}

// GET /api/tasks/:taskId
func (h *Handler) FetchTask(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	task, err := h.svc.Tasks.FetchTask(ctx, id, p.TaskID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"task": task})
}

// PUT /api/tasks/:taskId
func (h *Handler) EditTask(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	var req struct {
		Description *string `json:"description"`
		Status      *string `json:"status"`
		DueDate     *string `json:"dueDate"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	// The assignee is the one validateAssignee already checked.
	var assignee *string
	if p.Assignee != "" {
		assignee = &p.Assignee
	}

	task, err := h.svc.Tasks.EditTask(ctx, id, p.TaskID, services.EditTaskInput{
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		Assignee:    assignee,
	})
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"task": task})
}

// DELETE /api/tasks/:taskId
func (h *Handler) DeleteTask(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	if err := h.svc.Tasks.DeleteTask(ctx, id, p.TaskID); err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"message": "Task deleted"})
}

// ================== LISTS ==================

type listRequest struct {
	Title string `json:"title"`
}

// POST /api/lists
func (h *Handler) CreateList(ctx context.Context, c *fiber.Ctx, id authz.Identity, _ authz.Params) error {
	return h.createList(ctx, c, id, "")
}

// POST /api/teams/:teamId/lists
func (h *Handler) CreateTeamList(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	return h.createList(ctx, c, id, p.TeamID)
}

func (h *Handler) createList(ctx context.Context, c *fiber.Ctx, id authz.Identity, teamID string) error {
	var req listRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	list, err := h.svc.Tasks.CreateList(ctx, id, req.Title, teamID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, fiber.Map{"list": list})
}

// GET /api/lists
func (h *Handler) FetchUserLists(ctx context.Context, c *fiber.Ctx, id authz.Identity, _ authz.Params) error {
	lists, err := h.svc.Tasks.FetchUserLists(ctx, id)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"lists": lists})
}

// GET /api/teams/:teamId/lists
func (h *Handler) FetchTeamLists(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	lists, err := h.svc.Tasks.FetchTeamLists(ctx, id, p.TeamID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"lists": lists})
}

// PUT /api/lists/:listId
func (h *Handler) EditListTitle(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	var req listRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	list, err := h.svc.Tasks.EditListTitle(ctx, id, p.ListID, req.Title)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"list": list})
}

// DELETE /api/lists/:listId
func (h *Handler) DeleteList(ctx context.Context, c *fiber.Ctx, id authz.Identity, p authz.Params) error {
	n, err := h.svc.Tasks.DeleteList(ctx, id, p.ListID)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"message":      "List deleted",
		"deletedTasks": n,
	})
}
