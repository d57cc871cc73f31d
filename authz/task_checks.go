package authz

import (
	"context"

	"teamwork/errs"
	"teamwork/models"
	"teamwork/store"
)

// CheckListOwnership allows personal task creation into a list the caller
// created, or with no list at all.
func (e *Engine) CheckListOwnership() Check {
	return Check{Name: "checkListOwnership", Fn: func(ctx context.Context, id Identity, p Params) *errs.Error {
		const notOwned = "List not found or not owned by the user"

		if p.ListID == "" {
			return nil
		}
		list, err := e.store.GetList(ctx, p.ListID)
		if err != nil {
			return e.miss(err, notOwned, "Failed to check list ownership")
		}
		if list.CreatedBy != id.UserID {
			return errs.NotFound(notOwned)
		}
		return nil
	}}
}

// ValidateAssignee guards edit-time reassignment: only team tasks can be
// reassigned, and only to members of the task's team.
func (e *Engine) ValidateAssignee() Check {
	return Check{Name: "validateAssignee", Fn: func(ctx context.Context, _ Identity, p Params) *errs.Error {
		const failed = "Failed to validate assignee"

		if p.Assignee == "" {
			return nil
		}
		if _, derr := e.user(ctx, p.Assignee, "Assignee not found", failed); derr != nil {
			return derr
		}
		task, derr := e.task(ctx, p.TaskID, failed)
		if derr != nil {
			return derr
		}
		if !task.IsTeamTask() {
			return errs.Validation("You cannot reassign this task")
		}
		team, derr := e.team(ctx, task.TeamID, "Task's team not found", failed)
		if derr != nil {
			return derr
		}
		if !team.HasMember(p.Assignee) {
			return errs.Forbidden("Assignee is not a member of this team")
		}
		return nil
	}}
}

// ValidateTaskOwner allows the task's creator, or the admin of its team.
func (e *Engine) ValidateTaskOwner() Check {
	return Check{Name: "validateTaskOwner", Fn: func(ctx context.Context, id Identity, p Params) *errs.Error {
		const failed = "Failed to validate task"

		task, derr := e.task(ctx, p.TaskID, failed)
		if derr != nil {
			return derr
		}
		if task.IsTeamTask() {
			team, derr := e.team(ctx, task.TeamID, "Task's team not found", failed)
			if derr != nil {
				return derr
			}
			if team.IsAdmin(id.UserID) {
				return nil
			}
		}
		if task.AssignedBy != id.UserID {
			return errs.Unauthorized("You are not the owner of this task")
		}
		return nil
	}}
}

// ValidateListOwner allows the admin of a team list, or the list's creator
// as long as no one else has tasks in it.
func (e *Engine) ValidateListOwner() Check {
	return Check{Name: "validateListOwner", Fn: func(ctx context.Context, id Identity, p Params) *errs.Error {
		const failed = "Failed to validate list"

		list, derr := e.list(ctx, p.ListID, failed)
		if derr != nil {
			return derr
		}
		if list.IsTeamList() {
			team, derr := e.team(ctx, list.TeamID, "List's team not found", failed)
			if derr != nil {
				return derr
			}
			if team.IsAdmin(id.UserID) {
				return nil
			}
		}
		if list.CreatedBy != id.UserID {
			return errs.Unauthorized("You are not the owner of this list")
		}

		tasks, err := e.store.FindTasks(ctx, store.TaskFilter{ListID: list.ID})
		if err != nil {
			return e.miss(err, "List not found", failed)
		}
		if hasMultipleOwners(list, tasks) {
			return errs.Unauthorized("Failed to modify. List has multiple owners")
		}
		return nil
	}}
}

// hasMultipleOwners reports whether the list's creator and the creators of
// its tasks are more than one distinct user.
func hasMultipleOwners(list *models.List, tasks []models.Task) bool {
	for _, t := range tasks {
		if t.AssignedBy != list.CreatedBy {
			return true
		}
	}
	return false
}

// ValidateTaskAccess allows reading a personal task by its creator and a
// team task by any team member.
func (e *Engine) ValidateTaskAccess() Check {
	return Check{Name: "validateTaskAccess", Fn: func(ctx context.Context, id Identity, p Params) *errs.Error {
		const failed = "Failed to validate task access"

		task, derr := e.task(ctx, p.TaskID, failed)
		if derr != nil {
			return derr
		}
		if !task.IsTeamTask() {
			if task.AssignedBy != id.UserID {
				return errs.Unauthorized("You are not the owner of this task")
			}
			return nil
		}

		team, derr := e.team(ctx, task.TeamID, "Task's team not found", failed)
		if derr != nil {
			return derr
		}
		if !team.HasMember(id.UserID) {
			return errs.Forbidden("Unauthorized to access this task")
		}
		return nil
	}}
}
