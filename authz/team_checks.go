package authz

import (
	"context"

	"teamwork/errs"
)

// IsMember allows members of Params.TeamID.
func (e *Engine) IsMember() Check {
	return Check{Name: "isMember", Fn: func(ctx context.Context, id Identity, p Params) *errs.Error {
		if p.TeamID == "" {
			return errs.Validation("Team ID is empty")
		}
		team, derr := e.team(ctx, p.TeamID, "Team not found", "Failed to check team membership")
		if derr != nil {
			return derr
		}
		if !team.HasMember(id.UserID) {
			return errs.Forbidden("You are not a member of this team")
		}
		return nil
	}}
}

// IsAdmin allows the admin of Params.TeamID.
func (e *Engine) IsAdmin() Check {
	return Check{Name: "isAdmin", Fn: func(ctx context.Context, id Identity, p Params) *errs.Error {
		if p.TeamID == "" {
			return errs.Validation("Team ID is empty")
		}
		team, derr := e.team(ctx, p.TeamID, "Team not found", "Failed to check team admin")
		if derr != nil {
			return derr
		}
		if !team.IsAdmin(id.UserID) {
			return errs.Forbidden("Only team admins can perform this action")
		}
		return nil
	}}
}

// ValidateTeamList allows when Params.TeamID names an existing team.
func (e *Engine) ValidateTeamList() Check {
	return Check{Name: "validateTeamList", Fn: func(ctx context.Context, _ Identity, p Params) *errs.Error {
		_, derr := e.team(ctx, p.TeamID, "Team not found", "Failed to validate list")
		return derr
	}}
}

// ValidateTeamTask allows when the team exists and the optional list belongs
// to it.
func (e *Engine) ValidateTeamTask() Check {
	return Check{Name: "validateTeamTask", Fn: func(ctx context.Context, _ Identity, p Params) *errs.Error {
		const failed = "Failed to validate team task"

		if _, derr := e.team(ctx, p.TeamID, "Team not found", failed); derr != nil {
			return derr
		}
		if p.ListID == "" {
			return nil
		}

		const notInTeam = "List not found or not associated with the team"
		list, err := e.store.GetList(ctx, p.ListID)
		if err != nil {
			return e.miss(err, notInTeam, failed)
		}
		if list.TeamID != p.TeamID {
			return errs.NotFound(notInTeam)
		}
		return nil
	}}
}

// ValidateAssigneeMembership allows an absent assignee, or one that is a
// member of Params.TeamID.
func (e *Engine) ValidateAssigneeMembership() Check {
	return Check{Name: "validateAssigneeMembership", Fn: func(ctx context.Context, _ Identity, p Params) *errs.Error {
		const failed = "Failed to validate assignee"

		if p.Assignee == "" {
			return nil
		}
		if _, derr := e.user(ctx, p.Assignee, "Assignee not found", failed); derr != nil {
			return derr
		}
		team, derr := e.team(ctx, p.TeamID, "Team not found", failed)
		if derr != nil {
			return derr
		}
		if !team.HasMember(p.Assignee) {
			return errs.Forbidden("Assignee is not a member of this team")
		}
		return nil
	}}
}

// CheckAnnouncementOwnership allows when the announcement exists under
// Params.TeamID.
func (e *Engine) CheckAnnouncementOwnership() Check {
	return Check{Name: "checkAnnouncementOwnership", Fn: func(ctx context.Context, _ Identity, p Params) *errs.Error {
		const notFound = "Announcement not found in the team"

		if p.AnnouncementID == "" {
			return errs.NotFound(notFound)
		}
		a, err := e.store.GetAnnouncement(ctx, p.AnnouncementID)
		if err != nil {
			return e.miss(err, notFound, "Failed to check announcement")
		}
		if a.TeamID != p.TeamID {
			return errs.NotFound(notFound)
		}
		return nil
	}}
}

// IsChatMember allows members of Params.ChatID.
func (e *Engine) IsChatMember() Check {
	return Check{Name: "isChatMember", Fn: func(ctx context.Context, id Identity, p Params) *errs.Error {
		if p.ChatID == "" {
			return errs.Validation("Chat ID is empty")
		}
		chat, err := e.store.GetChat(ctx, p.ChatID)
		if err != nil {
			return e.miss(err, "Chat not found", "Failed to check chat membership")
		}
		if !chat.HasMember(id.UserID) {
			return errs.Forbidden("You are not a member of this chat")
		}
		return nil
	}}
}
