// services/team_service.go - Teams, membership and the team chat
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
	"teamwork/models"
	"teamwork/store"
)

type TeamService struct {
	base
}

func NewTeamService(s store.Store, log *zap.Logger) *TeamService {
	return &TeamService{base{store: s, log: log.Named("teams")}}
}

type CreateTeamInput struct {
	Name    string
	Members []string
}

// TeamView is a team with its admin and members expanded.
type TeamView struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Admin     models.PublicUser   `json:"admin"`
	Members   []models.PublicUser `json:"members"`
	ChatID    string              `json:"chatId,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// LeaveResult reports what leaving did to the team.
type LeaveResult struct {
	TeamDeleted bool   `json:"teamDeleted"`
	Admin       string `json:"admin,omitempty"`
}

// ================== TEAM CRUD OPERATIONS ==================

// CreateTeam creates a team with the caller as admin and first member, and
// its group chat with the same members.
func (s *TeamService) CreateTeam(ctx context.Context, id authz.Identity, in CreateTeamInput) (*TeamView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errs.Validation("Team name is required")
	}

	members := []string{id.UserID}
	seen := map[string]bool{id.UserID: true}
	for _, m := range in.Members {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		members = append(members, m)
	}

	if len(members) > 1 {
		users, err := s.store.UsersByIDs(ctx, members[1:])
		if err != nil {
			return nil, s.fail(err, "", "Failed to create team")
		}
		if len(users) != len(members)-1 {
			return nil, errs.NotFound("User not found")
		}
	}

	ts := now()
	team := &models.Team{
		ID:        uuid.NewString(),
		Name:      name,
		Admin:     id.UserID,
		Members:   members,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	chat := &models.Chat{
		ID:        uuid.NewString(),
		TeamID:    team.ID,
		Members:   append([]string(nil), members...),
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	err := s.store.Atomic(ctx, func(tx store.Store) error {
		if err := tx.CreateTeam(ctx, team); err != nil {
			return err
		}
		return tx.CreateChat(ctx, chat)
	})
	if err != nil {
		return nil, s.fail(err, "", "Failed to create team")
	}

	s.log.Info("team created", zap.String("team_id", team.ID), zap.Int("members", len(members)))
	return s.view(ctx, team)
}

func (s *TeamService) RenameTeam(ctx context.Context, _ authz.Identity, teamID, name string) (*TeamView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Validation("Team name is required")
	}
	if err := s.store.RenameTeam(ctx, teamID, name); err != nil {
		return nil, s.fail(err, "Team not found", "Failed to rename team")
	}
	return s.FetchTeam(ctx, authz.Identity{}, teamID)
}

func (s *TeamService) FetchTeam(ctx context.Context, _ authz.Identity, teamID string) (*TeamView, error) {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, s.fail(err, "Team not found", "Failed to fetch team")
	}
	return s.view(ctx, team)
}

// FetchAllTeams returns the teams the caller is a member of.
func (s *TeamService) FetchAllTeams(ctx context.Context, id authz.Identity) ([]TeamView, error) {
	teams, err := s.store.TeamsForUser(ctx, id.UserID)
	if err != nil {
		return nil, s.fail(err, "", "Failed to fetch teams")
	}

	views := make([]TeamView, 0, len(teams))
	for i := range teams {
		v, err := s.view(ctx, &teams[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// DeleteTeam removes the team and everything scoped to it.
func (s *TeamService) DeleteTeam(ctx context.Context, id authz.Identity, teamID string) error {
	if err := s.cascadeDelete(ctx, teamID); err != nil {
		return s.fail(err, "Team not found", "Failed to delete team")
	}
	s.log.Info("team deleted", zap.String("team_id", teamID), zap.String("user_id", id.UserID))
	return nil
}

// cascadeDelete removes tasks, lists, announcements, messages and the chat
// before the team itself.
func (s *TeamService) cascadeDelete(ctx context.Context, teamID string) error {
	return s.store.Atomic(ctx, func(tx store.Store) error {
		if _, err := tx.DeleteTasks(ctx, store.TaskFilter{TeamID: teamID}); err != nil {
			return err
		}
		if _, err := tx.DeleteLists(ctx, store.ListFilter{TeamID: teamID}); err != nil {
			return err
		}
		if _, err := tx.DeleteAnnouncements(ctx, teamID); err != nil {
			return err
		}

		chat, err := tx.GetChatByTeam(ctx, teamID)
		switch {
		case err == nil:
			if _, err := tx.DeleteMessages(ctx, chat.ID); err != nil {
				return err
			}
			if err := tx.DeleteChat(ctx, chat.ID); err != nil {
				return err
			}
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		return tx.DeleteTeam(ctx, teamID)
	})
}

// ================== MEMBERSHIP ==================

// LeaveTeam removes the caller from the team. An admin must hand the role to
// another member first, unless they are the last member, in which case the
// team is deleted.
func (s *TeamService) LeaveTeam(ctx context.Context, id authz.Identity, teamID, newAdminID string) (*LeaveResult, error) {
	const failed = "Failed to leave team"

	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, s.fail(err, "Team not found", failed)
	}
	if !team.HasMember(id.UserID) {
		return nil, errs.Forbidden("You are not a member of this team")
	}

	if !team.IsAdmin(id.UserID) {
		if err := s.removeMember(ctx, teamID, id.UserID); err != nil {
			return nil, s.fail(err, "Team not found", failed)
		}
		return &LeaveResult{Admin: team.Admin}, nil
	}

	if len(team.Members) == 1 {
		if err := s.cascadeDelete(ctx, teamID); err != nil {
			return nil, s.fail(err, "Team not found", failed)
		}
		s.log.Info("last member left, team deleted", zap.String("team_id", teamID))
		return &LeaveResult{TeamDeleted: true}, nil
	}

	newAdminID = strings.TrimSpace(newAdminID)
	switch {
	case newAdminID == "":
		return nil, errs.Validation("Please assign a new admin before leaving the team")
	case newAdminID == id.UserID:
		return nil, errs.Validation("New admin must be someone else")
	}
	if _, err := s.store.GetUser(ctx, newAdminID); err != nil {
		return nil, s.fail(err, "New admin not found", failed)
	}
	if !team.HasMember(newAdminID) {
		return nil, errs.Forbidden("New admin must be a member of this team")
	}

	err = s.store.Atomic(ctx, func(tx store.Store) error {
		if err := tx.SetTeamAdmin(ctx, teamID, newAdminID); err != nil {
			return err
		}
		return s.pullMember(ctx, tx, teamID, id.UserID)
	})
	if err != nil {
		return nil, s.fail(err, "Team not found", failed)
	}

	s.log.Info("admin handed over",
		zap.String("team_id", teamID),
		zap.String("from", id.UserID),
		zap.String("to", newAdminID),
	)
	return &LeaveResult{Admin: newAdminID}, nil
}

// AddMember adds a user to the team and its chat.
func (s *TeamService) AddMember(ctx context.Context, _ authz.Identity, teamID, memberID string) (*TeamView, error) {
	const failed = "Failed to add member"

	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, errs.Validation("Member ID is empty")
	}
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, s.fail(err, "Team not found", failed)
	}
	if _, err := s.store.GetUser(ctx, memberID); err != nil {
		return nil, s.fail(err, "User not found", failed)
	}
	if team.HasMember(memberID) {
		return nil, errs.Conflict("User is already a member of this team")
	}

	err = s.store.Atomic(ctx, func(tx store.Store) error {
		if err := tx.PushTeamMember(ctx, teamID, memberID); err != nil {
			return err
		}
		return s.onChat(ctx, tx, teamID, func(chatID string) error {
			return tx.PushChatMember(ctx, chatID, memberID)
		})
	})
	if err != nil {
		return nil, s.fail(err, "Team not found", failed)
	}
	return s.FetchTeam(ctx, authz.Identity{}, teamID)
}

// RemoveMember removes another member from the team and its chat.
func (s *TeamService) RemoveMember(ctx context.Context, id authz.Identity, teamID, memberID string) (*TeamView, error) {
	const failed = "Failed to remove member"

	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, errs.Validation("Member ID is empty")
	}
	if memberID == id.UserID {
		return nil, errs.Validation("You cannot remove yourself. Leave the team instead")
	}
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, s.fail(err, "Team not found", failed)
	}
	if !team.HasMember(memberID) {
		return nil, errs.Conflict("User is not a member of this team")
	}

	if err := s.removeMember(ctx, teamID, memberID); err != nil {
		return nil, s.fail(err, "Team not found", failed)
	}
	return s.FetchTeam(ctx, authz.Identity{}, teamID)
}

func (s *TeamService) removeMember(ctx context.Context, teamID, userID string) error {
	return s.store.Atomic(ctx, func(tx store.Store) error {
		return s.pullMember(ctx, tx, teamID, userID)
	})
}

func (s *TeamService) pullMember(ctx context.Context, tx store.Store, teamID, userID string) error {
	if err := tx.PullTeamMember(ctx, teamID, userID); err != nil {
		return err
	}
	return s.onChat(ctx, tx, teamID, func(chatID string) error {
		return tx.PullChatMember(ctx, chatID, userID)
	})
}

// onChat runs fn with the team's chat id. A team without a chat is logged
// and skipped.
func (s *TeamService) onChat(ctx context.Context, tx store.Store, teamID string, fn func(chatID string) error) error {
	chat, err := tx.GetChatByTeam(ctx, teamID)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Warn("team has no chat", zap.String("team_id", teamID))
		return nil
	}
	if err != nil {
		return err
	}
	return fn(chat.ID)
}

// ================== VIEWS ==================

func (s *TeamService) view(ctx context.Context, team *models.Team) (*TeamView, error) {
	ids := append([]string{team.Admin}, team.Members...)
	users, err := s.store.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, s.fail(err, "", "Failed to fetch team members")
	}
	byID := make(map[string]models.PublicUser, len(users))
	for _, u := range users {
		byID[u.ID] = u.Public()
	}

	v := &TeamView{
		ID:        team.ID,
		Name:      team.Name,
		Admin:     byID[team.Admin],
		Members:   make([]models.PublicUser, 0, len(team.Members)),
		CreatedAt: team.CreatedAt,
		UpdatedAt: team.UpdatedAt,
	}
	for _, m := range team.Members {
		if u, ok := byID[m]; ok {
			v.Members = append(v.Members, u)
		}
	}

	chat, err := s.store.GetChatByTeam(ctx, team.ID)
	switch {
	case err == nil:
		v.ChatID = chat.ID
	case !errors.Is(err, store.ErrNotFound):
		return nil, s.fail(err, "", "Failed to fetch team chat")
	}
	return v, nil
}
