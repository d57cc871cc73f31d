// Package store declares the persistence primitives the services and the
// authorization checks rely on. Backends live in the sub-packages.
package store

import (
	"context"
	"errors"

	"teamwork/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// TaskFilter narrows FindTasks and DeleteTasks. Zero fields do not constrain.
type TaskFilter struct {
	TeamID     string
	ListID     string
	Assignee   string
	AssignedBy string
	// Personal keeps only tasks without a team.
	Personal bool
	// Unlisted keeps only tasks without a list.
	Unlisted bool
}

// ListFilter narrows FindLists and DeleteLists.
type ListFilter struct {
	TeamID    string
	CreatedBy string
	Personal  bool
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	SearchUsers(ctx context.Context, query, exclude string, limit int) ([]models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
}

type TeamStore interface {
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	TeamsForUser(ctx context.Context, userID string) ([]models.Team, error)
	CreateTeam(ctx context.Context, t *models.Team) error
	RenameTeam(ctx context.Context, id, name string) error
	SetTeamAdmin(ctx context.Context, id, admin string) error
	PushTeamMember(ctx context.Context, id, userID string) error
	PullTeamMember(ctx context.Context, id, userID string) error
	DeleteTeam(ctx context.Context, id string) error
}

type TaskStore interface {
	GetTask(ctx context.Context, id string) (*models.Task, error)
	FindTasks(ctx context.Context, f TaskFilter) ([]models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) error
	// UpdateTask replaces the stored task with t.
	UpdateTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id string) error
	DeleteTasks(ctx context.Context, f TaskFilter) (int64, error)
}

type ListStore interface {
	GetList(ctx context.Context, id string) (*models.List, error)
	FindLists(ctx context.Context, f ListFilter) ([]models.List, error)
	CreateList(ctx context.Context, l *models.List) error
	RenameList(ctx context.Context, id, title string) error
	PushListTask(ctx context.Context, id, taskID string) error
	PullListTask(ctx context.Context, id, taskID string) error
	DeleteList(ctx context.Context, id string) error
	DeleteLists(ctx context.Context, f ListFilter) (int64, error)
}

type AnnouncementStore interface {
	GetAnnouncement(ctx context.Context, id string) (*models.Announcement, error)
	// FindAnnouncements returns the team's announcements, newest first.
	FindAnnouncements(ctx context.Context, teamID string) ([]models.Announcement, error)
	CreateAnnouncement(ctx context.Context, a *models.Announcement) error
	UpdateAnnouncement(ctx context.Context, a *models.Announcement) error
	DeleteAnnouncement(ctx context.Context, id string) error
	DeleteAnnouncements(ctx context.Context, teamID string) (int64, error)
}

type ChatStore interface {
	GetChat(ctx context.Context, id string) (*models.Chat, error)
	GetChatByTeam(ctx context.Context, teamID string) (*models.Chat, error)
	// ChatsForUser returns the user's chats, most recently updated first.
	ChatsForUser(ctx context.Context, userID string) ([]models.Chat, error)
	CreateChat(ctx context.Context, c *models.Chat) error
	PushChatMember(ctx context.Context, id, userID string) error
	PullChatMember(ctx context.Context, id, userID string) error
	SetLatestMessage(ctx context.Context, id, messageID string) error
	DeleteChat(ctx context.Context, id string) error

	// FindMessages returns the chat's messages, oldest first.
	FindMessages(ctx context.Context, chatID string) ([]models.Message, error)
	CreateMessage(ctx context.Context, m *models.Message) error
	DeleteMessages(ctx context.Context, chatID string) (int64, error)
}

// Store is the full set of primitives. Atomic runs fn against a Store whose
// writes are applied together where the backend supports it.
type Store interface {
	UserStore
	TeamStore
	TaskStore
	ListStore
	AnnouncementStore
	ChatStore

	Atomic(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
	Close() error
}
