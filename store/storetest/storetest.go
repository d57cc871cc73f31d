// Package storetest provides an in-memory store and seed helpers for tests.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"teamwork/database"
	"teamwork/models"
	"teamwork/store"
	"teamwork/store/gormstore"
)

// New returns a store backed by a private in-memory SQLite database.
func New(t testing.TB) *gormstore.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenSQLite(dsn)
	require.NoError(t, err)

	s := gormstore.New(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// User creates a user with the given username. The password hash is not a
// valid bcrypt value.
func User(t testing.TB, s store.Store, username string) *models.User {
	t.Helper()

	now := time.Now().UTC()
	u := &models.User{
		ID:        uuid.NewString(),
		Name:      username,
		Username:  username,
		Password:  "x",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

// Team creates a team administered by admin with admin plus members, and
// its chat.
func Team(t testing.TB, s store.Store, name, admin string, members ...string) *models.Team {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC()
	team := &models.Team{
		ID:        uuid.NewString(),
		Name:      name,
		Admin:     admin,
		Members:   append([]string{admin}, members...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateTeam(ctx, team))

	chat := &models.Chat{
		ID:        uuid.NewString(),
		TeamID:    team.ID,
		Members:   append([]string(nil), team.Members...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateChat(ctx, chat))
	return team
}

// Task creates t, filling ID, status and timestamps when unset, and appends
// it to its list when ListID is set.
func Task(t testing.TB, s store.Store, task models.Task) *models.Task {
	t.Helper()
	ctx := context.Background()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Assignee == "" {
		task.Assignee = task.AssignedBy
	}
	now := time.Now().UTC()
	task.CreatedAt, task.UpdatedAt = now, now

	require.NoError(t, s.CreateTask(ctx, &task))
	if task.ListID != "" {
		require.NoError(t, s.PushListTask(ctx, task.ListID, task.ID))
	}
	return &task
}

// List creates l, filling ID and timestamps.
func List(t testing.TB, s store.Store, list models.List) *models.List {
	t.Helper()

	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	list.CreatedAt, list.UpdatedAt = now, now

	require.NoError(t, s.CreateList(context.Background(), &list))
	return &list
}
