package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"teamwork/models"
	"teamwork/store"
)

// Contract exercises the behaviour every store.Store backend must share.
// newStore must return an empty store.
func Contract(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("users", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		alice := User(t, s, "alice")
		User(t, s, "alicia")
		User(t, s, "bob")

		got, err := s.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, alice.ID, got.ID)

		_, err = s.GetUser(ctx, uuid.NewString())
		require.ErrorIs(t, err, store.ErrNotFound)

		dup := &models.User{ID: uuid.NewString(), Name: "Alice", Username: "alice", Password: "x"}
		require.ErrorIs(t, s.CreateUser(ctx, dup), store.ErrDuplicate)

		found, err := s.SearchUsers(ctx, "ALI", alice.ID, 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		require.Equal(t, "alicia", found[0].Username)
	})

	t.Run("team membership", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a := User(t, s, "a")
		b := User(t, s, "b")
		c := User(t, s, "c")
		team := Team(t, s, "core", a.ID, b.ID)

		got, err := s.GetTeam(ctx, team.ID)
		require.NoError(t, err)
		require.Equal(t, []string{a.ID, b.ID}, got.Members)

		require.NoError(t, s.PushTeamMember(ctx, team.ID, c.ID))
		require.NoError(t, s.PullTeamMember(ctx, team.ID, b.ID))
		require.NoError(t, s.SetTeamAdmin(ctx, team.ID, c.ID))
		require.NoError(t, s.RenameTeam(ctx, team.ID, "renamed"))

		got, err = s.GetTeam(ctx, team.ID)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{a.ID, c.ID}, got.Members)
		require.Equal(t, c.ID, got.Admin)
		require.Equal(t, "renamed", got.Name)

		teams, err := s.TeamsForUser(ctx, b.ID)
		require.NoError(t, err)
		require.Empty(t, teams)

		require.ErrorIs(t, s.PushTeamMember(ctx, uuid.NewString(), c.ID), store.ErrNotFound)
		require.NoError(t, s.DeleteTeam(ctx, team.ID))
		require.ErrorIs(t, s.DeleteTeam(ctx, team.ID), store.ErrNotFound)
	})

	t.Run("list tasks keep order", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u := User(t, s, "owner")
		list := List(t, s, models.List{Title: "groceries", CreatedBy: u.ID})
		t1 := Task(t, s, models.Task{Description: "milk", AssignedBy: u.ID, ListID: list.ID})
		t2 := Task(t, s, models.Task{Description: "eggs", AssignedBy: u.ID, ListID: list.ID})
		t3 := Task(t, s, models.Task{Description: "bread", AssignedBy: u.ID, ListID: list.ID})
		loose := Task(t, s, models.Task{Description: "call mom", AssignedBy: u.ID})

		got, err := s.GetList(ctx, list.ID)
		require.NoError(t, err)
		require.Equal(t, []string{t1.ID, t2.ID, t3.ID}, got.Tasks)

		require.NoError(t, s.PullListTask(ctx, list.ID, t2.ID))
		got, err = s.GetList(ctx, list.ID)
		require.NoError(t, err)
		require.Equal(t, []string{t1.ID, t3.ID}, got.Tasks)

		unlisted, err := s.FindTasks(ctx, store.TaskFilter{AssignedBy: u.ID, Personal: true, Unlisted: true})
		require.NoError(t, err)
		require.Len(t, unlisted, 1)
		require.Equal(t, loose.ID, unlisted[0].ID)

		n, err := s.DeleteTasks(ctx, store.TaskFilter{ListID: list.ID})
		require.NoError(t, err)
		require.EqualValues(t, 3, n)

		left, err := s.FindTasks(ctx, store.TaskFilter{ListID: list.ID})
		require.NoError(t, err)
		require.Empty(t, left)

		_, err = s.DeleteTasks(ctx, store.TaskFilter{})
		require.Error(t, err)
	})

	t.Run("task replace clears optional fields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u := User(t, s, "owner")
		due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		task := Task(t, s, models.Task{Description: "ship", AssignedBy: u.ID, DueDate: &due})

		got, err := s.GetTask(ctx, task.ID)
		require.NoError(t, err)
		require.NotNil(t, got.DueDate)
		require.True(t, due.Equal(*got.DueDate))

		got.DueDate = nil
		got.Status = models.StatusFinished
		require.NoError(t, s.UpdateTask(ctx, got))

		got, err = s.GetTask(ctx, task.ID)
		require.NoError(t, err)
		require.Nil(t, got.DueDate)
		require.Equal(t, models.StatusFinished, got.Status)

		require.NoError(t, s.DeleteTask(ctx, task.ID))
		require.ErrorIs(t, s.DeleteTask(ctx, task.ID), store.ErrNotFound)
	})

	t.Run("chat messages", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a := User(t, s, "a")
		b := User(t, s, "b")
		team := Team(t, s, "core", a.ID, b.ID)

		chat, err := s.GetChatByTeam(ctx, team.ID)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{a.ID, b.ID}, chat.Members)

		var ids []string
		for _, content := range []string{"one", "two"} {
			m := &models.Message{ID: uuid.NewString(), Sender: a.ID, ChatID: chat.ID, Content: content, CreatedAt: time.Now().UTC()}
			require.NoError(t, s.CreateMessage(ctx, m))
			require.NoError(t, s.SetLatestMessage(ctx, chat.ID, m.ID))
			ids = append(ids, m.ID)
			time.Sleep(2 * time.Millisecond)
		}

		msgs, err := s.FindMessages(ctx, chat.ID)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		require.Equal(t, "one", msgs[0].Content)

		chats, err := s.ChatsForUser(ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, chats, 1)
		require.Equal(t, ids[1], chats[0].LatestMessage)

		n, err := s.DeleteMessages(ctx, chat.ID)
		require.NoError(t, err)
		require.EqualValues(t, 2, n)
	})

	t.Run("atomic commits", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u := User(t, s, "owner")
		list := List(t, s, models.List{Title: "inbox", CreatedBy: u.ID})

		task := &models.Task{ID: uuid.NewString(), Description: "x", Status: models.StatusTodo, AssignedBy: u.ID, Assignee: u.ID, ListID: list.ID}
		err := s.Atomic(ctx, func(tx store.Store) error {
			if err := tx.CreateTask(ctx, task); err != nil {
				return err
			}
			return tx.PushListTask(ctx, list.ID, task.ID)
		})
		require.NoError(t, err)

		got, err := s.GetList(ctx, list.ID)
		require.NoError(t, err)
		require.Equal(t, []string{task.ID}, got.Tasks)

		boom := errors.New("boom")
		require.ErrorIs(t, s.Atomic(ctx, func(store.Store) error { return boom }), boom)
	})
}
