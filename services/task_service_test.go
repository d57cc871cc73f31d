package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"teamwork/models"
	"teamwork/store"
	"teamwork/store/storetest"
)

func TestCreatePersonalTask(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := storetest.User(t, h.store, "alice")
	bob := storetest.User(t, h.store, "bob")

	task, err := h.svc.Tasks.CreateTask(ctx, as(alice), CreateTaskInput{
		Description: "  buy milk ",
		Status:      "todo",
		DueDate:     "2024-03-01",
		Assignee:    bob.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "buy milk", task.Description)
	require.Equal(t, alice.ID, task.Assignee, "personal tasks are always assigned to their creator")
	require.Equal(t, alice.ID, task.AssignedBy)
	require.Empty(t, task.TeamID)

	got, err := h.svc.Tasks.FetchTask(ctx, as(alice), task.ID)
	require.NoError(t, err)
	require.Equal(t, "2024-03-01", got.DueDate.UTC().Format(time.DateOnly))
}

func TestCreateTaskValidation(t *testing.T) {
	h := newHarness(t)
	alice := storetest.User(t, h.store, "alice")

	tests := []struct {
		name   string
		in     CreateTaskInput
		reason string
	}{
		{name: "no description", in: CreateTaskInput{Status: "todo"}, reason: "Task description is empty"},
		{name: "no status", in: CreateTaskInput{Description: "x"}, reason: "Invalid task status"},
		{name: "archived", in: CreateTaskInput{Description: "x", Status: "archived"}, reason: "Invalid task status"},
		{name: "bad due date", in: CreateTaskInput{Description: "x", Status: "todo", DueDate: "soon"}, reason: "Invalid due date format"},
		{name: "add without list", in: CreateTaskInput{Description: "x", Status: "todo", AddToList: true}, reason: "List ID is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Tasks.CreateTask(context.Background(), as(alice), tt.in)
			requireStatus(t, err, http.StatusBadRequest, tt.reason)
		})
	}
}

func TestCreateTaskAddToList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := storetest.User(t, h.store, "alice")
	list := storetest.List(t, h.store, models.List{Title: "groceries", CreatedBy: alice.ID})

	first, err := h.svc.Tasks.CreateTask(ctx, as(alice), CreateTaskInput{Description: "eggs", Status: "todo", ListID: list.ID, AddToList: true})
	require.NoError(t, err)
	second, err := h.svc.Tasks.CreateTask(ctx, as(alice), CreateTaskInput{Description: "milk", Status: "ongoing", ListID: list.ID, AddToList: true})
	require.NoError(t, err)

	got, err := h.store.GetList(ctx, list.ID)
	require.NoError(t, err)
	require.Equal(t, []string{first.ID, second.ID}, got.Tasks)
	require.Equal(t, list.ID, second.ListID)

	// Without the flag the list id is ignored.
	loose, err := h.svc.Tasks.CreateTask(ctx, as(alice), CreateTaskInput{Description: "bread", Status: "todo", ListID: list.ID})
	require.NoError(t, err)
	require.Empty(t, loose.ListID)

	_, err = h.svc.Tasks.CreateTask(ctx, as(alice), CreateTaskInput{Description: "x", Status: "todo", ListID: "missing", AddToList: true})
	requireStatus(t, err, http.StatusNotFound, "List not found")
}

func TestCreateTeamTaskKeepsAssignee(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := storetest.User(t, h.store, "alice")
	bob := storetest.User(t, h.store, "bob")
	team := storetest.Team(t, h.store, "core", alice.ID, bob.ID)
	personal := storetest.List(t, h.store, models.List{Title: "mine", CreatedBy: alice.ID})

	task, err := h.svc.Tasks.CreateTask(ctx, as(alice), CreateTaskInput{Description: "ship", Status: "todo", TeamID: team.ID, Assignee: bob.ID})
	require.NoError(t, err)
	require.Equal(t, bob.ID, task.Assignee)
	require.Equal(t, team.ID, task.TeamID)

	_, err = h.svc.Tasks.CreateTask(ctx, as(alice), CreateTaskInput{Description: "x", Status: "todo", TeamID: team.ID, ListID: personal.ID, AddToList: true})
	requireStatus(t, err, http.StatusBadRequest, "Task and list must belong to the same team")
}

func TestDeleteTaskDetachesFromList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := storetest.User(t, h.store, "alice")
	list := storetest.List(t, h.store, models.List{Title: "l", CreatedBy: alice.ID})
	keep := storetest.Task(t, h.store, models.Task{Description: "a", AssignedBy: alice.ID, ListID: list.ID})
	drop := storetest.Task(t, h.store, models.Task{Description: "b", AssignedBy: alice.ID, ListID: list.ID})

	require.NoError(t, h.svc.Tasks.DeleteTask(ctx, as(alice), drop.ID))

	_, err := h.store.GetTask(ctx, drop.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	got, err := h.store.GetList(ctx, list.ID)
	require.NoError(t, err)
	require.Equal(t, []string{keep.ID}, got.Tasks)

	err = h.svc.Tasks.DeleteTask(ctx, as(alice), drop.ID)
	requireStatus(t, err, http.StatusNotFound, "Task not found")
}

func TestDeleteTaskWithMissingList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := storetest.User(t, h.store, "alice")
	task := storetest.Task(t, h.store, models.Task{Description: "orphan", AssignedBy: alice.ID})
	task.ListID = "gone"
	require.NoError(t, h.store.UpdateTask(ctx, task))

	require.NoError(t, h.svc.Tasks.DeleteTask(ctx, as(alice), task.ID))
	_, err := h.store.GetTask(ctx, task.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteListRemovesItsTasks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := storetest.User(t, h.store, "alice")
	list := storetest.List(t, h.store, models.List{Title: "l", CreatedBy: alice.ID})
	storetest.Task(t, h.store, models.Task{Description: "a", AssignedBy: alice.ID, ListID: list.ID})
	storetest.Task(t, h.store, models.Task{Description: "b", AssignedBy: alice.ID, ListID: list.ID})
	other := storetest.Task(t, h.store, models.Task{Description: "c", AssignedBy: alice.ID})

	n, err := h.svc.Tasks.DeleteList(ctx, as(alice), list.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	_, err = h.store.GetList(ctx, list.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	left, err := h.store.FindTasks(ctx, store.TaskFilter{AssignedBy: alice.ID})
	require.NoError(t, err)
	require.Len(t, left, 1)
	require.Equal(t, other.ID, left[0].ID)

	_, err = h.svc.Tasks.DeleteList(ctx, as(alice), list.ID)
	requireStatus(t, err, http.StatusNotFound, "List not found")
}

func TestEditTask(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := storetest.User(t, h.store, "alice")
	task, err := h.svc.Tasks.CreateTask(ctx, as(alice), CreateTaskInput{Description: "draft", Status: "todo", DueDate: "2024-05-05"})
	require.NoError(t, err)

	edited, err := h.svc.Tasks.EditTask(ctx, as(alice), task.ID, EditTaskInput{Status: ptr("finished")})
	require.NoError(t, err)
	require.Equal(t, models.StatusFinished, edited.Status)
	require.Equal(t, "draft", edited.Description)
	require.NotNil(t, edited.DueDate)

	edited, err = h.svc.Tasks.EditTask(ctx, as(alice), task.ID, EditTaskInput{DueDate: ptr("")})
	require.NoError(t, err)
	require.Nil(t, edited.DueDate)

	got, err := h.store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Nil(t, got.DueDate)
	require.Equal(t, models.StatusFinished, got.Status)

	_, err = h.svc.Tasks.EditTask(ctx, as(alice), task.ID, EditTaskInput{Status: ptr("archived")})
	requireStatus(t, err, http.StatusBadRequest, "Invalid task status")

	_, err = h.svc.Tasks.EditTask(ctx, as(alice), task.ID, EditTaskInput{Description: ptr(" ")})
	requireStatus(t, err, http.StatusBadRequest, "Task description is empty")
}

func TestEditListTitle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := storetest.User(t, h.store, "alice")
	list := storetest.List(t, h.store, models.List{Title: "old", CreatedBy: alice.ID})

	got, err := h.svc.Tasks.EditListTitle(ctx, as(alice), list.ID, " new ")
	require.NoError(t, err)
	require.Equal(t, "new", got.Title)

	got, err = h.svc.Tasks.EditListTitle(ctx, as(alice), list.ID, "")
	require.NoError(t, err)
	require.Equal(t, "new", got.Title)
}

func TestFetchUserListsIncludesVirtualList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := storetest.User(t, h.store, "alice")
	bob := storetest.User(t, h.store, "bob")
	team := storetest.Team(t, h.store, "core", alice.ID)

	list := storetest.List(t, h.store, models.List{Title: "home", CreatedBy: alice.ID})
	first := storetest.Task(t, h.store, models.Task{Description: "1", AssignedBy: alice.ID, ListID: list.ID})
	second := storetest.Task(t, h.store, models.Task{Description: "2", AssignedBy: alice.ID, ListID: list.ID})
	loose := storetest.Task(t, h.store, models.Task{Description: "loose", AssignedBy: alice.ID})
	storetest.Task(t, h.store, models.Task{Description: "team", AssignedBy: alice.ID, TeamID: team.ID})
	storetest.Task(t, h.store, models.Task{Description: "bob's", AssignedBy: bob.ID})
	storetest.List(t, h.store, models.List{Title: "team list", CreatedBy: alice.ID, TeamID: team.ID})

	views, err := h.svc.Tasks.FetchUserLists(ctx, as(alice))
	require.NoError(t, err)
	require.Len(t, views, 2)

	require.True(t, views[0].Virtual)
	require.Equal(t, VirtualListTitle, views[0].Title)
	require.Empty(t, views[0].ID)
	require.Len(t, views[0].Tasks, 1)
	require.Equal(t, loose.ID, views[0].Tasks[0].ID)

	require.Equal(t, list.ID, views[1].ID)
	require.Len(t, views[1].Tasks, 2)
	require.Equal(t, first.ID, views[1].Tasks[0].ID)
	require.Equal(t, second.ID, views[1].Tasks[1].ID)
}

func TestFetchTeamLists(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := storetest.User(t, h.store, "alice")
	bob := storetest.User(t, h.store, "bob")
	team := storetest.Team(t, h.store, "core", alice.ID, bob.ID)

	list := storetest.List(t, h.store, models.List{Title: "sprint", CreatedBy: bob.ID, TeamID: team.ID})
	storetest.Task(t, h.store, models.Task{Description: "in list", AssignedBy: alice.ID, TeamID: team.ID, ListID: list.ID})
	storetest.Task(t, h.store, models.Task{Description: "loose", AssignedBy: bob.ID, TeamID: team.ID})
	storetest.Task(t, h.store, models.Task{Description: "personal", AssignedBy: bob.ID})

	views, err := h.svc.Tasks.FetchTeamLists(ctx, as(alice), team.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.True(t, views[0].Virtual)
	require.Len(t, views[0].Tasks, 1)
	require.Equal(t, "loose", views[0].Tasks[0].Description)
	require.Len(t, views[1].Tasks, 1)
	require.Equal(t, "in list", views[1].Tasks[0].Description)
}

func TestFetchAssignedTasks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := storetest.User(t, h.store, "alice")
	bob := storetest.User(t, h.store, "bob")
	team := storetest.Team(t, h.store, "core", alice.ID, bob.ID)

	storetest.Task(t, h.store, models.Task{Description: "for bob", AssignedBy: alice.ID, Assignee: bob.ID, TeamID: team.ID})
	storetest.Task(t, h.store, models.Task{Description: "for alice", AssignedBy: alice.ID})

	tasks, err := h.svc.Tasks.FetchAssignedTasks(ctx, as(bob))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "for bob", tasks[0].Description)
}

func TestInListOrder(t *testing.T) {
	tasks := []models.Task{{ID: "c"}, {ID: "x"}, {ID: "a"}, {ID: "b"}}
	got := inListOrder([]string{"a", "b", "c"}, tasks)

	ids := make([]string, 0, len(got))
	for _, task := range got {
		ids = append(ids, task.ID)
	}
	require.Equal(t, []string{"a", "b", "c", "x"}, ids)
}
