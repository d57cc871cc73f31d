// services/task_service.go - Tasks and lists
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"teamwork/authz"
	"teamwork/errs"
	"teamwork/models"
	"teamwork/store"
)

// VirtualListTitle names the pseudo-list that holds tasks without a list.
const VirtualListTitle = "Tasks"

type TaskService struct {
	base
}

func NewTaskService(s store.Store, log *zap.Logger) *TaskService {
	return &TaskService{base{store: s, log: log.Named("tasks")}}
}

type CreateTaskInput struct {
	Description string
	Status      string
	DueDate     string
	// TeamID is set only on the team route; it makes the task team-scoped.
	TeamID   string
	ListID   string
	Assignee string
	// AddToList appends the task to ListID.
	AddToList bool
}

type EditTaskInput struct {
	Description *string
	Status      *string
	DueDate     *string
	Assignee    *string
}

// ListView is a list with its tasks expanded. The virtual list has no id.
type ListView struct {
	ID        string        `json:"id,omitempty"`
	Title     string        `json:"title"`
	CreatedBy string        `json:"createdBy,omitempty"`
	TeamID    string        `json:"teamId,omitempty"`
	Virtual   bool          `json:"virtual,omitempty"`
	Tasks     []models.Task `json:"tasks"`
}

func validateStatus(s string) (models.TaskStatus, error) {
	status := models.TaskStatus(s)
	if !status.Valid() {
		return "", errs.Validation("Invalid task status")
	}
	return status, nil
}

func (s *TaskService) CreateTask(ctx context.Context, id authz.Identity, in CreateTaskInput) (*models.Task, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, errs.Validation("Task description is empty")
	}
	status, err := validateStatus(in.Status)
	if err != nil {
		return nil, err
	}
	due, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	if in.AddToList && in.ListID == "" {
		return nil, errs.Validation("List ID is empty")
	}

	ts := now()
	task := &models.Task{
		ID:          uuid.NewString(),
		Description: desc,
		Status:      status,
		Assignee:    id.UserID,
		AssignedBy:  id.UserID,
		TeamID:      in.TeamID,
		DueDate:     due,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if task.IsTeamTask() && in.Assignee != "" {
		task.Assignee = in.Assignee
	}

	if !in.AddToList {
		if err := s.store.CreateTask(ctx, task); err != nil {
			return nil, s.fail(err, "", "Failed to create task")
		}
		return task, nil
	}

	list, err := s.store.GetList(ctx, in.ListID)
	if err != nil {
		return nil, s.fail(err, "List not found", "Failed to create task")
	}
	if list.TeamID != task.TeamID {
		return nil, errs.Validation("Task and list must belong to the same team")
	}

	task.ListID = list.ID
	err = s.store.Atomic(ctx, func(tx store.Store) error {
		if err := tx.CreateTask(ctx, task); err != nil {
			return err
		}
		return tx.PushListTask(ctx, list.ID, task.ID)
	})
	if err != nil {
		return nil, s.fail(err, "List not found", "Failed to add task to list")
	}
	return task, nil
}

func (s *TaskService) CreateList(ctx context.Context, id authz.Identity, title, teamID string) (*models.List, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errs.Validation("List title is empty")
	}

	ts := now()
	list := &models.List{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedBy: id.UserID,
		TeamID:    teamID,
		Tasks:     []string{},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.store.CreateList(ctx, list); err != nil {
		return nil, s.fail(err, "", "Failed to create list")
	}
	return list, nil
}

// DeleteTask detaches the task from its list, then deletes it.
func (s *TaskService) DeleteTask(ctx context.Context, id authz.Identity, taskID string) error {
	if taskID == "" {
		return errs.Validation("Task ID is empty")
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return s.fail(err, "Task not found", "Failed to delete task")
	}

	err = s.store.Atomic(ctx, func(tx store.Store) error {
		if task.ListID != "" {
			err := tx.PullListTask(ctx, task.ListID, task.ID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			if err != nil {
				s.log.Warn("task references a missing list",
					zap.String("task_id", task.ID),
					zap.String("list_id", task.ListID),
				)
			}
		}
		return tx.DeleteTask(ctx, task.ID)
	})
	if err != nil {
		return s.fail(err, "Task not found", "Failed to delete task")
	}

	s.log.Debug("task deleted", zap.String("task_id", task.ID), zap.String("user_id", id.UserID))
	return nil
}

// DeleteList deletes every task of the list, then the list. It returns the
// number of tasks removed.
func (s *TaskService) DeleteList(ctx context.Context, id authz.Identity, listID string) (int64, error) {
	if listID == "" {
		return 0, errs.Validation("List ID is empty")
	}

	var removed int64
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		n, err := tx.DeleteTasks(ctx, store.TaskFilter{ListID: listID})
		if err != nil {
			return err
		}
		removed = n
		return tx.DeleteList(ctx, listID)
	})
	if err != nil {
		return 0, s.fail(err, "List not found", "Failed to delete list")
	}

	s.log.Debug("list deleted",
		zap.String("list_id", listID),
		zap.Int64("tasks", removed),
		zap.String("user_id", id.UserID),
	)
	return removed, nil
}

// EditTask applies the fields present in in. An empty due date clears it.
func (s *TaskService) EditTask(ctx context.Context, _ authz.Identity, taskID string, in EditTaskInput) (*models.Task, error) {
	if taskID == "" {
		return nil, errs.Validation("Task ID is empty")
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, s.fail(err, "Task not found", "Failed to edit task")
	}

	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if desc == "" {
			return nil, errs.Validation("Task description is empty")
		}
		task.Description = desc
	}
	if in.Status != nil {
		status, err := validateStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		task.Status = status
	}
	if in.DueDate != nil {
		due, err := parseDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = due
	}
	if in.Assignee != nil && *in.Assignee != "" {
		task.Assignee = *in.Assignee
	}

	task.UpdatedAt = now()
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, s.fail(err, "Task not found", "Failed to edit task")
	}
	return task, nil
}

// EditListTitle renames the list when title is non-empty and returns it.
func (s *TaskService) EditListTitle(ctx context.Context, _ authz.Identity, listID, title string) (*models.List, error) {
	if listID == "" {
		return nil, errs.Validation("List ID is empty")
	}
	if title = strings.TrimSpace(title); title != "" {
		if err := s.store.RenameList(ctx, listID, title); err != nil {
			return nil, s.fail(err, "List not found", "Failed to edit list")
		}
	}

	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		return nil, s.fail(err, "List not found", "Failed to edit list")
	}
	return list, nil
}

func (s *TaskService) FetchTask(ctx context.Context, _ authz.Identity, taskID string) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, s.fail(err, "Task not found", "Failed to fetch task")
	}
	return task, nil
}

// FetchAssignedTasks returns the tasks assigned to the caller.
func (s *TaskService) FetchAssignedTasks(ctx context.Context, id authz.Identity) ([]models.Task, error) {
	tasks, err := s.store.FindTasks(ctx, store.TaskFilter{Assignee: id.UserID})
	if err != nil {
		return nil, s.fail(err, "", "Failed to fetch tasks")
	}
	return tasks, nil
}

// FetchUserLists returns the caller's personal lists, preceded by the
// virtual list of personal tasks that are in no list.
func (s *TaskService) FetchUserLists(ctx context.Context, id authz.Identity) ([]ListView, error) {
	return s.fetchLists(ctx,
		store.TaskFilter{AssignedBy: id.UserID, Personal: true, Unlisted: true},
		store.ListFilter{CreatedBy: id.UserID, Personal: true},
	)
}

// FetchTeamLists returns the team's lists, preceded by the virtual list of
// team tasks that are in no list.
func (s *TaskService) FetchTeamLists(ctx context.Context, _ authz.Identity, teamID string) ([]ListView, error) {
	return s.fetchLists(ctx,
		store.TaskFilter{TeamID: teamID, Unlisted: true},
		store.ListFilter{TeamID: teamID},
	)
}

func (s *TaskService) fetchLists(ctx context.Context, loose store.TaskFilter, lf store.ListFilter) ([]ListView, error) {
	const failed = "Failed to fetch lists"

	unlisted, err := s.store.FindTasks(ctx, loose)
	if err != nil {
		return nil, s.fail(err, "", failed)
	}
	lists, err := s.store.FindLists(ctx, lf)
	if err != nil {
		return nil, s.fail(err, "", failed)
	}

	views := make([]ListView, 0, len(lists)+1)
	views = append(views, ListView{Title: VirtualListTitle, Virtual: true, Tasks: nonNil(unlisted)})

	for _, l := range lists {
		tasks, err := s.store.FindTasks(ctx, store.TaskFilter{ListID: l.ID})
		if err != nil {
			return nil, s.fail(err, "", failed)
		}
		views = append(views, ListView{
			ID:        l.ID,
			Title:     l.Title,
			CreatedBy: l.CreatedBy,
			TeamID:    l.TeamID,
			Tasks:     inListOrder(l.Tasks, tasks),
		})
	}
	return views, nil
}

// inListOrder orders tasks by the list's task ids. Tasks missing from order
// keep their relative order at the end.
func inListOrder(order []string, tasks []models.Task) []models.Task {
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}

	out := make([]models.Task, 0, len(tasks))
	var rest []models.Task
	placed := make([]*models.Task, len(order))
	for i := range tasks {
		if p, ok := pos[tasks[i].ID]; ok {
			placed[p] = &tasks[i]
		} else {
			rest = append(rest, tasks[i])
		}
	}
	for _, t := range placed {
		if t != nil {
			out = append(out, *t)
		}
	}
	return append(out, rest...)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
