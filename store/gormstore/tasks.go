package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"teamwork/models"
	"teamwork/store"
)

var errUnfiltered = errors.New("gormstore: refusing bulk delete without a filter")

func taskScope(f store.TaskFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.TeamID != "" {
			db = db.Where("team_id = ?", f.TeamID)
		}
		if f.ListID != "" {
			db = db.Where("list_id = ?", f.ListID)
		}
		if f.Assignee != "" {
			db = db.Where("assignee = ?", f.Assignee)
		}
		if f.AssignedBy != "" {
			db = db.Where("assigned_by = ?", f.AssignedBy)
		}
		if f.Personal {
			db = db.Where("team_id = ''")
		}
		if f.Unlisted {
			db = db.Where("list_id = ''")
		}
		return db
	}
}

func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	if err := s.conn(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Store) FindTasks(ctx context.Context, f store.TaskFilter) ([]models.Task, error) {
	var out []models.Task
	err := s.conn(ctx).Scopes(taskScope(f)).Order("created_at, id").Find(&out).Error
	return out, translate(err)
}

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	return translate(s.conn(ctx).Create(t).Error)
}

func (s *Store) UpdateTask(ctx context.Context, t *models.Task) error {
	return affected(s.conn(ctx).Model(t).Select("*").Omit("created_at").Updates(t))
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if err := s.conn(ctx).Delete(&models.ListTask{}, "task_id = ?", id).Error; err != nil {
		return translate(err)
	}
	return affected(s.conn(ctx).Delete(&models.Task{}, "id = ?", id))
}

func (s *Store) DeleteTasks(ctx context.Context, f store.TaskFilter) (int64, error) {
	if f == (store.TaskFilter{}) {
		return 0, errUnfiltered
	}

	var ids []string
	if err := s.conn(ctx).Model(&models.Task{}).Scopes(taskScope(f)).Pluck("id", &ids).Error; err != nil {
		return 0, translate(err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := s.conn(ctx).Delete(&models.ListTask{}, "task_id IN ?", ids).Error; err != nil {
		return 0, translate(err)
	}
	tx := s.conn(ctx).Delete(&models.Task{}, "id IN ?", ids)
	return tx.RowsAffected, translate(tx.Error)
}

// ================== LISTS ==================

func listScope(f store.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.TeamID != "" {
			db = db.Where("team_id = ?", f.TeamID)
		}
		if f.CreatedBy != "" {
			db = db.Where("created_by = ?", f.CreatedBy)
		}
		if f.Personal {
			db = db.Where("team_id = ''")
		}
		return db
	}
}

func (s *Store) GetList(ctx context.Context, id string) (*models.List, error) {
	var l models.List
	if err := s.conn(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	lists := []models.List{l}
	if err := s.loadListTasks(ctx, lists); err != nil {
		return nil, err
	}
	return &lists[0], nil
}

func (s *Store) FindLists(ctx context.Context, f store.ListFilter) ([]models.List, error) {
	var lists []models.List
	if err := s.conn(ctx).Scopes(listScope(f)).Order("created_at, id").Find(&lists).Error; err != nil {
		return nil, translate(err)
	}
	if err := s.loadListTasks(ctx, lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (s *Store) loadListTasks(ctx context.Context, lists []models.List) error {
	if len(lists) == 0 {
		return nil
	}
	ids := make([]string, len(lists))
	for i := range lists {
		ids[i] = lists[i].ID
	}

	var rows []models.ListTask
	if err := s.conn(ctx).Where("list_id IN ?", ids).Order("position").Find(&rows).Error; err != nil {
		return translate(err)
	}

	byList := make(map[string][]string, len(lists))
	for _, r := range rows {
		byList[r.ListID] = append(byList[r.ListID], r.TaskID)
	}
	for i := range lists {
		lists[i].Tasks = byList[lists[i].ID]
		if lists[i].Tasks == nil {
			lists[i].Tasks = []string{}
		}
	}
	return nil
}

func (s *Store) CreateList(ctx context.Context, l *models.List) error {
	if err := s.conn(ctx).Create(l).Error; err != nil {
		return translate(err)
	}
	for i, taskID := range l.Tasks {
		row := models.ListTask{ListID: l.ID, TaskID: taskID, Position: i}
		if err := s.conn(ctx).Create(&row).Error; err != nil {
			return translate(err)
		}
	}
	return nil
}

func (s *Store) RenameList(ctx context.Context, id, title string) error {
	return affected(s.conn(ctx).Model(&models.List{}).Where("id = ?", id).Update("title", title))
}

func (s *Store) PushListTask(ctx context.Context, id, taskID string) error {
	if err := s.exists(ctx, &models.List{}, id); err != nil {
		return err
	}

	var next int
	err := s.conn(ctx).Model(&models.ListTask{}).
		Where("list_id = ?", id).
		Select("COALESCE(MAX(position), -1) + 1").
		Scan(&next).Error
	if err != nil {
		return translate(err)
	}

	row := models.ListTask{ListID: id, TaskID: taskID, Position: next}
	return translate(s.conn(ctx).Create(&row).Error)
}

func (s *Store) PullListTask(ctx context.Context, id, taskID string) error {
	if err := s.exists(ctx, &models.List{}, id); err != nil {
		return err
	}
	return translate(s.conn(ctx).Delete(&models.ListTask{}, "list_id = ? AND task_id = ?", id, taskID).Error)
}

func (s *Store) DeleteList(ctx context.Context, id string) error {
	if err := s.conn(ctx).Delete(&models.ListTask{}, "list_id = ?", id).Error; err != nil {
		return translate(err)
	}
	return affected(s.conn(ctx).Delete(&models.List{}, "id = ?", id))
}

func (s *Store) DeleteLists(ctx context.Context, f store.ListFilter) (int64, error) {
	if f == (store.ListFilter{}) {
		return 0, errUnfiltered
	}

	var ids []string
	if err := s.conn(ctx).Model(&models.List{}).Scopes(listScope(f)).Pluck("id", &ids).Error; err != nil {
		return 0, translate(err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := s.conn(ctx).Delete(&models.ListTask{}, "list_id IN ?", ids).Error; err != nil {
		return 0, translate(err)
	}
	tx := s.conn(ctx).Delete(&models.List{}, "id IN ?", ids)
	return tx.RowsAffected, translate(tx.Error)
}
