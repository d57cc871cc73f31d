package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"teamwork/models"
	"teamwork/store"
)

var errUnfiltered = errors.New("mongostore: refusing bulk delete without a filter")

func taskFilter(f store.TaskFilter) bson.M {
	filter := bson.M{}
	if f.TeamID != "" {
		filter["teamId"] = f.TeamID
	}
	if f.ListID != "" {
		filter["listId"] = f.ListID
	}
	if f.Assignee != "" {
		filter["assignee"] = f.Assignee
	}
	if f.AssignedBy != "" {
		filter["assignedBy"] = f.AssignedBy
	}
	if f.Personal {
		filter["teamId"] = absent
	}
	if f.Unlisted {
		filter["listId"] = absent
	}
	return filter
}

func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return findOne[models.Task](ctx, s.cTasks, bson.M{"_id": id})
}

func (s *Store) FindTasks(ctx context.Context, f store.TaskFilter) ([]models.Task, error) {
	return findAll[models.Task](ctx, s.cTasks, taskFilter(f), oldestFirst("createdAt"))
}

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	_, err := s.cTasks.InsertOne(ctx, t)
	return translate(err)
}

func (s *Store) UpdateTask(ctx context.Context, t *models.Task) error {
	t.UpdatedAt = now()
	res, err := s.cTasks.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.cLists.UpdateMany(ctx, bson.M{"tasks": id}, bson.M{"$pull": bson.M{"tasks": id}}); err != nil {
		return translate(err)
	}
	return deleteByID(ctx, s.cTasks, id)
}

func (s *Store) DeleteTasks(ctx context.Context, f store.TaskFilter) (int64, error) {
	if f == (store.TaskFilter{}) {
		return 0, errUnfiltered
	}

	tasks, err := findAll[models.Task](ctx, s.cTasks, taskFilter(f))
	if err != nil {
		return 0, err
	}
	if len(tasks) == 0 {
		return 0, nil
	}
	ids := make([]string, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}

	_, err = s.cLists.UpdateMany(ctx,
		bson.M{"tasks": bson.M{"$in": ids}},
		bson.M{"$pull": bson.M{"tasks": bson.M{"$in": ids}}},
	)
	if err != nil {
		return 0, translate(err)
	}

	res, err := s.cTasks.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}

// ================== LISTS ==================

func listFilter(f store.ListFilter) bson.M {
	filter := bson.M{}
	if f.TeamID != "" {
		filter["teamId"] = f.TeamID
	}
	if f.CreatedBy != "" {
		filter["createdBy"] = f.CreatedBy
	}
	if f.Personal {
		filter["teamId"] = absent
	}
	return filter
}

func (s *Store) GetList(ctx context.Context, id string) (*models.List, error) {
	l, err := findOne[models.List](ctx, s.cLists, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if l.Tasks == nil {
		l.Tasks = []string{}
	}
	return l, nil
}

func (s *Store) FindLists(ctx context.Context, f store.ListFilter) ([]models.List, error) {
	lists, err := findAll[models.List](ctx, s.cLists, listFilter(f), oldestFirst("createdAt"))
	if err != nil {
		return nil, err
	}
	for i := range lists {
		if lists[i].Tasks == nil {
			lists[i].Tasks = []string{}
		}
	}
	return lists, nil
}

func (s *Store) CreateList(ctx context.Context, l *models.List) error {
	if l.Tasks == nil {
		l.Tasks = []string{}
	}
	_, err := s.cLists.InsertOne(ctx, l)
	return translate(err)
}

func (s *Store) RenameList(ctx context.Context, id, title string) error {
	return updateByID(ctx, s.cLists, id, bson.M{"$set": bson.M{"title": title, "updatedAt": now()}})
}

func (s *Store) PushListTask(ctx context.Context, id, taskID string) error {
	return updateByID(ctx, s.cLists, id, bson.M{
		"$push": bson.M{"tasks": taskID},
		"$set":  bson.M{"updatedAt": now()},
	})
}

func (s *Store) PullListTask(ctx context.Context, id, taskID string) error {
	return updateByID(ctx, s.cLists, id, bson.M{
		"$pull": bson.M{"tasks": taskID},
		"$set":  bson.M{"updatedAt": now()},
	})
}

func (s *Store) DeleteList(ctx context.Context, id string) error {
	return deleteByID(ctx, s.cLists, id)
}

func (s *Store) DeleteLists(ctx context.Context, f store.ListFilter) (int64, error) {
	if f == (store.ListFilter{}) {
		return 0, errUnfiltered
	}
	res, err := s.cLists.DeleteMany(ctx, listFilter(f))
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}
