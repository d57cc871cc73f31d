// Package mongostore implements store.Store on MongoDB. Array fields are
// embedded in their documents and mutated with $addToSet, $push and $pull.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"teamwork/models"
	"teamwork/store"
)

type Store struct {
	client *mongo.Client

	cUsers         *mongo.Collection
	cTeams         *mongo.Collection
	cTasks         *mongo.Collection
	cLists         *mongo.Collection
	cAnnouncements *mongo.Collection
	cChats         *mongo.Collection
	cMessages      *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Connect dials uri, verifies the connection and ensures indexes.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := New(client, database)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:         client,
		cUsers:         db.Collection("users"),
		cTeams:         db.Collection("teams"),
		cTasks:         db.Collection("tasks"),
		cLists:         db.Collection("lists"),
		cAnnouncements: db.Collection("announcements"),
		cChats:         db.Collection("chats"),
		cMessages:      db.Collection("messages"),
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.cUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.cTeams: {
			{Keys: bson.D{{Key: "members", Value: 1}}},
		},
		s.cTasks: {
			{Keys: bson.D{{Key: "teamId", Value: 1}, {Key: "listId", Value: 1}}},
			{Keys: bson.D{{Key: "assignedBy", Value: 1}, {Key: "listId", Value: 1}}},
			{Keys: bson.D{{Key: "assignee", Value: 1}}},
		},
		s.cLists: {
			{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "teamId", Value: 1}}},
		},
		s.cAnnouncements: {
			{Keys: bson.D{{Key: "teamId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		s.cChats: {
			{Keys: bson.D{{Key: "team", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "members", Value: 1}, {Key: "updatedAt", Value: -1}}},
		},
		s.cMessages: {
			{Keys: bson.D{{Key: "groupChat", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
	}

	for c, idx := range indexes {
		if _, err := c.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", c.Name(), err)
		}
	}
	return nil
}

// Atomic runs fn against the same store. Writes are applied one by one, so
// a failure partway leaves the earlier writes in place and fn's error is the
// caller's signal of partial completion.
func (s *Store) Atomic(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Drop removes the whole database.
func (s *Store) Drop(ctx context.Context) error {
	return s.cUsers.Database().Drop(ctx)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	default:
		return err
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func findOne[T any](ctx context.Context, c *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	if err := c.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, c *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cur, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, translate(err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func updateByID(ctx context.Context, c *mongo.Collection, id string, update bson.M) error {
	res, err := c.UpdateByID(ctx, id, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, c *mongo.Collection, id string) error {
	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func oldestFirst(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: 1}, {Key: "_id", Value: 1}})
}

func newestFirst(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: -1}, {Key: "_id", Value: 1}})
}

// absent matches a field that is missing, null or empty.
var absent = bson.M{"$in": bson.A{nil, ""}}

// ================== USERS ==================

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, s.cUsers, bson.M{"_id": id})
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return findOne[models.User](ctx, s.cUsers, bson.M{"username": username})
}

func (s *Store) UsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return findAll[models.User](ctx, s.cUsers, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *Store) SearchUsers(ctx context.Context, query, exclude string, limit int) ([]models.User, error) {
	pattern := bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
	filter := bson.M{
		"_id": bson.M{"$ne": exclude},
		"$or": bson.A{
			bson.M{"name": pattern},
			bson.M{"username": pattern},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}}).SetLimit(int64(limit))
	return findAll[models.User](ctx, s.cUsers, filter, opts)
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.cUsers.InsertOne(ctx, u)
	return translate(err)
}

// ================== ANNOUNCEMENTS ==================

func (s *Store) GetAnnouncement(ctx context.Context, id string) (*models.Announcement, error) {
	return findOne[models.Announcement](ctx, s.cAnnouncements, bson.M{"_id": id})
}

func (s *Store) FindAnnouncements(ctx context.Context, teamID string) ([]models.Announcement, error) {
	return findAll[models.Announcement](ctx, s.cAnnouncements, bson.M{"teamId": teamID}, newestFirst("createdAt"))
}

func (s *Store) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	_, err := s.cAnnouncements.InsertOne(ctx, a)
	return translate(err)
}

func (s *Store) UpdateAnnouncement(ctx context.Context, a *models.Announcement) error {
	a.UpdatedAt = now()
	res, err := s.cAnnouncements.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAnnouncement(ctx context.Context, id string) error {
	return deleteByID(ctx, s.cAnnouncements, id)
}

func (s *Store) DeleteAnnouncements(ctx context.Context, teamID string) (int64, error) {
	res, err := s.cAnnouncements.DeleteMany(ctx, bson.M{"teamId": teamID})
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}
