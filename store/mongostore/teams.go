package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"teamwork/models"
)

func (s *Store) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	t, err := findOne[models.Team](ctx, s.cTeams, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if t.Members == nil {
		t.Members = []string{}
	}
	return t, nil
}

func (s *Store) TeamsForUser(ctx context.Context, userID string) ([]models.Team, error) {
	return findAll[models.Team](ctx, s.cTeams, bson.M{"members": userID}, newestFirst("updatedAt"))
}

func (s *Store) CreateTeam(ctx context.Context, t *models.Team) error {
	_, err := s.cTeams.InsertOne(ctx, t)
	return translate(err)
}

func (s *Store) RenameTeam(ctx context.Context, id, name string) error {
	return updateByID(ctx, s.cTeams, id, bson.M{"$set": bson.M{"name": name, "updatedAt": now()}})
}

func (s *Store) SetTeamAdmin(ctx context.Context, id, admin string) error {
	return updateByID(ctx, s.cTeams, id, bson.M{"$set": bson.M{"admin": admin, "updatedAt": now()}})
}

func (s *Store) PushTeamMember(ctx context.Context, id, userID string) error {
	return updateByID(ctx, s.cTeams, id, bson.M{
		"$addToSet": bson.M{"members": userID},
		"$set":      bson.M{"updatedAt": now()},
	})
}

func (s *Store) PullTeamMember(ctx context.Context, id, userID string) error {
	return updateByID(ctx, s.cTeams, id, bson.M{
		"$pull": bson.M{"members": userID},
		"$set":  bson.M{"updatedAt": now()},
	})
}

func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	return deleteByID(ctx, s.cTeams, id)
}

// ================== CHATS ==================

func (s *Store) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	return findOne[models.Chat](ctx, s.cChats, bson.M{"_id": id})
}

func (s *Store) GetChatByTeam(ctx context.Context, teamID string) (*models.Chat, error) {
	return findOne[models.Chat](ctx, s.cChats, bson.M{"team": teamID})
}

func (s *Store) ChatsForUser(ctx context.Context, userID string) ([]models.Chat, error) {
	return findAll[models.Chat](ctx, s.cChats, bson.M{"members": userID}, newestFirst("updatedAt"))
}

func (s *Store) CreateChat(ctx context.Context, c *models.Chat) error {
	_, err := s.cChats.InsertOne(ctx, c)
	return translate(err)
}

func (s *Store) PushChatMember(ctx context.Context, id, userID string) error {
	return updateByID(ctx, s.cChats, id, bson.M{
		"$addToSet": bson.M{"members": userID},
		"$set":      bson.M{"updatedAt": now()},
	})
}

func (s *Store) PullChatMember(ctx context.Context, id, userID string) error {
	return updateByID(ctx, s.cChats, id, bson.M{
		"$pull": bson.M{"members": userID},
		"$set":  bson.M{"updatedAt": now()},
	})
}

func (s *Store) SetLatestMessage(ctx context.Context, id, messageID string) error {
	return updateByID(ctx, s.cChats, id, bson.M{"$set": bson.M{"latestMessage": messageID, "updatedAt": now()}})
}

func (s *Store) DeleteChat(ctx context.Context, id string) error {
	return deleteByID(ctx, s.cChats, id)
}

func (s *Store) FindMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	return findAll[models.Message](ctx, s.cMessages, bson.M{"groupChat": chatID}, oldestFirst("createdAt"))
}

func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	_, err := s.cMessages.InsertOne(ctx, m)
	return translate(err)
}

func (s *Store) DeleteMessages(ctx context.Context, chatID string) (int64, error) {
	res, err := s.cMessages.DeleteMany(ctx, bson.M{"groupChat": chatID})
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}
