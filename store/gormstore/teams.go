package gormstore

import (
	"context"
	"time"

	"teamwork/models"
)

func (s *Store) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	var t models.Team
	if err := s.conn(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	teams := []models.Team{t}
	if err := s.loadTeamMembers(ctx, teams); err != nil {
		return nil, err
	}
	return &teams[0], nil
}

func (s *Store) TeamsForUser(ctx context.Context, userID string) ([]models.Team, error) {
	var teams []models.Team
	err := s.conn(ctx).
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Order("teams.updated_at DESC").
		Find(&teams).Error
	if err != nil {
		return nil, translate(err)
	}
	if err := s.loadTeamMembers(ctx, teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *Store) loadTeamMembers(ctx context.Context, teams []models.Team) error {
	if len(teams) == 0 {
		return nil
	}
	ids := make([]string, len(teams))
	for i := range teams {
		ids[i] = teams[i].ID
	}

	var rows []models.TeamMember
	err := s.conn(ctx).Where("team_id IN ?", ids).Order("joined_at, user_id").Find(&rows).Error
	if err != nil {
		return translate(err)
	}

	byTeam := make(map[string][]string, len(teams))
	for _, r := range rows {
		byTeam[r.TeamID] = append(byTeam[r.TeamID], r.UserID)
	}
	for i := range teams {
		teams[i].Members = byTeam[teams[i].ID]
		if teams[i].Members == nil {
			teams[i].Members = []string{}
		}
	}
	return nil
}

func (s *Store) CreateTeam(ctx context.Context, t *models.Team) error {
	if err := s.conn(ctx).Create(t).Error; err != nil {
		return translate(err)
	}
	now := time.Now().UTC()
	for i, userID := range t.Members {
		row := models.TeamMember{TeamID: t.ID, UserID: userID, JoinedAt: now.Add(time.Duration(i) * time.Microsecond)}
		if err := s.conn(ctx).Create(&row).Error; err != nil {
			return translate(err)
		}
	}
	return nil
}

func (s *Store) RenameTeam(ctx context.Context, id, name string) error {
	return affected(s.conn(ctx).Model(&models.Team{}).Where("id = ?", id).Update("name", name))
}

func (s *Store) SetTeamAdmin(ctx context.Context, id, admin string) error {
	return affected(s.conn(ctx).Model(&models.Team{}).Where("id = ?", id).Update("admin", admin))
}

func (s *Store) PushTeamMember(ctx context.Context, id, userID string) error {
	if err := s.exists(ctx, &models.Team{}, id); err != nil {
		return err
	}
	row := models.TeamMember{TeamID: id, UserID: userID, JoinedAt: time.Now().UTC()}
	return translate(s.conn(ctx).Create(&row).Error)
}

func (s *Store) PullTeamMember(ctx context.Context, id, userID string) error {
	if err := s.exists(ctx, &models.Team{}, id); err != nil {
		return err
	}
	return translate(s.conn(ctx).Delete(&models.TeamMember{}, "team_id = ? AND user_id = ?", id, userID).Error)
}

func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	if err := s.conn(ctx).Delete(&models.TeamMember{}, "team_id = ?", id).Error; err != nil {
		return translate(err)
	}
	return affected(s.conn(ctx).Delete(&models.Team{}, "id = ?", id))
}

// ================== CHATS ==================

func (s *Store) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	var c models.Chat
	if err := s.conn(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	chats := []models.Chat{c}
	if err := s.loadChatMembers(ctx, chats); err != nil {
		return nil, err
	}
	return &chats[0], nil
}

func (s *Store) GetChatByTeam(ctx context.Context, teamID string) (*models.Chat, error) {
	var c models.Chat
	if err := s.conn(ctx).First(&c, "team_id = ?", teamID).Error; err != nil {
		return nil, translate(err)
	}
	chats := []models.Chat{c}
	if err := s.loadChatMembers(ctx, chats); err != nil {
		return nil, err
	}
	return &chats[0], nil
}

func (s *Store) ChatsForUser(ctx context.Context, userID string) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.conn(ctx).
		Joins("JOIN chat_members ON chat_members.chat_id = chats.id").
		Where("chat_members.user_id = ?", userID).
		Order("chats.updated_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, translate(err)
	}
	if err := s.loadChatMembers(ctx, chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (s *Store) loadChatMembers(ctx context.Context, chats []models.Chat) error {
	if len(chats) == 0 {
		return nil
	}
	ids := make([]string, len(chats))
	for i := range chats {
		ids[i] = chats[i].ID
	}

	var rows []models.ChatMember
	err := s.conn(ctx).Where("chat_id IN ?", ids).Order("joined_at, user_id").Find(&rows).Error
	if err != nil {
		return translate(err)
	}

	byChat := make(map[string][]string, len(chats))
	for _, r := range rows {
		byChat[r.ChatID] = append(byChat[r.ChatID], r.UserID)
	}
	for i := range chats {
		chats[i].Members = byChat[chats[i].ID]
		if chats[i].Members == nil {
			chats[i].Members = []string{}
		}
	}
	return nil
}

func (s *Store) CreateChat(ctx context.Context, c *models.Chat) error {
	if err := s.conn(ctx).Create(c).Error; err != nil {
		return translate(err)
	}
	now := time.Now().UTC()
	for i, userID := range c.Members {
		row := models.ChatMember{ChatID: c.ID, UserID: userID, JoinedAt: now.Add(time.Duration(i) * time.Microsecond)}
		if err := s.conn(ctx).Create(&row).Error; err != nil {
			return translate(err)
		}
	}
	return nil
}

func (s *Store) PushChatMember(ctx context.Context, id, userID string) error {
	if err := s.exists(ctx, &models.Chat{}, id); err != nil {
		return err
	}
	row := models.ChatMember{ChatID: id, UserID: userID, JoinedAt: time.Now().UTC()}
	return translate(s.conn(ctx).Create(&row).Error)
}

func (s *Store) PullChatMember(ctx context.Context, id, userID string) error {
	if err := s.exists(ctx, &models.Chat{}, id); err != nil {
		return err
	}
	return translate(s.conn(ctx).Delete(&models.ChatMember{}, "chat_id = ? AND user_id = ?", id, userID).Error)
}

func (s *Store) SetLatestMessage(ctx context.Context, id, messageID string) error {
	return affected(s.conn(ctx).Model(&models.Chat{}).Where("id = ?", id).Update("latest_message", messageID))
}

func (s *Store) DeleteChat(ctx context.Context, id string) error {
	if err := s.conn(ctx).Delete(&models.ChatMember{}, "chat_id = ?", id).Error; err != nil {
		return translate(err)
	}
	return affected(s.conn(ctx).Delete(&models.Chat{}, "id = ?", id))
}

func (s *Store) FindMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	var out []models.Message
	err := s.conn(ctx).Where("chat_id = ?", chatID).Order("created_at, id").Find(&out).Error
	return out, translate(err)
}

func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	return translate(s.conn(ctx).Create(m).Error)
}

func (s *Store) DeleteMessages(ctx context.Context, chatID string) (int64, error) {
	tx := s.conn(ctx).Delete(&models.Message{}, "chat_id = ?", chatID)
	return tx.RowsAffected, translate(tx.Error)
}
