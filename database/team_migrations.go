// database/team_migrations.go - Team, announcement and chat tables
package database

import (
	"gorm.io/gorm"

	"teamwork/models"
)

// RunTeamMigrations creates the team-scoped tables
func RunTeamMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Team{},
		&models.TeamMember{},
		&models.Announcement{},
		&models.Chat{},
		&models.ChatMember{},
		&models.Message{},
	); err != nil {
		return err
	}

	return createTeamIndexes(db)
}

func createTeamIndexes(db *gorm.DB) error {
	return execAll(db, []string{
		"CREATE INDEX IF NOT EXISTS idx_team_members_joined ON team_members(team_id, joined_at)",
		"CREATE INDEX IF NOT EXISTS idx_announcements_team_created ON announcements(team_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_chats_updated ON chats(updated_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages(chat_id, created_at)",
	})
}
