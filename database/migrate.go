// database/migrate.go - Database Migration Runner
package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teamwork/models"
)

// RunMigrations runs all database migrations
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Debug("running database migrations")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.List{},
		&models.ListTask{},
	); err != nil {
		return fmt.Errorf("core migrations: %w", err)
	}

	if err := RunTeamMigrations(db); err != nil {
		return fmt.Errorf("team migrations: %w", err)
	}

	if err := createCoreIndexes(db); err != nil {
		return err
	}

	log.Debug("migrations completed")
	return nil
}

func createCoreIndexes(db *gorm.DB) error {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_tasks_team_list ON tasks(team_id, list_id)",
		"CREATE INDEX IF NOT EXISTS idx_tasks_owner_list ON tasks(assigned_by, list_id)",
		"CREATE INDEX IF NOT EXISTS idx_lists_owner_team ON lists(created_by, team_id)",
		"CREATE INDEX IF NOT EXISTS idx_list_tasks_position ON list_tasks(list_id, position)",
	}
	return execAll(db, stmts)
}

func execAll(db *gorm.DB, stmts []string) error {
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}
