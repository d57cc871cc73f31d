// Package gormstore implements store.Store on a relational database through
// gorm. Array fields are kept in join tables.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"teamwork/models"
	"teamwork/store"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Atomic runs fn inside a database transaction. Any error rolls back every
// write made through tx.
func (s *Store) Atomic(ctx context.Context, fn func(tx store.Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	default:
		return err
	}
}

// affected maps a write that matched nothing to store.ErrNotFound.
func affected(tx *gorm.DB) error {
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) exists(ctx context.Context, model any, id string) error {
	var n int64
	if err := s.conn(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ================== USERS ==================

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) UsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	err := s.conn(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, translate(err)
}

func (s *Store) SearchUsers(ctx context.Context, query, exclude string, limit int) ([]models.User, error) {
	pattern := "%" + query + "%"
	var users []models.User
	err := s.conn(ctx).
		Where("(LOWER(name) LIKE LOWER(?) OR LOWER(username) LIKE LOWER(?)) AND id <> ?", pattern, pattern, exclude).
		Order("username").
		Limit(limit).
		Find(&users).Error
	return users, translate(err)
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.conn(ctx).Create(u).Error)
}

// ================== ANNOUNCEMENTS ==================

func (s *Store) GetAnnouncement(ctx context.Context, id string) (*models.Announcement, error) {
	var a models.Announcement
	if err := s.conn(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *Store) FindAnnouncements(ctx context.Context, teamID string) ([]models.Announcement, error) {
	var out []models.Announcement
	err := s.conn(ctx).Where("team_id = ?", teamID).Order("created_at DESC").Find(&out).Error
	return out, translate(err)
}

func (s *Store) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	return translate(s.conn(ctx).Create(a).Error)
}

func (s *Store) UpdateAnnouncement(ctx context.Context, a *models.Announcement) error {
	return affected(s.conn(ctx).Model(a).Select("*").Omit("created_at").Updates(a))
}

func (s *Store) DeleteAnnouncement(ctx context.Context, id string) error {
	return affected(s.conn(ctx).Delete(&models.Announcement{}, "id = ?", id))
}

func (s *Store) DeleteAnnouncements(ctx context.Context, teamID string) (int64, error) {
	tx := s.conn(ctx).Delete(&models.Announcement{}, "team_id = ?", teamID)
	return tx.RowsAffected, translate(tx.Error)
}
