// services/announcement_service.go - Team announcements
package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"teamwork/authz"
	"teamwork/errs"
	"teamwork/models"
	"teamwork/store"
)

type AnnouncementService struct {
	base
}

func NewAnnouncementService(s store.Store, log *zap.Logger) *AnnouncementService {
	return &AnnouncementService{base{store: s, log: log.Named("announcements")}}
}

type AnnouncementInput struct {
	Title   *string
	Content *string
	Files   *[]models.File
}

func validateFiles(files []models.File) ([]models.File, error) {
	out := make([]models.File, 0, len(files))
	for _, f := range files {
		if f.Type != models.FileImage && f.Type != models.FileOther {
			return nil, errs.Validation("Invalid file type")
		}
		url := strings.TrimSpace(f.URL)
		if url == "" {
			return nil, errs.Validation("File URL is empty")
		}
		out = append(out, models.File{Type: f.Type, URL: url})
	}
	return out, nil
}

func (s *AnnouncementService) CreateAnnouncement(ctx context.Context, id authz.Identity, teamID string, in AnnouncementInput) (*models.Announcement, error) {
	var content string
	if in.Content != nil {
		content = strings.TrimSpace(*in.Content)
	}
	if content == "" {
		return nil, errs.Validation("Announcement cannot be empty")
	}

	title := models.DefaultAnnouncementTitle
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		title = strings.TrimSpace(*in.Title)
	}

	files := []models.File{}
	if in.Files != nil {
		var err error
		if files, err = validateFiles(*in.Files); err != nil {
			return nil, err
		}
	}

	ts := now()
	a := &models.Announcement{
		ID:        uuid.NewString(),
		Author:    id.UserID,
		TeamID:    teamID,
		Title:     title,
		Content:   content,
		Files:     files,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.store.CreateAnnouncement(ctx, a); err != nil {
		return nil, s.fail(err, "", "Failed to create announcement")
	}
	return a, nil
}

// EditAnnouncement applies the fields present in in.
func (s *AnnouncementService) EditAnnouncement(ctx context.Context, _ authz.Identity, announcementID string, in AnnouncementInput) (*models.Announcement, error) {
	const failed = "Failed to edit announcement"

	a, err := s.store.GetAnnouncement(ctx, announcementID)
	if err != nil {
		return nil, s.fail(err, "Announcement not found", failed)
	}

	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, errs.Validation("Announcement cannot be empty")
		}
		a.Content = content
	}
	if in.Title != nil {
		a.Title = strings.TrimSpace(*in.Title)
		if a.Title == "" {
			a.Title = models.DefaultAnnouncementTitle
		}
	}
	if in.Files != nil {
		files, err := validateFiles(*in.Files)
		if err != nil {
			return nil, err
		}
		a.Files = files
	}

	a.UpdatedAt = now()
	if err := s.store.UpdateAnnouncement(ctx, a); err != nil {
		return nil, s.fail(err, "Announcement not found", failed)
	}
	return a, nil
}

func (s *AnnouncementService) DeleteAnnouncement(ctx context.Context, _ authz.Identity, announcementID string) error {
	if err := s.store.DeleteAnnouncement(ctx, announcementID); err != nil {
		return s.fail(err, "Announcement not found", "Failed to delete announcement")
	}
	return nil
}

func (s *AnnouncementService) FetchAnnouncement(ctx context.Context, _ authz.Identity, announcementID string) (*models.Announcement, error) {
	a, err := s.store.GetAnnouncement(ctx, announcementID)
	if err != nil {
		return nil, s.fail(err, "Announcement not found", "Failed to fetch announcement")
	}
	return a, nil
}

// FetchAnnouncements returns the team's announcements, newest first.
func (s *AnnouncementService) FetchAnnouncements(ctx context.Context, _ authz.Identity, teamID string) ([]models.Announcement, error) {
	list, err := s.store.FindAnnouncements(ctx, teamID)
	if err != nil {
		return nil, s.fail(err, "", "Failed to fetch announcements")
	}
	return nonNil(list), nil
}
