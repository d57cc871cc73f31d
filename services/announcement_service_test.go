package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"teamwork/models"
	"teamwork/store"
	"teamwork/store/storetest"
)

func TestAnnouncements(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := storetest.User(t, h.store, "alice")
	team := storetest.Team(t, h.store, "core", alice.ID)

	first, err := h.svc.Announcements.CreateAnnouncement(ctx, as(alice), team.ID, AnnouncementInput{Content: ptr(" standup at 10 ")})
	require.NoError(t, err)
	require.Equal(t, models.DefaultAnnouncementTitle, first.Title)
	require.Equal(t, "standup at 10", first.Content)
	require.Equal(t, alice.ID, first.Author)
	require.Empty(t, first.Files)

	files := []models.File{{Type: models.FileImage, URL: "https://cdn/x.png"}}
	second, err := h.svc.Announcements.CreateAnnouncement(ctx, as(alice), team.ID, AnnouncementInput{Title: ptr("Release"), Content: ptr("v2"), Files: &files})
	require.NoError(t, err)
	require.Equal(t, "Release", second.Title)

	list, err := h.svc.Announcements.FetchAnnouncements(ctx, as(alice), team.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID, "newest first")
	require.Equal(t, files, list[0].Files)

	edited, err := h.svc.Announcements.EditAnnouncement(ctx, as(alice), first.ID, AnnouncementInput{Title: ptr("Standup")})
	require.NoError(t, err)
	require.Equal(t, "Standup", edited.Title)
	require.Equal(t, "standup at 10", edited.Content)

	require.NoError(t, h.svc.Announcements.DeleteAnnouncement(ctx, as(alice), first.ID))
	_, err = h.store.GetAnnouncement(ctx, first.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	err = h.svc.Announcements.DeleteAnnouncement(ctx, as(alice), first.ID)
	requireStatus(t, err, http.StatusNotFound, "Announcement not found")
}

func TestAnnouncementValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := storetest.User(t, h.store, "alice")
	team := storetest.Team(t, h.store, "core", alice.ID)

	_, err := h.svc.Announcements.CreateAnnouncement(ctx, as(alice), team.ID, AnnouncementInput{Title: ptr("t")})
	requireStatus(t, err, http.StatusBadRequest, "Announcement cannot be empty")

	bad := []models.File{{Type: "video", URL: "u"}}
	_, err = h.svc.Announcements.CreateAnnouncement(ctx, as(alice), team.ID, AnnouncementInput{Content: ptr("c"), Files: &bad})
	requireStatus(t, err, http.StatusBadRequest, "Invalid file type")

	noURL := []models.File{{Type: models.FileOther}}
	_, err = h.svc.Announcements.CreateAnnouncement(ctx, as(alice), team.ID, AnnouncementInput{Content: ptr("c"), Files: &noURL})
	requireStatus(t, err, http.StatusBadRequest, "File URL is empty")

	a, err := h.svc.Announcements.CreateAnnouncement(ctx, as(alice), team.ID, AnnouncementInput{Content: ptr("c")})
	require.NoError(t, err)
	_, err = h.svc.Announcements.EditAnnouncement(ctx, as(alice), a.ID, AnnouncementInput{Content: ptr("")})
	requireStatus(t, err, http.StatusBadRequest, "Announcement cannot be empty")
}
